// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hitoshi/nomicho/internal/model"
	"github.com/hitoshi/nomicho/internal/repository"
)

// minSearchQueryLength はユーザー検索クエリの最小文字数。
// これ未満のクエリはストレージに問い合わせず空の結果を返す。
const minSearchQueryLength = 2

// searchResultLimit は検索結果の最大件数。
const searchResultLimit = 10

// MembershipDeleter はメンバーシップの一括削除インターフェース。
type MembershipDeleter interface {
	DeleteMembershipsByUserID(ctx context.Context, userID string) error
}

// Service はユーザー管理のサービス層。
// ユーザー検索と退会処理のビジネスロジックを提供する。
type Service struct {
	userRepo      repository.UserRepository
	sessionRepo   repository.SessionRepository
	memberDeleter MembershipDeleter
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	memberDeleter MembershipDeleter,
) *Service {
	return &Service{
		userRepo:      userRepo,
		sessionRepo:   sessionRepo,
		memberDeleter: memberDeleter,
	}
}

// Search はユーザー名の部分一致でユーザーを検索する。
// クエリが2文字未満の場合はストレージに問い合わせず空の結果を返す。
func (s *Service) Search(ctx context.Context, query string) ([]*model.User, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < minSearchQueryLength {
		return []*model.User{}, nil
	}

	users, err := s.userRepo.SearchByUsername(ctx, query, searchResultLimit)
	if err != nil {
		return nil, fmt.Errorf("ユーザー検索に失敗しました: %w", err)
	}
	if users == nil {
		users = []*model.User{}
	}
	return users, nil
}

// Withdraw はユーザーの退会処理を実行する。
// 削除順序: sessions → house_members → user（+ CASCADE: consumptions）
// ハウスとドリンクは他のメンバーの共有資産として残す。
func (s *Service) Withdraw(ctx context.Context, userID string) error {
	// ユーザー存在確認
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	slog.Info("退会処理を開始します",
		slog.String("user_id", userID),
	)

	// 1. セッションを削除
	if s.sessionRepo != nil {
		if err := s.sessionRepo.DeleteByUserID(ctx, userID); err != nil {
			return fmt.Errorf("セッションの削除に失敗しました: %w", err)
		}
	}

	// 2. メンバーシップを削除
	if s.memberDeleter != nil {
		if err := s.memberDeleter.DeleteMembershipsByUserID(ctx, userID); err != nil {
			return fmt.Errorf("メンバーシップの削除に失敗しました: %w", err)
		}
	}

	// 3. ユーザーを削除（consumptionsはCASCADE削除）
	if err := s.userRepo.DeleteByID(ctx, userID); err != nil {
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	slog.Info("退会処理が完了しました",
		slog.String("user_id", userID),
	)

	return nil
}
