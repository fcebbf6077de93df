// Package house はハウス管理とメンバーシップのドメインロジックを提供する。
package house

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/nomicho/internal/model"
	"github.com/hitoshi/nomicho/internal/repository"
)

// HouseInfo はハウスにメンバーとドリンク一覧を結合したドメインオブジェクト。
type HouseInfo struct {
	House   model.House
	Members []*model.User
	Drinks  []*model.DrinkType
}

// UpdateInput はハウス更新の入力。nilのフィールドは変更しない。
type UpdateInput struct {
	Name      *string
	MemberIDs []string // nilの場合はメンバー集合を変更しない
}

// Service はハウス管理のサービス層。
// メンバー上限（4人）の検証とメンバーシップによるアクセススコープを担う。
type Service struct {
	houseRepo repository.HouseRepository
	drinkRepo repository.DrinkRepository
	userRepo  repository.UserRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	houseRepo repository.HouseRepository,
	drinkRepo repository.DrinkRepository,
	userRepo repository.UserRepository,
) *Service {
	return &Service{
		houseRepo: houseRepo,
		drinkRepo: drinkRepo,
		userRepo:  userRepo,
	}
}

// ListHouses は呼び出し元が所属するハウス一覧をメンバー・ドリンク付きで返す。
func (s *Service) ListHouses(ctx context.Context, callerID string) ([]HouseInfo, error) {
	houses, err := s.houseRepo.ListByUserID(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("ハウス一覧の取得に失敗しました: %w", err)
	}

	infos := make([]HouseInfo, 0, len(houses))
	for _, h := range houses {
		info, err := s.buildInfo(ctx, h)
		if err != nil {
			return nil, err
		}
		infos = append(infos, *info)
	}
	return infos, nil
}

// CreateHouse はハウスを作成し、作成者を最初のメンバーとして登録する。
func (s *Service) CreateHouse(ctx context.Context, callerID, name string) (*HouseInfo, error) {
	now := time.Now()
	h := &model.House{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.houseRepo.CreateWithCreator(ctx, h, callerID); err != nil {
		return nil, fmt.Errorf("ハウスの作成に失敗しました: %w", err)
	}

	slog.Info("house created",
		slog.String("house_id", h.ID),
		slog.String("creator_id", callerID),
	)

	return s.buildInfo(ctx, h)
}

// GetHouse はハウス詳細を返す。呼び出し元がメンバーでない場合はハウス未検出エラーを返す。
func (s *Service) GetHouse(ctx context.Context, callerID, houseID string) (*HouseInfo, error) {
	h, err := s.requireMemberHouse(ctx, callerID, houseID)
	if err != nil {
		return nil, err
	}
	return s.buildInfo(ctx, h)
}

// UpdateHouse はハウスの名前とメンバー集合を更新する。
// メンバー集合は最大4人。存在しないユーザーIDを含む場合はエラーを返す。
func (s *Service) UpdateHouse(ctx context.Context, callerID, houseID string, input UpdateInput) (*HouseInfo, error) {
	h, err := s.requireMemberHouse(ctx, callerID, houseID)
	if err != nil {
		return nil, err
	}

	// 書き込み前にメンバー集合を検証する。検証に失敗した場合は名前も含め何も変更しない
	if input.MemberIDs != nil {
		if len(input.MemberIDs) > model.MaxHouseMembers {
			return nil, model.NewMemberLimitError()
		}

		// 全メンバーIDの存在確認
		for _, userID := range input.MemberIDs {
			u, err := s.userRepo.FindByID(ctx, userID)
			if err != nil {
				return nil, fmt.Errorf("ユーザーの確認に失敗しました: %w", err)
			}
			if u == nil {
				return nil, model.NewUserNotFoundError()
			}
		}
	}

	if input.Name != nil {
		h.Name = *input.Name
		if err := s.houseRepo.Update(ctx, h); err != nil {
			return nil, fmt.Errorf("ハウスの更新に失敗しました: %w", err)
		}
	}

	if input.MemberIDs != nil {
		if err := s.houseRepo.ReplaceMembers(ctx, houseID, input.MemberIDs); err != nil {
			return nil, fmt.Errorf("メンバーの更新に失敗しました: %w", err)
		}
	}

	return s.buildInfo(ctx, h)
}

// DeleteHouse はハウスを削除する。ドリンクと消費記録も連動して削除される。
func (s *Service) DeleteHouse(ctx context.Context, callerID, houseID string) error {
	if _, err := s.requireMemberHouse(ctx, callerID, houseID); err != nil {
		return err
	}

	if err := s.houseRepo.DeleteByID(ctx, houseID); err != nil {
		return fmt.Errorf("ハウスの削除に失敗しました: %w", err)
	}

	slog.Info("house deleted",
		slog.String("house_id", houseID),
		slog.String("user_id", callerID),
	)

	return nil
}

// requireMemberHouse はハウスを取得し、呼び出し元がメンバーであることを検証する。
// ハウスが存在しない場合もメンバーでない場合も同じ未検出エラーを返す。
func (s *Service) requireMemberHouse(ctx context.Context, callerID, houseID string) (*model.House, error) {
	h, err := s.houseRepo.FindByID(ctx, houseID)
	if err != nil {
		return nil, fmt.Errorf("ハウスの取得に失敗しました: %w", err)
	}
	if h == nil {
		return nil, model.NewHouseNotFoundError(houseID)
	}

	isMember, err := s.houseRepo.IsMember(ctx, houseID, callerID)
	if err != nil {
		return nil, fmt.Errorf("メンバーシップの確認に失敗しました: %w", err)
	}
	if !isMember {
		return nil, model.NewHouseNotFoundError(houseID)
	}

	return h, nil
}

// buildInfo はハウスにメンバーとドリンク一覧を結合する。
func (s *Service) buildInfo(ctx context.Context, h *model.House) (*HouseInfo, error) {
	members, err := s.houseRepo.ListMembers(ctx, h.ID)
	if err != nil {
		return nil, fmt.Errorf("メンバー一覧の取得に失敗しました: %w", err)
	}

	drinks, err := s.drinkRepo.ListByHouseID(ctx, h.ID)
	if err != nil {
		return nil, fmt.Errorf("ドリンク一覧の取得に失敗しました: %w", err)
	}

	return &HouseInfo{
		House:   *h,
		Members: members,
		Drinks:  drinks,
	}, nil
}
