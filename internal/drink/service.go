// Package drink はドリンク種別管理（登録・補充・買い出しリスト）のドメインロジックを提供する。
package drink

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hitoshi/nomicho/internal/model"
	"github.com/hitoshi/nomicho/internal/repository"
)

// defaultLowStockThreshold は閾値未指定時のデフォルト値。
const defaultLowStockThreshold = 6

// CreateInput はドリンク作成の入力。
type CreateInput struct {
	HouseID           string
	Name              string
	PricePerUnit      decimal.Decimal
	LowStockThreshold *int // nilの場合はデフォルト値（6）
	CurrentStock      int
}

// UpdateInput はドリンク更新の入力。nilのフィールドは変更しない。
type UpdateInput struct {
	Name              *string
	PricePerUnit      *decimal.Decimal
	LowStockThreshold *int
	CurrentStock      *int
}

// RestockRecorder は補充のメトリクス記録インターフェース。
type RestockRecorder interface {
	RecordRestock(quantity int)
}

// Service はドリンク管理のサービス層。
// 全操作は呼び出し元のハウスメンバーシップを検証してから実行する。
type Service struct {
	drinkRepo repository.DrinkRepository
	houseRepo repository.HouseRepository
	recorder  RestockRecorder
}

// NewService はServiceの新しいインスタンスを生成する。
// recorderはnilでもよい（メトリクスなしで動作する）。
func NewService(
	drinkRepo repository.DrinkRepository,
	houseRepo repository.HouseRepository,
	recorder RestockRecorder,
) *Service {
	return &Service{
		drinkRepo: drinkRepo,
		houseRepo: houseRepo,
		recorder:  recorder,
	}
}

// ListDrinks はハウスのドリンク一覧を返す。
func (s *Service) ListDrinks(ctx context.Context, callerID, houseID string) ([]*model.DrinkType, error) {
	if err := s.requireMembership(ctx, callerID, houseID); err != nil {
		return nil, err
	}

	drinks, err := s.drinkRepo.ListByHouseID(ctx, houseID)
	if err != nil {
		return nil, fmt.Errorf("ドリンク一覧の取得に失敗しました: %w", err)
	}
	return drinks, nil
}

// CreateDrink はハウスにドリンクを登録する。
// (house_id, name) の組はユニーク。重複時はエラーを返す。
func (s *Service) CreateDrink(ctx context.Context, callerID string, input CreateInput) (*model.DrinkType, error) {
	if err := s.requireMembership(ctx, callerID, input.HouseID); err != nil {
		return nil, err
	}

	existing, err := s.drinkRepo.FindByHouseAndName(ctx, input.HouseID, input.Name)
	if err != nil {
		return nil, fmt.Errorf("ドリンク名の確認に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewDrinkNameTakenError(input.Name)
	}

	threshold := defaultLowStockThreshold
	if input.LowStockThreshold != nil {
		threshold = *input.LowStockThreshold
	}

	now := time.Now()
	drink := &model.DrinkType{
		ID:                uuid.New().String(),
		HouseID:           input.HouseID,
		Name:              input.Name,
		PricePerUnit:      input.PricePerUnit,
		LowStockThreshold: threshold,
		CurrentStock:      input.CurrentStock,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.drinkRepo.Create(ctx, drink); err != nil {
		return nil, fmt.Errorf("ドリンクの作成に失敗しました: %w", err)
	}

	slog.Info("drink created",
		slog.String("drink_id", drink.ID),
		slog.String("house_id", drink.HouseID),
		slog.String("name", drink.Name),
	)

	return drink, nil
}

// GetDrink はドリンク詳細を返す。
// 呼び出し元が所属ハウス外のドリンクを参照した場合は未検出エラーを返す。
func (s *Service) GetDrink(ctx context.Context, callerID, drinkID string) (*model.DrinkType, error) {
	return s.requireMemberDrink(ctx, callerID, drinkID)
}

// UpdateDrink はドリンク情報を更新する。
// 名前を変更する場合はハウス内の重複を検証する。
func (s *Service) UpdateDrink(ctx context.Context, callerID, drinkID string, input UpdateInput) (*model.DrinkType, error) {
	drink, err := s.requireMemberDrink(ctx, callerID, drinkID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil && *input.Name != drink.Name {
		existing, err := s.drinkRepo.FindByHouseAndName(ctx, drink.HouseID, *input.Name)
		if err != nil {
			return nil, fmt.Errorf("ドリンク名の確認に失敗しました: %w", err)
		}
		if existing != nil {
			return nil, model.NewDrinkNameTakenError(*input.Name)
		}
		drink.Name = *input.Name
	}
	if input.PricePerUnit != nil {
		drink.PricePerUnit = *input.PricePerUnit
	}
	if input.LowStockThreshold != nil {
		drink.LowStockThreshold = *input.LowStockThreshold
	}
	if input.CurrentStock != nil {
		drink.CurrentStock = *input.CurrentStock
	}

	if err := s.drinkRepo.Update(ctx, drink); err != nil {
		return nil, fmt.Errorf("ドリンクの更新に失敗しました: %w", err)
	}

	return drink, nil
}

// DeleteDrink はドリンクを削除する。関連する消費記録も連動して削除される。
func (s *Service) DeleteDrink(ctx context.Context, callerID, drinkID string) error {
	if _, err := s.requireMemberDrink(ctx, callerID, drinkID); err != nil {
		return err
	}

	if err := s.drinkRepo.DeleteByID(ctx, drinkID); err != nil {
		return fmt.Errorf("ドリンクの削除に失敗しました: %w", err)
	}

	return nil
}

// Restock は在庫をquantityだけ補充する。quantityは正の整数でなければならない。
func (s *Service) Restock(ctx context.Context, callerID, drinkID string, quantity int) (*model.DrinkType, error) {
	if quantity <= 0 {
		return nil, model.NewInvalidQuantityError(quantity)
	}

	drink, err := s.requireMemberDrink(ctx, callerID, drinkID)
	if err != nil {
		return nil, err
	}

	if err := s.drinkRepo.AddStock(ctx, drinkID, quantity); err != nil {
		return nil, fmt.Errorf("在庫の補充に失敗しました: %w", err)
	}

	if s.recorder != nil {
		s.recorder.RecordRestock(quantity)
	}

	slog.Info("drink restocked",
		slog.String("drink_id", drinkID),
		slog.Int("quantity", quantity),
	)

	drink.CurrentStock += quantity
	return drink, nil
}

// ShoppingList はハウス内で在庫が閾値以下のドリンクを返す。読み取り専用。
func (s *Service) ShoppingList(ctx context.Context, callerID, houseID string) ([]*model.DrinkType, error) {
	if err := s.requireMembership(ctx, callerID, houseID); err != nil {
		return nil, err
	}

	drinks, err := s.drinkRepo.ListLowStock(ctx, houseID)
	if err != nil {
		return nil, fmt.Errorf("買い出しリストの取得に失敗しました: %w", err)
	}
	return drinks, nil
}

// requireMembership は呼び出し元がハウスのメンバーであることを検証する。
// メンバーでない場合はハウス未検出エラーを返す（存在有無を漏らさない）。
func (s *Service) requireMembership(ctx context.Context, callerID, houseID string) error {
	isMember, err := s.houseRepo.IsMember(ctx, houseID, callerID)
	if err != nil {
		return fmt.Errorf("メンバーシップの確認に失敗しました: %w", err)
	}
	if !isMember {
		return model.NewHouseNotFoundError(houseID)
	}
	return nil
}

// requireMemberDrink はドリンクを取得し、呼び出し元がそのハウスのメンバーであることを検証する。
// ドリンクが存在しない場合もメンバーでない場合も同じ未検出エラーを返す。
func (s *Service) requireMemberDrink(ctx context.Context, callerID, drinkID string) (*model.DrinkType, error) {
	drink, err := s.drinkRepo.FindByID(ctx, drinkID)
	if err != nil {
		return nil, fmt.Errorf("ドリンクの取得に失敗しました: %w", err)
	}
	if drink == nil {
		return nil, model.NewDrinkNotFoundError(drinkID)
	}

	isMember, err := s.houseRepo.IsMember(ctx, drink.HouseID, callerID)
	if err != nil {
		return nil, fmt.Errorf("メンバーシップの確認に失敗しました: %w", err)
	}
	if !isMember {
		return nil, model.NewDrinkNotFoundError(drinkID)
	}

	return drink, nil
}
