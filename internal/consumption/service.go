// Package consumption は消費記録（飲んだ記録と在庫減算）のドメインロジックを提供する。
package consumption

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

// recentListLimit は直近の消費記録一覧の最大件数。
const recentListLimit = 50

// RecordInput は消費記録作成の入力。
type RecordInput struct {
	DrinkTypeID string
	Quantity    int        // 0以下の場合は1として扱う
	ConsumedAt  *time.Time // nilの場合は現在時刻
}

// UpdateInput は消費記録更新の入力。nilのフィールドは変更しない。
// 金額は記録時点で確定しており、更新の対象外。
type UpdateInput struct {
	Quantity   *int
	ConsumedAt *time.Time
}

// Recorder は消費記録のメトリクス記録インターフェース。
type Recorder interface {
	RecordConsumption(quantity int)
}

// Service は消費記録のサービス層。
type Service struct {
	consumptionRepo repository.ConsumptionRepository
	drinkRepo       repository.DrinkRepository
	houseRepo       repository.HouseRepository
	recorder        Recorder
}

// NewService はServiceの新しいインスタンスを生成する。
// recorderはnilでもよい（メトリクスなしで動作する）。
func NewService(
	consumptionRepo repository.ConsumptionRepository,
	drinkRepo repository.DrinkRepository,
	houseRepo repository.HouseRepository,
	recorder Recorder,
) *Service {
	return &Service{
		consumptionRepo: consumptionRepo,
		drinkRepo:       drinkRepo,
		houseRepo:       houseRepo,
		recorder:        recorder,
	}
}

// Record は消費を記録する。記録時点のドリンク単価×数量を金額として確定し、
// 消費記録の作成と在庫の減算を単一トランザクションで行う。
// 在庫は負の値になってもよい（記録漏れの後追い入力を許容する）。
func (s *Service) Record(ctx context.Context, callerID string, input RecordInput) (*model.Consumption, error) {
	drink, err := s.drinkRepo.FindByID(ctx, input.DrinkTypeID)
	if err != nil {
		return nil, fmt.Errorf("ドリンクの取得に失敗しました: %w", err)
	}
	if drink == nil {
		return nil, model.NewDrinkNotFoundError(input.DrinkTypeID)
	}

	isMember, err := s.houseRepo.IsMember(ctx, drink.HouseID, callerID)
	if err != nil {
		return nil, fmt.Errorf("メンバーシップの確認に失敗しました: %w", err)
	}
	if !isMember {
		return nil, model.NewDrinkNotFoundError(input.DrinkTypeID)
	}

	quantity := input.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	consumedAt := time.Now()
	if input.ConsumedAt != nil {
		consumedAt = *input.ConsumedAt
	}

	now := time.Now()
	c := &model.Consumption{
		ID:          uuid.New().String(),
		UserID:      callerID,
		DrinkTypeID: drink.ID,
		HouseID:     drink.HouseID,
		Quantity:    quantity,
		ConsumedAt:  consumedAt,
		Cost:        drink.PricePerUnit.Mul(decimal.NewFromInt(int64(quantity))),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.consumptionRepo.Record(ctx, c); err != nil {
		return nil, fmt.Errorf("消費記録の作成に失敗しました: %w", err)
	}

	if s.recorder != nil {
		s.recorder.RecordConsumption(quantity)
	}

	slog.Info("consumption recorded",
		slog.String("consumption_id", c.ID),
		slog.String("drink_id", drink.ID),
		slog.String("user_id", callerID),
		slog.Int("quantity", quantity),
	)

	return c, nil
}

// List はハウスの消費記録一覧をユーザー名・ドリンク名付きで返す。新しい順。
func (s *Service) List(ctx context.Context, callerID, houseID string) ([]model.ConsumptionWithNames, error) {
	isMember, err := s.houseRepo.IsMember(ctx, houseID, callerID)
	if err != nil {
		return nil, fmt.Errorf("メンバーシップの確認に失敗しました: %w", err)
	}
	if !isMember {
		return nil, model.NewHouseNotFoundError(houseID)
	}

	list, err := s.consumptionRepo.ListByHouse(ctx, houseID, 0)
	if err != nil {
		return nil, fmt.Errorf("消費記録一覧の取得に失敗しました: %w", err)
	}
	return list, nil
}

// Recent は呼び出し元が所属する全ハウスの直近の消費記録を返す。最大50件。
func (s *Service) Recent(ctx context.Context, callerID string) ([]model.ConsumptionWithNames, error) {
	list, err := s.consumptionRepo.ListRecentByUser(ctx, callerID, recentListLimit)
	if err != nil {
		return nil, fmt.Errorf("直近の消費記録の取得に失敗しました: %w", err)
	}
	return list, nil
}

// Get は消費記録の詳細を返す。
// 所属ハウス外の記録を参照した場合は未検出エラーを返す。
func (s *Service) Get(ctx context.Context, callerID, consumptionID string) (*model.Consumption, error) {
	return s.requireMemberConsumption(ctx, callerID, consumptionID)
}

// Update は消費記録の数量と消費日時を更新する。
// 金額と在庫は記録時点の値のまま変更しない。
func (s *Service) Update(ctx context.Context, callerID, consumptionID string, input UpdateInput) (*model.Consumption, error) {
	c, err := s.requireMemberConsumption(ctx, callerID, consumptionID)
	if err != nil {
		return nil, err
	}

	if input.Quantity != nil {
		c.Quantity = *input.Quantity
	}
	if input.ConsumedAt != nil {
		c.ConsumedAt = *input.ConsumedAt
	}

	if err := s.consumptionRepo.Update(ctx, c.ID, c.Quantity, c.ConsumedAt); err != nil {
		return nil, fmt.Errorf("消費記録の更新に失敗しました: %w", err)
	}

	return c, nil
}

// Delete は消費記録を削除する。在庫は戻さない。
func (s *Service) Delete(ctx context.Context, callerID, consumptionID string) error {
	if _, err := s.requireMemberConsumption(ctx, callerID, consumptionID); err != nil {
		return err
	}

	if err := s.consumptionRepo.DeleteByID(ctx, consumptionID); err != nil {
		return fmt.Errorf("消費記録の削除に失敗しました: %w", err)
	}

	return nil
}

// requireMemberConsumption は消費記録を取得し、呼び出し元がそのハウスの
// メンバーであることを検証する。存在しない場合もメンバーでない場合も
// 同じ未検出エラーを返す。
func (s *Service) requireMemberConsumption(ctx context.Context, callerID, consumptionID string) (*model.Consumption, error) {
	c, err := s.consumptionRepo.FindByID(ctx, consumptionID)
	if err != nil {
		return nil, fmt.Errorf("消費記録の取得に失敗しました: %w", err)
	}
	if c == nil {
		return nil, model.NewConsumptionNotFoundError(consumptionID)
	}

	isMember, err := s.houseRepo.IsMember(ctx, c.HouseID, callerID)
	if err != nil {
		return nil, fmt.Errorf("メンバーシップの確認に失敗しました: %w", err)
	}
	if !isMember {
		return nil, model.NewConsumptionNotFoundError(consumptionID)
	}

	return c, nil
}
