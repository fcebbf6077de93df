// Package debt はハウスメンバーごとの立替金集計ロジックを提供する。
package debt

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hitoshi/nomicho/internal/model"
	"github.com/hitoshi/nomicho/internal/repository"
)

// LatencyObserver は集計処理の所要時間を記録するインターフェース。
type LatencyObserver interface {
	ObserveDebtQuery(d time.Duration)
}

// Service は立替金集計のサービス層。
type Service struct {
	houseRepo       repository.HouseRepository
	consumptionRepo repository.ConsumptionRepository
	observer        LatencyObserver
}

// NewService はServiceの新しいインスタンスを生成する。
// observerはnilでもよい（メトリクスなしで動作する）。
func NewService(
	houseRepo repository.HouseRepository,
	consumptionRepo repository.ConsumptionRepository,
	observer LatencyObserver,
) *Service {
	return &Service{
		houseRepo:       houseRepo,
		consumptionRepo: consumptionRepo,
		observer:        observer,
	}
}

// MemberDebts はハウスの全メンバーの立替金をドリンク別内訳付きで返す。
// メンバーは参加順、内訳はドリンク名の昇順。消費記録のないメンバーも
// 合計0円として含める。金額は記録時点で確定した値の合算であり、
// 現在のドリンク単価には影響されない。
func (s *Service) MemberDebts(ctx context.Context, callerID, houseID string) ([]*model.MemberDebt, error) {
	start := time.Now()

	isMember, err := s.houseRepo.IsMember(ctx, houseID, callerID)
	if err != nil {
		return nil, fmt.Errorf("メンバーシップの確認に失敗しました: %w", err)
	}
	if !isMember {
		return nil, model.NewHouseNotFoundError(houseID)
	}

	members, err := s.houseRepo.ListMembers(ctx, houseID)
	if err != nil {
		return nil, fmt.Errorf("メンバー一覧の取得に失敗しました: %w", err)
	}

	consumptions, err := s.consumptionRepo.ListByHouse(ctx, houseID, 0)
	if err != nil {
		return nil, fmt.Errorf("消費記録の取得に失敗しました: %w", err)
	}

	// メンバーID → ドリンク名 → 集計
	byMember := make(map[string]map[string]*model.DrinkDebt)
	for _, c := range consumptions {
		byDrink, ok := byMember[c.UserID]
		if !ok {
			byDrink = make(map[string]*model.DrinkDebt)
			byMember[c.UserID] = byDrink
		}
		d, ok := byDrink[c.DrinkName]
		if !ok {
			d = &model.DrinkDebt{
				DrinkName: c.DrinkName,
				TotalCost: decimal.Zero,
			}
			byDrink[c.DrinkName] = d
		}
		d.Quantity += c.Quantity
		d.TotalCost = d.TotalCost.Add(c.Cost)
	}

	debts := make([]*model.MemberDebt, 0, len(members))
	for _, m := range members {
		debt := &model.MemberDebt{
			UserID:    m.ID,
			Username:  m.Username,
			TotalOwed: decimal.Zero,
			Breakdown: []model.DrinkDebt{},
		}
		for _, d := range byMember[m.ID] {
			debt.Breakdown = append(debt.Breakdown, *d)
			debt.TotalOwed = debt.TotalOwed.Add(d.TotalCost)
		}
		sort.Slice(debt.Breakdown, func(i, j int) bool {
			return debt.Breakdown[i].DrinkName < debt.Breakdown[j].DrinkName
		})
		debts = append(debts, debt)
	}

	if s.observer != nil {
		s.observer.ObserveDebtQuery(time.Since(start))
	}

	return debts, nil
}
