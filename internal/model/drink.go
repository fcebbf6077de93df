// Package model はドメインモデルを定義する。
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DrinkType はハウスに登録された飲み物の種類（ビール、炭酸水等）を表す。
// (house_id, name) の組はユニーク。在庫は消費で減り補充で増えるが、
// 下限は設けない（マイナス在庫は「在庫以上に飲んだ」ことを意味する）。
type DrinkType struct {
	ID                string
	HouseID           string
	Name              string
	PricePerUnit      decimal.Decimal
	LowStockThreshold int
	CurrentStock      int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsLowStock は在庫が閾値以下（買い出しリスト対象）かどうかを返す。
func (d *DrinkType) IsLowStock() bool {
	return d.CurrentStock <= d.LowStockThreshold
}
