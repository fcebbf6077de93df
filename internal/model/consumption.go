// Package model はドメインモデルを定義する。
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Consumption は飲み物消費の記録を表す。
// Costは作成時点の単価×数量で確定し、以後ドリンクの価格が変わっても
// 再計算しない（履歴原価方式）。在庫の減算は新規作成時に一度だけ行う。
type Consumption struct {
	ID          string
	UserID      string
	DrinkTypeID string
	HouseID     string
	Quantity    int
	ConsumedAt  time.Time
	Cost        decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ConsumptionWithNames は消費記録に表示用の名前を結合したモデル。
// users、drink_typesテーブルとJOINして取得される。
type ConsumptionWithNames struct {
	Consumption
	Username  string
	DrinkName string
}
