// Package model はドメインモデルを定義する。
package model

import "github.com/shopspring/decimal"

// DrinkDebt はある飲み物についての消費数量と費用の小計。
type DrinkDebt struct {
	DrinkName string
	Quantity  int
	TotalCost decimal.Decimal
}

// MemberDebt はハウスメンバー1人分の割り勘集計結果。
// 消費のないメンバーもTotalOwed=0、空のBreakdownで結果に含まれる。
type MemberDebt struct {
	UserID    string
	Username  string
	TotalOwed decimal.Decimal
	Breakdown []DrinkDebt
}
