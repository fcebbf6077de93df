// Package model はドメインモデルを定義する。
package model

import "time"

// MaxHouseMembers はハウスに所属できるメンバー数の上限。
// スキーマではなくサービス層（境界）で強制する。
const MaxHouseMembers = 4

// House は飲み物代を割り勘するシェアハウス（最大4人）を表す。
type House struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
