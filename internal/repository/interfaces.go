// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/nomicho/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByUsername はユーザー名でユーザーを検索する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error

	// SearchByUsername はユーザー名の部分一致検索を行う（大文字小文字を区別しない）。
	// limit件まで、ユーザー名昇順で返す。
	SearchByUsername(ctx context.Context, query string, limit int) ([]*model.User, error)

	// DeleteByID は指定IDのユーザーを削除する。
	// 関連するsessions、house_members、consumptionsはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// HouseRepository はハウスとメンバーシップの永続化インターフェース。
type HouseRepository interface {
	// FindByID は指定IDのハウスを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.House, error)

	// CreateWithCreator はハウスと作成者のメンバーシップを同一トランザクションで作成する。
	CreateWithCreator(ctx context.Context, house *model.House, creatorID string) error

	// Update はハウス情報を更新する。
	Update(ctx context.Context, house *model.House) error

	// DeleteByID は指定IDのハウスを削除する。
	// 関連するhouse_members、drink_types、consumptionsはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error

	// ListByUserID はユーザーが所属するハウス一覧を作成日時降順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.House, error)

	// ListMembers はハウスのメンバー一覧を所属順（created_at昇順）で返す。
	ListMembers(ctx context.Context, houseID string) ([]*model.User, error)

	// IsMember はユーザーがハウスの現メンバーかどうかを返す。
	IsMember(ctx context.Context, houseID, userID string) (bool, error)

	// ReplaceMembers はハウスのメンバー集合をuserIDsに置き換える。
	// 既存メンバーの所属日時（表示順）は維持し、除外されたメンバーのみ削除する。
	ReplaceMembers(ctx context.Context, houseID string, userIDs []string) error

	// DeleteMembershipsByUserID はユーザーの全メンバーシップを削除する。退会処理用。
	DeleteMembershipsByUserID(ctx context.Context, userID string) error
}

// DrinkRepository はドリンク種別の永続化インターフェース。
type DrinkRepository interface {
	// FindByID は指定IDのドリンクを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.DrinkType, error)

	// FindByHouseAndName はハウスIDと名前でドリンクを検索する。見つからない場合はnilを返す。
	// (house_id, name) のユニーク制約の事前チェックに使用する。
	FindByHouseAndName(ctx context.Context, houseID, name string) (*model.DrinkType, error)

	// Create はドリンクを作成する。
	Create(ctx context.Context, drink *model.DrinkType) error

	// Update はドリンク情報（名前・単価・閾値・在庫）を更新する。
	Update(ctx context.Context, drink *model.DrinkType) error

	// DeleteByID は指定IDのドリンクを削除する。関連するconsumptionsはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error

	// ListByHouseID はハウスのドリンク一覧を名前昇順で返す。
	ListByHouseID(ctx context.Context, houseID string) ([]*model.DrinkType, error)

	// ListLowStock はハウス内で在庫が閾値以下のドリンクを名前昇順で返す。買い出しリスト用。
	ListLowStock(ctx context.Context, houseID string) ([]*model.DrinkType, error)

	// AddStock は在庫をquantityだけ加算して永続化する。
	AddStock(ctx context.Context, id string, quantity int) error
}

// ConsumptionRepository は消費記録の永続化インターフェース。
type ConsumptionRepository interface {
	// FindByID は指定IDの消費記録を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Consumption, error)

	// Record は消費記録の挿入と対象ドリンクの在庫減算を同一トランザクションで行う。
	// 在庫減算は新規作成時のこの1回のみ。更新時には呼ばれない。
	Record(ctx context.Context, c *model.Consumption) error

	// Update は消費記録の数量と消費日時のみを更新する。
	// 在庫とコストには一切触れない（履歴原価と在庫減算の1回性を守る）。
	Update(ctx context.Context, id string, quantity int, consumedAt time.Time) error

	// DeleteByID は指定IDの消費記録を削除する。在庫は戻さない。
	DeleteByID(ctx context.Context, id string) error

	// ListByHouse はハウスの消費記録を消費日時降順で返す。limitが0以下の場合は全件。
	// ユーザー名とドリンク名をJOINして取得する。
	ListByHouse(ctx context.Context, houseID string, limit int) ([]model.ConsumptionWithNames, error)

	// ListRecentByUser はユーザーが所属する全ハウスの消費記録を消費日時降順でlimit件返す。
	ListRecentByUser(ctx context.Context, userID string, limit int) ([]model.ConsumptionWithNames, error)
}
