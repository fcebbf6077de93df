package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/nomicho/internal/model"
)

// PostgresHouseRepo はPostgreSQLを使用したハウスリポジトリ。
type PostgresHouseRepo struct {
	db *sql.DB
}

// NewPostgresHouseRepo はPostgresHouseRepoを生成する。
func NewPostgresHouseRepo(db *sql.DB) *PostgresHouseRepo {
	return &PostgresHouseRepo{db: db}
}

// FindByID は指定IDのハウスを取得する。見つからない場合はnilを返す。
func (r *PostgresHouseRepo) FindByID(ctx context.Context, id string) (*model.House, error) {
	house := &model.House{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM houses WHERE id = $1`,
		id,
	).Scan(&house.ID, &house.Name, &house.CreatedAt, &house.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ハウスの取得に失敗しました: %w", err)
	}

	return house, nil
}

// CreateWithCreator はハウスと作成者のメンバーシップを同一トランザクションで作成する。
func (r *PostgresHouseRepo) CreateWithCreator(ctx context.Context, house *model.House, creatorID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	// ハウスを作成
	_, err = tx.ExecContext(ctx,
		`INSERT INTO houses (id, name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4)`,
		house.ID, house.Name, house.CreatedAt, house.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("ハウスの作成に失敗しました: %w", err)
	}

	// 作成者を最初のメンバーとして登録
	_, err = tx.ExecContext(ctx,
		`INSERT INTO house_members (house_id, user_id, created_at)
		 VALUES ($1, $2, $3)`,
		house.ID, creatorID, house.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("作成者のメンバー登録に失敗しました: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("トランザクションのコミットに失敗しました: %w", err)
	}

	return nil
}

// Update はハウス情報を更新する。
func (r *PostgresHouseRepo) Update(ctx context.Context, house *model.House) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE houses SET name = $2, updated_at = NOW() WHERE id = $1`,
		house.ID, house.Name,
	)
	if err != nil {
		return fmt.Errorf("ハウスの更新に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("ハウスが見つかりません: %s", house.ID)
	}
	return nil
}

// DeleteByID は指定IDのハウスを削除する。
// 関連するhouse_members、drink_types、consumptionsはCASCADE削除される。
func (r *PostgresHouseRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM houses WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("ハウスの削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("ハウスが見つかりません: %s", id)
	}
	return nil
}

// ListByUserID はユーザーが所属するハウス一覧を作成日時降順で返す。
func (r *PostgresHouseRepo) ListByUserID(ctx context.Context, userID string) ([]*model.House, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT h.id, h.name, h.created_at, h.updated_at
		 FROM houses h
		 JOIN house_members hm ON hm.house_id = h.id
		 WHERE hm.user_id = $1
		 ORDER BY h.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("ハウス一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var houses []*model.House
	for rows.Next() {
		house := &model.House{}
		if err := rows.Scan(&house.ID, &house.Name, &house.CreatedAt, &house.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ハウス行の読み取りに失敗しました: %w", err)
		}
		houses = append(houses, house)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ハウス一覧の走査に失敗しました: %w", err)
	}
	return houses, nil
}

// ListMembers はハウスのメンバー一覧を所属順（created_at昇順）で返す。
func (r *PostgresHouseRepo) ListMembers(ctx context.Context, houseID string) ([]*model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT u.id, u.username, u.email, u.name, u.password_hash, u.created_at, u.updated_at
		 FROM users u
		 JOIN house_members hm ON hm.user_id = u.id
		 WHERE hm.house_id = $1
		 ORDER BY hm.created_at ASC`,
		houseID,
	)
	if err != nil {
		return nil, fmt.Errorf("メンバー一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user := &model.User{}
		if err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.Name, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("メンバー行の読み取りに失敗しました: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("メンバー一覧の走査に失敗しました: %w", err)
	}
	return users, nil
}

// IsMember はユーザーがハウスの現メンバーかどうかを返す。
func (r *PostgresHouseRepo) IsMember(ctx context.Context, houseID, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (
		    SELECT 1 FROM house_members WHERE house_id = $1 AND user_id = $2
		 )`,
		houseID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("メンバーシップの確認に失敗しました: %w", err)
	}
	return exists, nil
}

// ReplaceMembers はハウスのメンバー集合をuserIDsに置き換える。
// 既存メンバーの所属日時（表示順）は維持し、除外されたメンバーのみ削除する。
func (r *PostgresHouseRepo) ReplaceMembers(ctx context.Context, houseID string, userIDs []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	// 新しい集合に含まれないメンバーを削除
	_, err = tx.ExecContext(ctx,
		`DELETE FROM house_members
		 WHERE house_id = $1 AND user_id <> ALL($2)`,
		houseID, pq.Array(userIDs),
	)
	if err != nil {
		return fmt.Errorf("メンバーの削除に失敗しました: %w", err)
	}

	// 新規メンバーを追加（既存メンバーはcreated_atを維持）
	for _, userID := range userIDs {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO house_members (house_id, user_id, created_at)
			 VALUES ($1, $2, NOW())
			 ON CONFLICT (house_id, user_id) DO NOTHING`,
			houseID, userID,
		)
		if err != nil {
			return fmt.Errorf("メンバーの追加に失敗しました: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("トランザクションのコミットに失敗しました: %w", err)
	}

	return nil
}

// DeleteMembershipsByUserID はユーザーの全メンバーシップを削除する。退会処理用。
func (r *PostgresHouseRepo) DeleteMembershipsByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM house_members WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("メンバーシップの削除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ HouseRepository = (*PostgresHouseRepo)(nil)
