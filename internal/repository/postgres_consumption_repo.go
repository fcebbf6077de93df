package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/nomicho/internal/model"
)

// PostgresConsumptionRepo はPostgreSQLを使用した消費記録リポジトリ。
type PostgresConsumptionRepo struct {
	db *sql.DB
}

// NewPostgresConsumptionRepo はPostgresConsumptionRepoを生成する。
func NewPostgresConsumptionRepo(db *sql.DB) *PostgresConsumptionRepo {
	return &PostgresConsumptionRepo{db: db}
}

// FindByID は指定IDの消費記録を取得する。見つからない場合はnilを返す。
func (r *PostgresConsumptionRepo) FindByID(ctx context.Context, id string) (*model.Consumption, error) {
	c := &model.Consumption{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, drink_type_id, house_id, quantity, consumed_at, cost, created_at, updated_at
		 FROM consumptions WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.UserID, &c.DrinkTypeID, &c.HouseID, &c.Quantity, &c.ConsumedAt, &c.Cost, &c.CreatedAt, &c.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("消費記録の取得に失敗しました: %w", err)
	}

	return c, nil
}

// Record は消費記録の挿入と対象ドリンクの在庫減算を同一トランザクションで行う。
// 片方だけが反映される部分失敗を防ぐため、2つの書き込みを必ず一緒にコミットする。
// 在庫の下限チェックは行わない（マイナス在庫を許容する）。
func (r *PostgresConsumptionRepo) Record(ctx context.Context, c *model.Consumption) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	// 消費記録を挿入
	_, err = tx.ExecContext(ctx,
		`INSERT INTO consumptions (id, user_id, drink_type_id, house_id, quantity, consumed_at, cost, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.UserID, c.DrinkTypeID, c.HouseID, c.Quantity, c.ConsumedAt, c.Cost, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("消費記録の挿入に失敗しました: %w", err)
	}

	// 在庫を減算
	result, err := tx.ExecContext(ctx,
		`UPDATE drink_types
		 SET current_stock = current_stock - $2, updated_at = NOW()
		 WHERE id = $1`,
		c.DrinkTypeID, c.Quantity,
	)
	if err != nil {
		return fmt.Errorf("在庫の減算に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("ドリンクが見つかりません: %s", c.DrinkTypeID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("トランザクションのコミットに失敗しました: %w", err)
	}

	return nil
}

// Update は消費記録の数量と消費日時のみを更新する。
// 在庫とコストには一切触れない（履歴原価と在庫減算の1回性を守る）。
func (r *PostgresConsumptionRepo) Update(ctx context.Context, id string, quantity int, consumedAt time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE consumptions
		 SET quantity = $2, consumed_at = $3, updated_at = NOW()
		 WHERE id = $1`,
		id, quantity, consumedAt,
	)
	if err != nil {
		return fmt.Errorf("消費記録の更新に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("消費記録が見つかりません: %s", id)
	}
	return nil
}

// DeleteByID は指定IDの消費記録を削除する。在庫は戻さない。
func (r *PostgresConsumptionRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM consumptions WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("消費記録の削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("消費記録が見つかりません: %s", id)
	}
	return nil
}

const consumptionWithNamesColumns = `c.id, c.user_id, c.drink_type_id, c.house_id, c.quantity, c.consumed_at, c.cost, c.created_at, c.updated_at, u.username, d.name`

// ListByHouse はハウスの消費記録を消費日時降順で返す。limitが0以下の場合は全件。
func (r *PostgresConsumptionRepo) ListByHouse(ctx context.Context, houseID string, limit int) ([]model.ConsumptionWithNames, error) {
	query := `SELECT ` + consumptionWithNamesColumns + `
		 FROM consumptions c
		 JOIN users u ON u.id = c.user_id
		 JOIN drink_types d ON d.id = c.drink_type_id
		 WHERE c.house_id = $1
		 ORDER BY c.consumed_at DESC`
	args := []any{houseID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	return r.listWithNames(ctx, query, args...)
}

// ListRecentByUser はユーザーが所属する全ハウスの消費記録を消費日時降順でlimit件返す。
func (r *PostgresConsumptionRepo) ListRecentByUser(ctx context.Context, userID string, limit int) ([]model.ConsumptionWithNames, error) {
	return r.listWithNames(ctx,
		`SELECT `+consumptionWithNamesColumns+`
		 FROM consumptions c
		 JOIN users u ON u.id = c.user_id
		 JOIN drink_types d ON d.id = c.drink_type_id
		 WHERE c.house_id IN (SELECT house_id FROM house_members WHERE user_id = $1)
		 ORDER BY c.consumed_at DESC
		 LIMIT $2`,
		userID, limit,
	)
}

// listWithNames は名前付き消費記録一覧クエリの共通処理。
func (r *PostgresConsumptionRepo) listWithNames(ctx context.Context, query string, args ...any) ([]model.ConsumptionWithNames, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("消費記録一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var results []model.ConsumptionWithNames
	for rows.Next() {
		var c model.ConsumptionWithNames
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.DrinkTypeID, &c.HouseID, &c.Quantity, &c.ConsumedAt, &c.Cost, &c.CreatedAt, &c.UpdatedAt,
			&c.Username, &c.DrinkName,
		); err != nil {
			return nil, fmt.Errorf("消費記録行の読み取りに失敗しました: %w", err)
		}
		results = append(results, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("消費記録一覧の走査に失敗しました: %w", err)
	}
	return results, nil
}

// compile-time interface check
var _ ConsumptionRepository = (*PostgresConsumptionRepo)(nil)
