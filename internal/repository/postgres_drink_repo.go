package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/nomicho/internal/model"
)

// PostgresDrinkRepo はPostgreSQLを使用したドリンクリポジトリ。
type PostgresDrinkRepo struct {
	db *sql.DB
}

// NewPostgresDrinkRepo はPostgresDrinkRepoを生成する。
func NewPostgresDrinkRepo(db *sql.DB) *PostgresDrinkRepo {
	return &PostgresDrinkRepo{db: db}
}

const drinkColumns = `id, house_id, name, price_per_unit, low_stock_threshold, current_stock, created_at, updated_at`

// scanDrink は1行分のドリンクを読み取る。
func scanDrink(row *sql.Row) (*model.DrinkType, error) {
	drink := &model.DrinkType{}
	err := row.Scan(&drink.ID, &drink.HouseID, &drink.Name, &drink.PricePerUnit,
		&drink.LowStockThreshold, &drink.CurrentStock, &drink.CreatedAt, &drink.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return drink, nil
}

// FindByID は指定IDのドリンクを取得する。見つからない場合はnilを返す。
func (r *PostgresDrinkRepo) FindByID(ctx context.Context, id string) (*model.DrinkType, error) {
	drink, err := scanDrink(r.db.QueryRowContext(ctx,
		`SELECT `+drinkColumns+` FROM drink_types WHERE id = $1`,
		id,
	))
	if err != nil {
		return nil, fmt.Errorf("ドリンクの取得に失敗しました: %w", err)
	}
	return drink, nil
}

// FindByHouseAndName はハウスIDと名前でドリンクを検索する。見つからない場合はnilを返す。
func (r *PostgresDrinkRepo) FindByHouseAndName(ctx context.Context, houseID, name string) (*model.DrinkType, error) {
	drink, err := scanDrink(r.db.QueryRowContext(ctx,
		`SELECT `+drinkColumns+` FROM drink_types WHERE house_id = $1 AND name = $2`,
		houseID, name,
	))
	if err != nil {
		return nil, fmt.Errorf("ハウスと名前によるドリンクの検索に失敗しました: %w", err)
	}
	return drink, nil
}

// Create はドリンクを作成する。
func (r *PostgresDrinkRepo) Create(ctx context.Context, drink *model.DrinkType) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO drink_types (id, house_id, name, price_per_unit, low_stock_threshold, current_stock, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		drink.ID, drink.HouseID, drink.Name, drink.PricePerUnit,
		drink.LowStockThreshold, drink.CurrentStock, drink.CreatedAt, drink.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("ドリンクの作成に失敗しました: %w", err)
	}
	return nil
}

// Update はドリンク情報（名前・単価・閾値・在庫）を更新する。
func (r *PostgresDrinkRepo) Update(ctx context.Context, drink *model.DrinkType) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE drink_types
		 SET name = $2, price_per_unit = $3, low_stock_threshold = $4, current_stock = $5, updated_at = NOW()
		 WHERE id = $1`,
		drink.ID, drink.Name, drink.PricePerUnit, drink.LowStockThreshold, drink.CurrentStock,
	)
	if err != nil {
		return fmt.Errorf("ドリンクの更新に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("ドリンクが見つかりません: %s", drink.ID)
	}
	return nil
}

// DeleteByID は指定IDのドリンクを削除する。関連するconsumptionsはCASCADE削除される。
func (r *PostgresDrinkRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM drink_types WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("ドリンクの削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("ドリンクが見つかりません: %s", id)
	}
	return nil
}

// ListByHouseID はハウスのドリンク一覧を名前昇順で返す。
func (r *PostgresDrinkRepo) ListByHouseID(ctx context.Context, houseID string) ([]*model.DrinkType, error) {
	return r.listDrinks(ctx,
		`SELECT `+drinkColumns+` FROM drink_types WHERE house_id = $1 ORDER BY name ASC`,
		houseID,
	)
}

// ListLowStock はハウス内で在庫が閾値以下のドリンクを名前昇順で返す。買い出しリスト用。
func (r *PostgresDrinkRepo) ListLowStock(ctx context.Context, houseID string) ([]*model.DrinkType, error) {
	return r.listDrinks(ctx,
		`SELECT `+drinkColumns+` FROM drink_types
		 WHERE house_id = $1 AND current_stock <= low_stock_threshold
		 ORDER BY name ASC`,
		houseID,
	)
}

// AddStock は在庫をquantityだけ加算して永続化する。
func (r *PostgresDrinkRepo) AddStock(ctx context.Context, id string, quantity int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE drink_types
		 SET current_stock = current_stock + $2, updated_at = NOW()
		 WHERE id = $1`,
		id, quantity,
	)
	if err != nil {
		return fmt.Errorf("在庫の加算に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("ドリンクが見つかりません: %s", id)
	}
	return nil
}

// listDrinks はドリンク一覧クエリの共通処理。
func (r *PostgresDrinkRepo) listDrinks(ctx context.Context, query string, args ...any) ([]*model.DrinkType, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ドリンク一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var drinks []*model.DrinkType
	for rows.Next() {
		drink := &model.DrinkType{}
		if err := rows.Scan(&drink.ID, &drink.HouseID, &drink.Name, &drink.PricePerUnit,
			&drink.LowStockThreshold, &drink.CurrentStock, &drink.CreatedAt, &drink.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ドリンク行の読み取りに失敗しました: %w", err)
		}
		drinks = append(drinks, drink)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ドリンク一覧の走査に失敗しました: %w", err)
	}
	return drinks, nil
}

// compile-time interface check
var _ DrinkRepository = (*PostgresDrinkRepo)(nil)
