package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shopdesk/backend/internal/domain"

	"github.com/jackc/pgx/v5"
)

const itemColumns = `
	id,
	name,
	item_code,
	category,
	sub_category,
	unit,
	sale_price::double precision,
	purchase_price::double precision,
	opening_quantity::double precision,
	min_stock_to_maintain::double precision,
	location,
	tax_rate::double precision,
	created_at,
	updated_at
`

func (r *Repository) ListItems(ctx context.Context) ([]domain.Item, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+itemColumns+` FROM items ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return collectItems(rows)
}

// ListItemsByCategory matches category and, when subCategory is not empty,
// sub category, ignoring case.
func (r *Repository) ListItemsByCategory(ctx context.Context, category, subCategory string) ([]domain.Item, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+itemColumns+`
		FROM items
		WHERE LOWER(category) = LOWER($1)
		  AND ($2 = '' OR LOWER(COALESCE(sub_category, '')) = LOWER($2))
		ORDER BY name ASC
	`, strings.TrimSpace(category), strings.TrimSpace(subCategory))
	if err != nil {
		return nil, fmt.Errorf("list items for category %q: %w", category, err)
	}
	return collectItems(rows)
}

func (r *Repository) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	item, err := scanItem(r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get item %d: %w", id, err)
	}
	return &item, nil
}

func (r *Repository) CreateItem(ctx context.Context, input domain.Item) (domain.Item, error) {
	item, err := scanItem(r.pool.QueryRow(ctx, `
		INSERT INTO items (
			name, item_code, category, sub_category, unit,
			sale_price, purchase_price, opening_quantity, min_stock_to_maintain,
			location, tax_rate
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+itemColumns,
		strings.TrimSpace(input.Name), normalizeNullable(input.ItemCode), strings.TrimSpace(input.Category),
		normalizeNullable(input.SubCategory), strings.TrimSpace(input.Unit),
		input.SalePrice, input.PurchasePrice, input.OpeningQuantity, input.MinStockToMaintain,
		normalizeNullable(input.Location), input.TaxRate,
	))
	if err != nil {
		return domain.Item{}, fmt.Errorf("create item: %w", mapPgError(err))
	}
	return item, nil
}

func (r *Repository) UpdateItem(ctx context.Context, id int64, input domain.Item) (*domain.Item, error) {
	item, err := scanItem(r.pool.QueryRow(ctx, `
		UPDATE items SET
			name = $2,
			item_code = $3,
			category = $4,
			sub_category = $5,
			unit = $6,
			sale_price = $7,
			purchase_price = $8,
			opening_quantity = $9,
			min_stock_to_maintain = $10,
			location = $11,
			tax_rate = $12,
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+itemColumns,
		id, strings.TrimSpace(input.Name), normalizeNullable(input.ItemCode), strings.TrimSpace(input.Category),
		normalizeNullable(input.SubCategory), strings.TrimSpace(input.Unit),
		input.SalePrice, input.PurchasePrice, input.OpeningQuantity, input.MinStockToMaintain,
		normalizeNullable(input.Location), input.TaxRate,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update item %d: %w", id, mapPgError(err))
	}
	return &item, nil
}

func (r *Repository) DeleteItem(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete item %d: %w", id, mapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertItems inserts new items and overwrites existing ones matched by name.
func (r *Repository) UpsertItems(ctx context.Context, rows []domain.ItemImportRow) (int, int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("begin item import tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	inserted, updated := 0, 0
	for _, row := range rows {
		var isInsert bool
		err := tx.QueryRow(ctx, `
			INSERT INTO items (
				name, item_code, category, sub_category, unit,
				sale_price, purchase_price, opening_quantity, min_stock_to_maintain
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT ((LOWER(name)))
			DO UPDATE SET
				item_code = COALESCE(EXCLUDED.item_code, items.item_code),
				category = EXCLUDED.category,
				sub_category = COALESCE(EXCLUDED.sub_category, items.sub_category),
				unit = EXCLUDED.unit,
				sale_price = EXCLUDED.sale_price,
				purchase_price = EXCLUDED.purchase_price,
				opening_quantity = EXCLUDED.opening_quantity,
				min_stock_to_maintain = EXCLUDED.min_stock_to_maintain,
				updated_at = NOW()
			RETURNING (xmax = 0)
		`, row.Name, normalizeNullable(row.ItemCode), row.Category, normalizeNullable(row.SubCategory), row.Unit,
			row.SalePrice, row.PurchasePrice, row.OpeningQuantity, row.MinStockToMaintain,
		).Scan(&isInsert)
		if err != nil {
			return 0, 0, fmt.Errorf("upsert item %q: %w", row.Name, err)
		}
		if isInsert {
			inserted++
		} else {
			updated++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("commit item import: %w", err)
	}
	return inserted, updated, nil
}

func collectItems(rows pgx.Rows) ([]domain.Item, error) {
	defer rows.Close()
	items := make([]domain.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

func scanItem(row pgx.Row) (domain.Item, error) {
	var item domain.Item
	err := row.Scan(
		&item.ID,
		&item.Name,
		&item.ItemCode,
		&item.Category,
		&item.SubCategory,
		&item.Unit,
		&item.SalePrice,
		&item.PurchasePrice,
		&item.OpeningQuantity,
		&item.MinStockToMaintain,
		&item.Location,
		&item.TaxRate,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	return item, err
}
