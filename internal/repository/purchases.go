package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"shopdesk/backend/internal/domain"

	"github.com/jackc/pgx/v5"
)

func (r *Repository) ListPurchases(ctx context.Context) ([]domain.Purchase, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, bill_number, party_name, bill_date,
			total_amount::double precision, paid_amount::double precision, created_at
		FROM purchases
		ORDER BY bill_date DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	purchases := make([]domain.Purchase, 0)
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchases: %w", err)
	}
	return purchases, nil
}

func (r *Repository) GetPurchase(ctx context.Context, id int64) (*domain.Purchase, error) {
	p, err := scanPurchase(r.pool.QueryRow(ctx, `
		SELECT id, bill_number, party_name, bill_date,
			total_amount::double precision, paid_amount::double precision, created_at
		FROM purchases
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get purchase %d: %w", id, err)
	}
	lines, err := loadPurchaseLines(ctx, r.pool, id)
	if err != nil {
		return nil, err
	}
	p.Lines = lines
	return &p, nil
}

// CreatePurchase stores the bill and adds each line's quantity to the item's
// stock in the same transaction.
func (r *Repository) CreatePurchase(ctx context.Context, input domain.Purchase) (domain.Purchase, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Purchase{}, fmt.Errorf("begin purchase tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Stock rows are locked before any purchase_lines insert takes its key
	// share on them; the other order deadlocks two purchases of one item.
	if err := applyStockChangeTx(ctx, tx, input.Lines, 1); err != nil {
		return domain.Purchase{}, err
	}

	var id int64
	if err := tx.QueryRow(ctx, `
		INSERT INTO purchases (bill_number, party_name, bill_date, total_amount, paid_amount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, normalizeNullable(input.BillNumber), strings.TrimSpace(input.PartyName), input.BillDate,
		input.TotalAmount, input.PaidAmount,
	).Scan(&id); err != nil {
		return domain.Purchase{}, fmt.Errorf("insert purchase: %w", err)
	}

	for _, line := range input.Lines {
		if _, err := tx.Exec(ctx, `
			INSERT INTO purchase_lines (purchase_id, item_id, name, quantity, price, amount)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, id, line.ItemID, line.Name, line.Quantity, line.Price, line.Amount); err != nil {
			if errors.Is(mapPgError(err), ErrInUse) {
				return domain.Purchase{}, fmt.Errorf("item %d: %w", line.ItemID, ErrNotFound)
			}
			return domain.Purchase{}, fmt.Errorf("insert purchase line: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Purchase{}, fmt.Errorf("commit purchase: %w", err)
	}
	created, err := r.GetPurchase(ctx, id)
	if err != nil {
		return domain.Purchase{}, err
	}
	return *created, nil
}

// DeletePurchase removes the bill and takes its quantities back out of stock.
func (r *Repository) DeletePurchase(ctx context.Context, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete purchase tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	lines, err := loadPurchaseLines(ctx, tx, id)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM purchases WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete purchase %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	if err := applyStockChangeTx(ctx, tx, lines, -1); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete purchase %d: %w", id, err)
	}
	return nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func loadPurchaseLines(ctx context.Context, q querier, purchaseID int64) ([]domain.PurchaseLine, error) {
	rows, err := q.Query(ctx, `
		SELECT item_id, name, quantity::double precision, price::double precision, amount::double precision
		FROM purchase_lines
		WHERE purchase_id = $1
		ORDER BY id ASC
	`, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("query purchase lines %d: %w", purchaseID, err)
	}
	defer rows.Close()

	lines := make([]domain.PurchaseLine, 0)
	for rows.Next() {
		var line domain.PurchaseLine
		if err := rows.Scan(&line.ItemID, &line.Name, &line.Quantity, &line.Price, &line.Amount); err != nil {
			return nil, fmt.Errorf("scan purchase line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchase lines %d: %w", purchaseID, err)
	}
	return lines, nil
}

// applyStockChangeTx adds sign*quantity per item. Items are locked in id
// order. FOR NO KEY UPDATE leaves foreign key checks from other
// transactions unblocked, since only the quantity changes.
func applyStockChangeTx(ctx context.Context, tx pgx.Tx, lines []domain.PurchaseLine, sign float64) error {
	totals := make(map[int64]float64, len(lines))
	for _, line := range lines {
		totals[line.ItemID] += line.Quantity
	}
	ids := make([]int64, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		var current float64
		err := tx.QueryRow(ctx, `
			SELECT opening_quantity::double precision FROM items WHERE id = $1 FOR NO KEY UPDATE
		`, id).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("item %d: %w", id, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("lock item %d: %w", id, err)
		}
		if _, err := tx.Exec(ctx, `
			UPDATE items SET opening_quantity = $2, updated_at = NOW() WHERE id = $1
		`, id, current+sign*totals[id]); err != nil {
			return fmt.Errorf("update stock for item %d: %w", id, err)
		}
	}
	return nil
}

func scanPurchase(row pgx.Row) (domain.Purchase, error) {
	var p domain.Purchase
	if err := row.Scan(&p.ID, &p.BillNumber, &p.PartyName, &p.BillDate, &p.TotalAmount, &p.PaidAmount, &p.CreatedAt); err != nil {
		return domain.Purchase{}, err
	}
	p.BalanceDue = p.TotalAmount - p.PaidAmount
	p.Lines = []domain.PurchaseLine{}
	return p, nil
}
