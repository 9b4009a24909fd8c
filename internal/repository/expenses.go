package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"shopdesk/backend/internal/domain"

	"github.com/jackc/pgx/v5"
)

func (r *Repository) ListExpenseCategories(ctx context.Context) ([]domain.ExpenseCategory, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT
			c.id,
			c.name,
			c.category_type,
			COALESCE(SUM(e.total_amount), 0)::double precision,
			c.created_at
		FROM expense_categories c
		LEFT JOIN expenses e ON e.category_id = c.id
		GROUP BY c.id
		ORDER BY c.name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list expense categories: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.ExpenseCategory, 0)
	for rows.Next() {
		var c domain.ExpenseCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.CategoryType, &c.TotalAmount, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan expense category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expense categories: %w", err)
	}
	return categories, nil
}

func (r *Repository) CreateExpenseCategory(ctx context.Context, input domain.ExpenseCategory) (domain.ExpenseCategory, error) {
	categoryType := input.CategoryType
	if categoryType == "" {
		categoryType = "indirect"
	}
	var c domain.ExpenseCategory
	err := r.pool.QueryRow(ctx, `
		INSERT INTO expense_categories (name, category_type)
		VALUES ($1, $2)
		RETURNING id, name, category_type, created_at
	`, strings.TrimSpace(input.Name), categoryType).Scan(&c.ID, &c.Name, &c.CategoryType, &c.CreatedAt)
	if err != nil {
		return domain.ExpenseCategory{}, fmt.Errorf("create expense category: %w", mapPgError(err))
	}
	return c, nil
}

func (r *Repository) DeleteExpenseCategory(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM expense_categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete expense category %d: %w", id, mapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const expenseColumns = `
	e.id,
	e.category_id,
	c.name,
	e.expense_number,
	e.expense_date,
	e.payment_type,
	e.description,
	e.lines,
	e.total_amount::double precision,
	e.created_at,
	e.updated_at
`

// ListExpenses returns every expense, or only one category's when categoryID
// is set.
func (r *Repository) ListExpenses(ctx context.Context, categoryID *int64) ([]domain.Expense, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+expenseColumns+`
		FROM expenses e
		JOIN expense_categories c ON c.id = e.category_id
		WHERE ($1::bigint IS NULL OR e.category_id = $1)
		ORDER BY e.expense_date DESC, e.id DESC
	`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	expenses := make([]domain.Expense, 0)
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return expenses, nil
}

func (r *Repository) GetExpense(ctx context.Context, id int64) (*domain.Expense, error) {
	expense, err := scanExpense(r.pool.QueryRow(ctx, `
		SELECT `+expenseColumns+`
		FROM expenses e
		JOIN expense_categories c ON c.id = e.category_id
		WHERE e.id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get expense %d: %w", id, err)
	}
	return &expense, nil
}

func (r *Repository) CreateExpense(ctx context.Context, input domain.Expense) (domain.Expense, error) {
	lines, err := json.Marshal(input.Lines)
	if err != nil {
		return domain.Expense{}, fmt.Errorf("encode expense lines: %w", err)
	}
	var id int64
	err = r.pool.QueryRow(ctx, `
		INSERT INTO expenses (category_id, expense_number, expense_date, payment_type, description, lines, total_amount)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7)
		RETURNING id
	`, input.CategoryID, normalizeNullable(input.ExpenseNumber), input.ExpenseDate, input.PaymentType,
		normalizeNullable(input.Description), string(lines), input.TotalAmount,
	).Scan(&id)
	if err != nil {
		if errors.Is(mapPgError(err), ErrInUse) {
			return domain.Expense{}, fmt.Errorf("expense category %d: %w", input.CategoryID, ErrNotFound)
		}
		return domain.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	created, err := r.GetExpense(ctx, id)
	if err != nil {
		return domain.Expense{}, err
	}
	return *created, nil
}

func (r *Repository) UpdateExpense(ctx context.Context, id int64, input domain.Expense) (*domain.Expense, error) {
	lines, err := json.Marshal(input.Lines)
	if err != nil {
		return nil, fmt.Errorf("encode expense lines: %w", err)
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE expenses SET
			category_id = $2,
			expense_number = $3,
			expense_date = $4,
			payment_type = $5,
			description = $6,
			lines = $7::jsonb,
			total_amount = $8,
			updated_at = NOW()
		WHERE id = $1
	`, id, input.CategoryID, normalizeNullable(input.ExpenseNumber), input.ExpenseDate, input.PaymentType,
		normalizeNullable(input.Description), string(lines), input.TotalAmount,
	)
	if err != nil {
		return nil, fmt.Errorf("update expense %d: %w", id, mapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetExpense(ctx, id)
}

func (r *Repository) DeleteExpense(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanExpense(row pgx.Row) (domain.Expense, error) {
	var (
		expense domain.Expense
		lines   []byte
	)
	if err := row.Scan(
		&expense.ID,
		&expense.CategoryID,
		&expense.CategoryName,
		&expense.ExpenseNumber,
		&expense.ExpenseDate,
		&expense.PaymentType,
		&expense.Description,
		&lines,
		&expense.TotalAmount,
		&expense.CreatedAt,
		&expense.UpdatedAt,
	); err != nil {
		return domain.Expense{}, err
	}
	expense.Lines = []domain.ExpenseLine{}
	if len(lines) > 0 {
		if err := json.Unmarshal(lines, &expense.Lines); err != nil {
			return domain.Expense{}, fmt.Errorf("decode expense %d lines: %w", expense.ID, err)
		}
	}
	return expense, nil
}
