package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shopdesk/backend/internal/domain"

	"github.com/jackc/pgx/v5"
)

// current_balance treats transfers as money leaving the account.
const accountColumns = `
	a.id,
	a.account_name,
	a.account_type,
	a.bank_name,
	a.account_number,
	a.ifsc_code,
	a.opening_balance::double precision,
	(a.opening_balance + COALESCE((
		SELECT SUM(CASE WHEN t.txn_type = 'deposit' THEN t.amount ELSE -t.amount END)
		FROM bank_transactions t
		WHERE t.account_id = a.id
	), 0))::double precision,
	a.as_of_date,
	a.created_at,
	a.updated_at
`

func (r *Repository) ListAccounts(ctx context.Context) ([]domain.CashBankAccount, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+accountColumns+` FROM cash_bank_accounts a ORDER BY a.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]domain.CashBankAccount, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return accounts, nil
}

func (r *Repository) GetAccount(ctx context.Context, id int64) (*domain.CashBankAccount, error) {
	account, err := scanAccount(r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM cash_bank_accounts a WHERE a.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get account %d: %w", id, err)
	}
	return &account, nil
}

func (r *Repository) CreateAccount(ctx context.Context, input domain.CashBankAccount) (domain.CashBankAccount, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO cash_bank_accounts (
			account_name, account_type, bank_name, account_number, ifsc_code, opening_balance, as_of_date
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, strings.TrimSpace(input.AccountName), input.AccountType, normalizeNullable(input.BankName),
		normalizeNullable(input.AccountNumber), normalizeNullable(input.IFSCCode), input.OpeningBalance, input.AsOfDate,
	).Scan(&id)
	if err != nil {
		return domain.CashBankAccount{}, fmt.Errorf("create account: %w", mapPgError(err))
	}
	created, err := r.GetAccount(ctx, id)
	if err != nil {
		return domain.CashBankAccount{}, err
	}
	return *created, nil
}

func (r *Repository) UpdateAccount(ctx context.Context, id int64, input domain.CashBankAccount) (*domain.CashBankAccount, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE cash_bank_accounts SET
			account_name = $2,
			account_type = $3,
			bank_name = $4,
			account_number = $5,
			ifsc_code = $6,
			opening_balance = $7,
			as_of_date = $8,
			updated_at = NOW()
		WHERE id = $1
	`, id, strings.TrimSpace(input.AccountName), input.AccountType, normalizeNullable(input.BankName),
		normalizeNullable(input.AccountNumber), normalizeNullable(input.IFSCCode), input.OpeningBalance, input.AsOfDate,
	)
	if err != nil {
		return nil, fmt.Errorf("update account %d: %w", id, mapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetAccount(ctx, id)
}

func (r *Repository) DeleteAccount(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cash_bank_accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete account %d: %w", id, mapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) ListTransactions(ctx context.Context, accountID int64) ([]domain.BankTransaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, account_id, txn_type, label, amount::double precision, txn_date, created_at
		FROM bank_transactions
		WHERE account_id = $1
		ORDER BY txn_date DESC, id DESC
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list transactions for account %d: %w", accountID, err)
	}
	defer rows.Close()

	txns := make([]domain.BankTransaction, 0)
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txns, nil
}

func (r *Repository) CreateTransaction(ctx context.Context, input domain.BankTransaction) (domain.BankTransaction, error) {
	txn, err := scanTransaction(r.pool.QueryRow(ctx, `
		INSERT INTO bank_transactions (account_id, txn_type, label, amount, txn_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, account_id, txn_type, label, amount::double precision, txn_date, created_at
	`, input.AccountID, input.Type, strings.TrimSpace(input.Label), input.Amount, input.Date))
	if err != nil {
		if errors.Is(mapPgError(err), ErrInUse) {
			return domain.BankTransaction{}, ErrNotFound
		}
		return domain.BankTransaction{}, fmt.Errorf("create transaction: %w", err)
	}
	return txn, nil
}

func scanAccount(row pgx.Row) (domain.CashBankAccount, error) {
	var account domain.CashBankAccount
	err := row.Scan(
		&account.ID,
		&account.AccountName,
		&account.AccountType,
		&account.BankName,
		&account.AccountNumber,
		&account.IFSCCode,
		&account.OpeningBalance,
		&account.CurrentBalance,
		&account.AsOfDate,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	return account, err
}

func scanTransaction(row pgx.Row) (domain.BankTransaction, error) {
	var txn domain.BankTransaction
	err := row.Scan(&txn.ID, &txn.AccountID, &txn.Type, &txn.Label, &txn.Amount, &txn.Date, &txn.CreatedAt)
	return txn, err
}
