package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shopdesk/backend/internal/domain"

	"github.com/jackc/pgx/v5"
)

func (r *Repository) GetCompany(ctx context.Context) (domain.CompanyProfile, error) {
	var p domain.CompanyProfile
	err := r.pool.QueryRow(ctx, `
		SELECT name, address, phone, email, website, logo_url, signature_url,
			currency_code, currency_symbol, updated_at
		FROM company_profile
		WHERE id = 1
	`).Scan(&p.Name, &p.Address, &p.Phone, &p.Email, &p.Website, &p.LogoURL, &p.SignatureURL,
		&p.CurrencyCode, &p.CurrencySymbol, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.CompanyProfile{}, nil
	}
	if err != nil {
		return domain.CompanyProfile{}, fmt.Errorf("get company profile: %w", err)
	}
	return p, nil
}

func (r *Repository) UpdateCompany(ctx context.Context, input domain.CompanyProfile) (domain.CompanyProfile, error) {
	var p domain.CompanyProfile
	err := r.pool.QueryRow(ctx, `
		INSERT INTO company_profile (
			id, name, address, phone, email, website, logo_url, signature_url, currency_code, currency_symbol
		)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			address = EXCLUDED.address,
			phone = EXCLUDED.phone,
			email = EXCLUDED.email,
			website = EXCLUDED.website,
			logo_url = EXCLUDED.logo_url,
			signature_url = EXCLUDED.signature_url,
			currency_code = EXCLUDED.currency_code,
			currency_symbol = EXCLUDED.currency_symbol,
			updated_at = NOW()
		RETURNING name, address, phone, email, website, logo_url, signature_url,
			currency_code, currency_symbol, updated_at
	`, strings.TrimSpace(input.Name), strings.TrimSpace(input.Address), strings.TrimSpace(input.Phone),
		strings.TrimSpace(input.Email), strings.TrimSpace(input.Website), strings.TrimSpace(input.LogoURL),
		strings.TrimSpace(input.SignatureURL), strings.ToUpper(strings.TrimSpace(input.CurrencyCode)),
		strings.TrimSpace(input.CurrencySymbol),
	).Scan(&p.Name, &p.Address, &p.Phone, &p.Email, &p.Website, &p.LogoURL, &p.SignatureURL,
		&p.CurrencyCode, &p.CurrencySymbol, &p.UpdatedAt)
	if err != nil {
		return domain.CompanyProfile{}, fmt.Errorf("update company profile: %w", err)
	}
	return p, nil
}
