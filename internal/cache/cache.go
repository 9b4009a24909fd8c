package cache

import (
	"context"
	"time"

	"shopdesk/backend/internal/domain"
)

// CompanyCache keeps the shop profile close to the renderers, which read it
// for every invoice and report.
type CompanyCache interface {
	GetCompany(ctx context.Context) (*domain.CompanyProfile, bool, error)
	SetCompany(ctx context.Context, profile domain.CompanyProfile, ttl time.Duration) error
	InvalidateCompany(ctx context.Context) error
}

type NoopCompanyCache struct{}

func (NoopCompanyCache) GetCompany(_ context.Context) (*domain.CompanyProfile, bool, error) {
	return nil, false, nil
}

func (NoopCompanyCache) SetCompany(_ context.Context, _ domain.CompanyProfile, _ time.Duration) error {
	return nil
}

func (NoopCompanyCache) InvalidateCompany(_ context.Context) error {
	return nil
}
