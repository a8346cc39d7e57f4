package service

import (
	"context"
	"strings"

	"github.com/alexanderramin/strategos/internal/contract"
	"github.com/alexanderramin/strategos/internal/domain"
)

type codeFinder[T any] interface {
	FindByID(ctx context.Context, id, orgID, branchID string) (T, error)
	FindByCode(ctx context.Context, code, orgID, branchID string) (T, error)
}

// resolve looks an aggregate up by ID and falls back to its human code.
func resolve[T any](ctx context.Context, repo codeFinder[T], tenant contract.TenantContext, idOrCode string) (T, error) {
	key := strings.TrimSpace(idOrCode)
	v, err := repo.FindByID(ctx, key, tenant.OrganizationID, tenant.BranchID)
	if err == nil || !domain.IsNotFound(err) {
		return v, err
	}
	return repo.FindByCode(ctx, key, tenant.OrganizationID, tenant.BranchID)
}
