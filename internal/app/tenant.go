package app

import (
	"strings"

	"github.com/alexanderramin/strategos/internal/domain"
)

// TenantContext is the resolved caller identity every use case receives.
// Field order is the order in which Validate reports missing values.
type TenantContext struct {
	OrganizationID string `json:"organizationId" validate:"required"`
	BranchID       string `json:"branchId" validate:"required"`
	UserID         string `json:"userId" validate:"required"`
}

func NewTenantContext(userID, organizationID, branchID string) TenantContext {
	return TenantContext{
		OrganizationID: strings.TrimSpace(organizationID),
		BranchID:       strings.TrimSpace(branchID),
		UserID:         strings.TrimSpace(userID),
	}
}

// Validate rejects an incomplete tenant with an INVALID_CONTEXT error.
func (t TenantContext) Validate() error {
	err := validate.Struct(NewTenantContext(t.UserID, t.OrganizationID, t.BranchID))
	if fe, ok := firstFieldError(err); ok {
		return domain.NewContextError(fe.Field(), "%s is required", fe.Field())
	}
	return err
}
