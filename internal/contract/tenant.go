package contract

import "github.com/alexanderramin/strategos/internal/app"

type TenantContext = app.TenantContext

func NewTenantContext(userID, organizationID, branchID string) TenantContext {
	return app.NewTenantContext(userID, organizationID, branchID)
}
