package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/strategos/internal/contract"
	"github.com/alexanderramin/strategos/internal/service"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Plans     service.ActionPlanService
	FollowUps service.FollowUpService
	Ideas     service.IdeaService
	KPIs      service.KPIService

	// Tenant is the default caller identity, typically from config.
	// The --org, --branch and --user flags override it per invocation.
	Tenant contract.TenantContext

	// Now feeds relative dates in the output. Defaults to time.Now.
	Now func() time.Time

	// IsInteractive reports whether forms may prompt on stdin.
	IsInteractive func() bool

	// RunForm runs a huh form. Tests replace it to fill fields directly.
	RunForm func(f *huh.Form) error
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) runForm(f *huh.Form) error {
	if a.RunForm != nil {
		return a.RunForm(f)
	}
	return f.Run()
}

type tenantFlags struct {
	org, branch, user string
}

// NewRootCmd creates the top-level "strategos" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	var flags tenantFlags

	root := &cobra.Command{
		Use:           "strategos",
		Short:         "Strategic execution engine: 5W2H action plans, PDCA, 3G follow-ups, ideas and KPIs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			app.Tenant = contract.NewTenantContext(
				pick(flags.user, app.Tenant.UserID),
				pick(flags.org, app.Tenant.OrganizationID),
				pick(flags.branch, app.Tenant.BranchID),
			)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.org, "org", "", "Organization ID (overrides tenant.organization_id)")
	pf.StringVar(&flags.branch, "branch", "", "Branch ID (overrides tenant.branch_id)")
	pf.StringVar(&flags.user, "user", "", "Acting user ID (overrides tenant.user_id)")

	root.AddCommand(
		newPlanCmd(app),
		newFollowUpCmd(app),
		newIdeaCmd(app),
		newKPICmd(app),
	)

	return root
}

func pick(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}

// out writes one line of command output.
func out(cmd *cobra.Command, s string) {
	fmt.Fprintln(cmd.OutOrStdout(), s)
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
