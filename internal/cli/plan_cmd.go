package cli

import (
	"fmt"

	"github.com/alexanderramin/strategos/internal/cli/formatter"
	"github.com/alexanderramin/strategos/internal/contract"
	"github.com/alexanderramin/strategos/internal/domain"
	"github.com/spf13/cobra"
)

func newPlanCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "plan",
		Aliases: []string{"plans"},
		Short:   "Manage 5W2H action plans",
	}

	cmd.AddCommand(
		newPlanCreateCmd(app),
		newPlanListCmd(app),
		newPlanShowCmd(app),
		newPlanLineageCmd(app),
		newPlanSubmitCmd(app),
		newPlanAdvanceCmd(app),
		newPlanProgressCmd(app),
		newPlanEvidenceCmd(app),
		newPlanScheduleCmd(app),
		newPlanBlockCmd(app),
		newPlanUnblockCmd(app),
		newPlanCancelCmd(app),
		newPlanRemoveCmd(app),
		newPlanReproposeCmd(app),
	)

	return cmd
}

func newPlanCreateCmd(app *App) *cobra.Command {
	var (
		req                          contract.CreateActionPlanRequest
		start, end, amount, priority string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an action plan in PLAN/DRAFT",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if req.WhenStart, err = parseDate("start", start); err != nil {
				return err
			}
			if req.WhenStart.IsZero() {
				req.WhenStart = app.now().UTC()
			}
			if req.WhenEnd, err = parseDate("end", end); err != nil {
				return err
			}
			if req.HowMuchAmount, err = parseAmount("amount", amount); err != nil {
				return err
			}
			req.Priority = domain.Priority(upper(priority))
			req.HowMuchCurrency = upper(req.HowMuchCurrency)
			req.Tenant = app.Tenant
			if req.WhoUserID == "" {
				req.WhoUserID = app.Tenant.UserID
			}
			if req.Who == "" {
				req.Who = req.WhoUserID
			}

			plan, err := app.Plans.Create(ctxOf(cmd), req)
			if err != nil {
				return err
			}
			out(cmd, fmt.Sprintf("Created action plan %s", plan.Code))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.What, "what", "", "What will be done")
	f.StringVar(&req.Why, "why", "", "Why it is needed")
	f.StringVar(&req.WhereLocation, "where", "", "Where it happens")
	f.StringVar(&start, "start", "", "Start date (YYYY-MM-DD, default today)")
	f.StringVar(&end, "end", "", "Deadline (YYYY-MM-DD)")
	f.StringVar(&req.Who, "who", "", "Responsible person (default: the acting user)")
	f.StringVar(&req.WhoUserID, "who-id", "", "Responsible user ID (default: the acting user)")
	f.StringVar(&req.How, "how", "", "How it will be done")
	f.StringVar(&amount, "amount", "", "Budget amount")
	f.StringVar(&req.HowMuchCurrency, "currency", "", "ISO currency of the budget (default BRL)")
	f.StringVar(&priority, "priority", "", "LOW, MEDIUM, HIGH or CRITICAL")
	f.StringVar(&req.Code, "code", "", "Explicit plan code (allocated when omitted)")
	for _, name := range []string{"what", "why", "where", "end", "how"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func newPlanListCmd(app *App) *cobra.Command {
	var (
		status, phase string
		req           contract.ListActionPlansRequest
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List action plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Tenant = app.Tenant
			req.Status = domain.ActionPlanStatus(upper(status))
			req.Phase = domain.PDCAPhase(upper(phase))

			page, err := app.Plans.List(ctxOf(cmd), req)
			if err != nil {
				return err
			}
			if len(page.Items) == 0 {
				out(cmd, "No action plans found.")
				return nil
			}
			out(cmd, formatter.FormatPlanList(page.Items, page.Total, app.now()))
			return nil
		},
	}

	defaults := contract.NewListActionPlansRequest(contract.TenantContext{})
	f := cmd.Flags()
	f.StringVar(&status, "status", "", "Filter by status")
	f.StringVar(&phase, "phase", "", "Filter by PDCA phase")
	f.StringVar(&req.WhoUserID, "who-id", "", "Filter by responsible user")
	f.StringVar(&req.ParentID, "parent", "", "Filter by parent plan ID")
	f.StringVar(&req.Search, "search", "", "Search in what/why/code")
	f.BoolVar(&req.OnlyOverdue, "overdue", false, "Only open plans past their deadline")
	f.IntVar(&req.Page, "page", defaults.Page, "Page number")
	f.IntVar(&req.PageSize, "page-size", defaults.PageSize, "Page size (max 100)")

	return cmd
}

func newPlanShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID|CODE",
		Short: "Show plan details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := app.Plans.Get(ctxOf(cmd), app.Tenant, args[0])
			if err != nil {
				return err
			}
			out(cmd, formatter.FormatPlan(plan, app.now()))
			return nil
		},
	}
}

func newPlanLineageCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "lineage ID|CODE",
		Short: "Show the reproposition chain a plan belongs to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chain, err := app.Plans.Lineage(ctxOf(cmd), app.Tenant, args[0])
			if err != nil {
				return err
			}
			out(cmd, formatter.FormatLineage(chain))
			return nil
		},
	}
}

// planAction builds a single-argument command around a plan transition.
func planAction(app *App, use, short, verb string, fn func(cmd *cobra.Command, id string) (*domain.ActionPlan, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID|CODE",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := fn(cmd, args[0])
			if err != nil {
				return err
			}
			out(cmd, fmt.Sprintf("%s %s (%s, %s)", verb, plan.Code, plan.Status, plan.PDCACycle))
			return nil
		},
	}
}

func newPlanSubmitCmd(app *App) *cobra.Command {
	return planAction(app, "submit", "Move a draft plan to PENDING", "Submitted", func(cmd *cobra.Command, id string) (*domain.ActionPlan, error) {
		return app.Plans.Submit(ctxOf(cmd), app.Tenant, id)
	})
}

func newPlanBlockCmd(app *App) *cobra.Command {
	return planAction(app, "block", "Mark a plan as blocked", "Blocked", func(cmd *cobra.Command, id string) (*domain.ActionPlan, error) {
		return app.Plans.Block(ctxOf(cmd), app.Tenant, id)
	})
}

func newPlanUnblockCmd(app *App) *cobra.Command {
	return planAction(app, "unblock", "Resume a blocked plan", "Unblocked", func(cmd *cobra.Command, id string) (*domain.ActionPlan, error) {
		return app.Plans.Unblock(ctxOf(cmd), app.Tenant, id)
	})
}

func newPlanAdvanceCmd(app *App) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "advance ID|CODE",
		Short: "Advance the plan to the next PDCA phase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Plans.AdvancePDCA(ctxOf(cmd), app.Tenant, args[0], reason)
			if err != nil {
				return err
			}
			out(cmd, formatter.FormatAdvance(res))
			return nil
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "Why the phase changes")

	return cmd
}

func newPlanProgressCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "progress ID|CODE PERCENT",
		Short: "Set the completion percentage (100 completes the plan)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var pct int
			if _, err := fmt.Sscanf(args[1], "%d", &pct); err != nil {
				return fmt.Errorf("invalid percent %q", args[1])
			}
			res, err := app.Plans.UpdateProgress(ctxOf(cmd), app.Tenant, args[0], pct)
			if err != nil {
				return err
			}
			msg := fmt.Sprintf("%s %s", res.Plan.Code, formatter.RenderProgress(res.Plan.CompletionPercent, 10))
			if res.CompletedNow {
				msg += "\n" + formatter.StyleGreen.Render("Plan completed")
			}
			out(cmd, msg)
			return nil
		},
	}
}

func newPlanEvidenceCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "evidence ID|CODE URL",
		Short: "Attach an evidence URL",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := app.Plans.AddEvidence(ctxOf(cmd), app.Tenant, args[0], args[1])
			if err != nil {
				return err
			}
			out(cmd, fmt.Sprintf("%s now has %d evidence item(s)", plan.Code, len(plan.EvidenceURLs)))
			return nil
		},
	}
}

func newPlanScheduleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule ID|CODE DATE",
		Short: "Schedule the next follow-up",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDate("date", args[1])
			if err != nil {
				return err
			}
			plan, err := app.Plans.ScheduleFollowUp(ctxOf(cmd), app.Tenant, args[0], date)
			if err != nil {
				return err
			}
			out(cmd, fmt.Sprintf("Next follow-up of %s on %s", plan.Code, formatter.ShortDate(*plan.NextFollowUpDate)))
			return nil
		},
	}
}

func newPlanCancelCmd(app *App) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "cancel ID|CODE",
		Short: "Cancel a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := app.Plans.Cancel(ctxOf(cmd), app.Tenant, args[0], reason)
			if err != nil {
				return err
			}
			out(cmd, fmt.Sprintf("Cancelled %s", plan.Code))
			return nil
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "Cancellation reason")
	_ = cmd.MarkFlagRequired("reason")

	return cmd
}

func newPlanRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "remove ID|CODE",
		Aliases: []string{"rm"},
		Short:   "Soft-delete a plan",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Plans.Delete(ctxOf(cmd), app.Tenant, args[0]); err != nil {
				return err
			}
			out(cmd, fmt.Sprintf("Removed %s", args[0]))
			return nil
		},
	}
}

func newPlanReproposeCmd(app *App) *cobra.Command {
	var req contract.ReproposeRequest
	var end string

	cmd := &cobra.Command{
		Use:   "repropose ID|CODE",
		Short: "Create a reproposed child plan with a new deadline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if req.NewWhenEnd, err = parseDate("end", end); err != nil {
				return err
			}
			req.Tenant = app.Tenant
			req.ActionPlanID = args[0]
			res, err := app.Plans.Repropose(ctxOf(cmd), req)
			if err != nil {
				return err
			}
			out(cmd, formatter.FormatReproposal(res))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Reason, "reason", "", "Why the plan is reproposed")
	f.StringVar(&end, "end", "", "New deadline (YYYY-MM-DD)")
	f.StringVar(&req.NewWhoUserID, "who-id", "", "New responsible user ID")
	f.StringVar(&req.NewWho, "who", "", "New responsible person")
	_ = cmd.MarkFlagRequired("reason")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}
