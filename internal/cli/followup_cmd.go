package cli

import (
	"errors"

	"github.com/alexanderramin/strategos/internal/cli/formatter"
	"github.com/spf13/cobra"
)

var errNotInteractive = errors.New("interactive mode needs a terminal; pass the fields as flags instead")

func newFollowUpCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "followup",
		Aliases: []string{"fu"},
		Short:   "Record and review 3G follow-ups",
	}

	cmd.AddCommand(
		newFollowUpRecordCmd(app),
		newFollowUpListCmd(app),
		newFollowUpShowCmd(app),
	)

	return cmd
}

func newFollowUpRecordCmd(app *App) *cobra.Command {
	var (
		in          followUpInput
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "record PLAN",
		Short: "Record a gemba/gembutsu/genjitsu verification of a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if interactive {
				if !app.interactive() {
					return errNotInteractive
				}
				if err := app.runForm(followUpForm(&in)); err != nil {
					return err
				}
			}

			req, err := in.toRequest(app.Tenant, args[0])
			if err != nil {
				return err
			}
			res, err := app.FollowUps.Execute(ctxOf(cmd), req)
			if err != nil {
				return err
			}
			out(cmd, formatter.FormatExecuteResult(res))
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&interactive, "interactive", "i", false, "Fill the follow-up in a form")
	f.StringVar(&in.gemba, "gemba", "", "Where the verification took place")
	f.StringVar(&in.gembutsu, "gembutsu", "", "What was observed")
	f.StringVar(&in.genjitsu, "genjitsu", "", "Facts and data backing the observation")
	f.StringVar(&in.status, "status", "", "EXECUTED_OK, EXECUTED_PARTIAL, NOT_EXECUTED or BLOCKED")
	f.StringVar(&in.percent, "percent", "0", "Execution percentage")
	f.StringVar(&in.problems, "problems", "", "Problems observed")
	f.StringVar(&in.severity, "severity", "", "LOW, MEDIUM, HIGH or CRITICAL")
	f.StringSliceVar(&in.evidence, "evidence", nil, "Evidence URL (repeatable)")
	f.BoolVar(&in.newPlan, "new-plan", false, "Repropose the plan as part of this follow-up")
	f.StringVar(&in.newPlanDescription, "new-plan-description", "", "What the reproposed plan must do")
	f.StringVar(&in.newPlanAssignee, "new-plan-assignee", "", "User ID responsible for the reproposed plan")
	f.StringVar(&in.newPlanAssigneeName, "new-plan-assignee-name", "", "Name of that user")
	f.StringVar(&in.newPlanEnd, "new-plan-end", "", "Deadline of the reproposed plan (YYYY-MM-DD)")
	f.StringVar(&in.nextFollowUp, "next", "", "Schedule the next follow-up (YYYY-MM-DD)")

	return cmd
}

func newFollowUpListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list PLAN",
		Short: "List the follow-ups of a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := ctxOf(cmd)
			plan, err := app.Plans.Get(ctx, app.Tenant, args[0])
			if err != nil {
				return err
			}
			followUps, err := app.FollowUps.ListByActionPlan(ctx, app.Tenant, plan.ID)
			if err != nil {
				return err
			}
			if len(followUps) == 0 {
				out(cmd, "No follow-ups recorded for "+plan.Code+".")
				return nil
			}
			out(cmd, formatter.FormatFollowUpList(plan.Code, followUps))
			return nil
		},
	}
}

func newFollowUpShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one follow-up",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := app.FollowUps.Get(ctxOf(cmd), app.Tenant, args[0])
			if err != nil {
				return err
			}
			out(cmd, formatter.FormatFollowUp(f))
			return nil
		},
	}
}
