package cli

import (
	"fmt"

	"github.com/alexanderramin/strategos/internal/cli/formatter"
	"github.com/alexanderramin/strategos/internal/contract"
	"github.com/alexanderramin/strategos/internal/domain"
	"github.com/spf13/cobra"
)

func newIdeaCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "idea",
		Aliases: []string{"ideas"},
		Short:   "Manage the improvement idea box",
	}

	cmd.AddCommand(
		newIdeaSubmitCmd(app),
		newIdeaListCmd(app),
		newIdeaShowCmd(app),
		newIdeaReviewCmd(app),
		newIdeaDecisionCmd(app, "approve"),
		newIdeaDecisionCmd(app, "reject"),
		newIdeaArchiveCmd(app),
		newIdeaRefineCmd(app),
		newIdeaConvertCmd(app),
		newIdeaRemoveCmd(app),
	)

	return cmd
}

func newIdeaSubmitCmd(app *App) *cobra.Command {
	var (
		req                                contract.SubmitIdeaRequest
		source, urgency, importance, cost string
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a new idea",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if req.EstimatedCost, err = parseAmount("cost", cost); err != nil {
				return err
			}
			req.Tenant = app.Tenant
			req.SourceType = domain.IdeaSourceType(upper(source))
			req.Urgency = domain.Level(upper(urgency))
			req.Importance = domain.Level(upper(importance))

			idea, err := app.Ideas.Submit(ctxOf(cmd), req)
			if err != nil {
				return err
			}
			out(cmd, fmt.Sprintf("Submitted idea %s (%s)", idea.Code, formatter.QuadrantBadge(idea.PriorityQuadrant())))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.Title, "title", "", "Short title")
	f.StringVar(&req.Description, "description", "", "What the idea proposes")
	f.StringVar(&source, "source", "SUGGESTION", "SUGGESTION, COMPLAINT, OBSERVATION, BENCHMARK, AUDIT or CLIENT_FEEDBACK")
	f.StringVar(&req.Category, "category", "", "Category")
	f.StringVar(&req.Department, "department", "", "Department the idea concerns")
	f.StringVar(&urgency, "urgency", "", "LOW, MEDIUM or HIGH (default MEDIUM)")
	f.StringVar(&importance, "importance", "", "LOW, MEDIUM or HIGH (default MEDIUM)")
	f.StringVar(&req.EstimatedImpact, "impact", "", "Estimated impact")
	f.StringVar(&cost, "cost", "", "Estimated cost")
	f.StringVar(&req.EstimatedBenefit, "benefit", "", "Estimated benefit")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("description")

	return cmd
}

func newIdeaListCmd(app *App) *cobra.Command {
	var (
		req            contract.ListIdeasRequest
		status, source string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ideas",
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Tenant = app.Tenant
			req.Status = domain.IdeaStatus(upper(status))
			req.SourceType = domain.IdeaSourceType(upper(source))
			page, err := app.Ideas.List(ctxOf(cmd), req)
			if err != nil {
				return err
			}
			if len(page.Items) == 0 {
				out(cmd, "No ideas found.")
				return nil
			}
			out(cmd, formatter.FormatIdeaList(page.Items, page.Total))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&status, "status", "", "Filter by status")
	f.StringVar(&source, "source", "", "Filter by source type")
	f.StringVar(&req.SubmittedBy, "submitted-by", "", "Filter by submitter")
	f.StringVar(&req.Search, "search", "", "Search in title/description/code")
	f.IntVar(&req.Page, "page", 1, "Page number")
	f.IntVar(&req.PageSize, "page-size", 20, "Page size (max 100)")

	return cmd
}

func newIdeaShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID|CODE",
		Short: "Show idea details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idea, err := app.Ideas.Get(ctxOf(cmd), app.Tenant, args[0])
			if err != nil {
				return err
			}
			out(cmd, formatter.FormatIdea(idea))
			return nil
		},
	}
}

func newIdeaReviewCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "review ID|CODE",
		Short: "Start reviewing a submitted idea",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idea, err := app.Ideas.StartReview(ctxOf(cmd), app.Tenant, args[0])
			if err != nil {
				return err
			}
			out(cmd, fmt.Sprintf("%s is %s", idea.Code, idea.Status))
			return nil
		},
	}
}

// newIdeaDecisionCmd builds "approve" and "reject"; only rejections require
// notes.
func newIdeaDecisionCmd(app *App, decision string) *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   decision + " ID|CODE",
		Short: fmt.Sprintf("%s an idea under review", upperFirst(decision)),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := contract.ReviewIdeaRequest{Tenant: app.Tenant, IdeaID: args[0], Notes: notes}
			var (
				idea *domain.IdeaBox
				err  error
			)
			if decision == "approve" {
				idea, err = app.Ideas.Approve(ctxOf(cmd), req)
			} else {
				idea, err = app.Ideas.Reject(ctxOf(cmd), req)
			}
			if err != nil {
				return err
			}
			out(cmd, fmt.Sprintf("%s is %s", idea.Code, idea.Status))
			return nil
		},
	}
	cmd.Flags().StringVar(&notes, "notes", "", "Review notes")

	return cmd
}

func newIdeaArchiveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "archive ID|CODE",
		Short: "Archive an idea",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idea, err := app.Ideas.Archive(ctxOf(cmd), app.Tenant, args[0])
			if err != nil {
				return err
			}
			out(cmd, fmt.Sprintf("Archived %s", idea.Code))
			return nil
		},
	}
}

func newIdeaRefineCmd(app *App) *cobra.Command {
	var impact, cost, benefit string

	cmd := &cobra.Command{
		Use:   "refine ID|CODE",
		Short: "Revise the estimates of an open idea",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r domain.IdeaRefinement
			if cmd.Flags().Changed("impact") {
				r.EstimatedImpact = &impact
			}
			if cmd.Flags().Changed("benefit") {
				r.EstimatedBenefit = &benefit
			}
			if cmd.Flags().Changed("cost") {
				d, err := parseAmount("cost", cost)
				if err != nil {
					return err
				}
				r.EstimatedCost = d
			}
			idea, err := app.Ideas.Refine(ctxOf(cmd), app.Tenant, args[0], r)
			if err != nil {
				return err
			}
			out(cmd, fmt.Sprintf("Refined %s", idea.Code))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&impact, "impact", "", "Estimated impact")
	f.StringVar(&cost, "cost", "", "Estimated cost")
	f.StringVar(&benefit, "benefit", "", "Estimated benefit")

	return cmd
}

func newIdeaConvertCmd(app *App) *cobra.Command {
	var (
		req                  contract.ConvertIdeaRequest
		start, end, priority string
	)

	cmd := &cobra.Command{
		Use:   "convert ID|CODE",
		Short: "Turn an approved idea into an action plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if req.WhenStart, err = parseDate("start", start); err != nil {
				return err
			}
			if req.WhenEnd, err = parseDate("end", end); err != nil {
				return err
			}
			req.Tenant = app.Tenant
			req.IdeaID = args[0]
			req.Priority = domain.Priority(upper(priority))

			res, err := app.Ideas.Convert(ctxOf(cmd), req)
			if err != nil {
				return err
			}
			out(cmd, fmt.Sprintf("Converted %s into action plan %s (%s)",
				res.Idea.Code, res.ActionPlan.Code, formatter.PriorityBadge(res.ActionPlan.Priority)))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.WhereLocation, "where", "", "Where (default: the idea's department)")
	f.StringVar(&start, "start", "", "Start date (default today)")
	f.StringVar(&end, "end", "", "Deadline (YYYY-MM-DD)")
	f.StringVar(&req.Who, "who", "", "Responsible person")
	f.StringVar(&req.WhoUserID, "who-id", "", "Responsible user ID (default: the acting user)")
	f.StringVar(&req.How, "how", "", "How it will be done")
	f.StringVar(&priority, "priority", "", "Override the priority suggested by the Eisenhower quadrant")
	_ = cmd.MarkFlagRequired("end")
	_ = cmd.MarkFlagRequired("how")

	return cmd
}

func newIdeaRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "remove ID|CODE",
		Aliases: []string{"rm"},
		Short:   "Soft-delete an idea",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Ideas.Delete(ctxOf(cmd), app.Tenant, args[0]); err != nil {
				return err
			}
			out(cmd, fmt.Sprintf("Removed %s", args[0]))
			return nil
		},
	}
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return upper(s[:1]) + s[1:]
}
