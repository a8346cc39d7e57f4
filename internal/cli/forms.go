package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/strategos/internal/cli/formatter"
	"github.com/alexanderramin/strategos/internal/contract"
	"github.com/alexanderramin/strategos/internal/domain"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

func strategosHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// followUpInput is the text form of a follow-up, shared by the flags and
// the interactive form.
type followUpInput struct {
	gemba, gembutsu, genjitsu string
	status                    string
	percent                   string
	problems, severity        string
	evidence                  []string
	newPlan                   bool
	newPlanDescription        string
	newPlanAssignee           string
	newPlanAssigneeName       string
	newPlanEnd                string
	nextFollowUp              string
}

func (in followUpInput) toRequest(tenant contract.TenantContext, planID string) (contract.ExecuteFollowUpRequest, error) {
	req := contract.ExecuteFollowUpRequest{
		Tenant:              tenant,
		ActionPlanID:        planID,
		GembaLocal:          in.gemba,
		GembutsuObservation: in.gembutsu,
		GenjitsuData:        in.genjitsu,
		ExecutionStatus:     domain.ExecutionStatus(upper(in.status)),
		ProblemsObserved:    in.problems,
		ProblemSeverity:     domain.Severity(upper(in.severity)),
		EvidenceURLs:        in.evidence,
		RequiresNewPlan:     in.newPlan,
		NewPlanDescription:  in.newPlanDescription,
		NewPlanAssignedTo:   in.newPlanAssignee,
		NewPlanAssigneeName: in.newPlanAssigneeName,
	}
	pct, err := strconv.Atoi(strings.TrimSpace(in.percent))
	if err != nil {
		return req, fmt.Errorf("invalid execution percent %q", in.percent)
	}
	req.ExecutionPercent = pct
	if req.NewPlanWhenEnd, err = parseOptionalDate("new-plan-end", in.newPlanEnd); err != nil {
		return req, err
	}
	if req.NextFollowUpDate, err = parseOptionalDate("next", in.nextFollowUp); err != nil {
		return req, err
	}
	return req, nil
}

// followUpForm walks the user through the 3G record. The reproposition
// group is skipped unless a new plan was requested.
func followUpForm(in *followUpInput) *huh.Form {
	statusOptions := []huh.Option[string]{
		huh.NewOption("Executed as planned", string(domain.ExecutedOK)),
		huh.NewOption("Partially executed", string(domain.ExecutedPartial)),
		huh.NewOption("Not executed", string(domain.NotExecuted)),
		huh.NewOption("Blocked", string(domain.ExecutionBlocked)),
	}
	severityOptions := []huh.Option[string]{
		huh.NewOption("None", ""),
		huh.NewOption("Low", string(domain.SeverityLow)),
		huh.NewOption("Medium", string(domain.SeverityMedium)),
		huh.NewOption("High", string(domain.SeverityHigh)),
		huh.NewOption("Critical", string(domain.SeverityCritical)),
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Gemba").Description("Where was it verified?").Value(&in.gemba).Validate(validateRequired),
			huh.NewText().Title("Gembutsu").Description("What was observed?").Value(&in.gembutsu).Validate(validateRequired),
			huh.NewText().Title("Genjitsu").Description("What do the facts and data say?").Value(&in.genjitsu).Validate(validateRequired),
		),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Execution").Options(statusOptions...).Value(&in.status),
			huh.NewInput().Title("Execution %").Placeholder("0-100").Value(&in.percent).Validate(validatePercent),
			huh.NewText().Title("Problems observed (optional)").Value(&in.problems),
			huh.NewSelect[string]().Title("Severity").Options(severityOptions...).Value(&in.severity),
			huh.NewInput().Title("Next follow-up (YYYY-MM-DD, blank for none)").Value(&in.nextFollowUp).Validate(validateOptionalDate),
		),
		huh.NewGroup(
			huh.NewConfirm().Title("Does this require a new plan?").Affirmative("Yes").Negative("No").Value(&in.newPlan),
		),
		huh.NewGroup(
			huh.NewText().Title("New plan").Description("What must the reproposed plan do?").Value(&in.newPlanDescription).Validate(validateRequired),
			huh.NewInput().Title("Assigned to (user ID)").Value(&in.newPlanAssignee).Validate(validateRequired),
			huh.NewInput().Title("Assignee name (optional)").Value(&in.newPlanAssigneeName),
			huh.NewInput().Title("New deadline (YYYY-MM-DD, blank keeps the duration)").Value(&in.newPlanEnd).Validate(validateOptionalDate),
		).WithHideFunc(func() bool { return !in.newPlan }),
	).WithTheme(strategosHuhTheme()).WithShowHelp(false)
}

func validateRequired(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}
	return nil
}

func validatePercent(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 0 || v > 100 {
		return errors.New("enter a whole number between 0 and 100")
	}
	return nil
}

func validateOptionalDate(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := time.Parse(dateLayout, strings.TrimSpace(s)); err != nil {
		return errors.New("use YYYY-MM-DD format")
	}
	return nil
}
