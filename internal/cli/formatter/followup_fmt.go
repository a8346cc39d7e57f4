package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/strategos/internal/contract"
	"github.com/alexanderramin/strategos/internal/domain"
)

func FormatFollowUpList(planCode string, followUps []*domain.FollowUp) string {
	headers := []string{"#", "VERIFIED", "GEMBA", "EXECUTION", "%", "SEVERITY"}
	rows := make([][]string, 0, len(followUps))
	for _, f := range followUps {
		rows = append(rows, []string{
			fmt.Sprintf("%d", f.FollowUpNumber),
			ShortDate(f.VerifiedAt),
			truncate(f.GembaLocal, 30),
			ExecutionBadge(f.ExecutionStatus),
			fmt.Sprintf("%d", f.ExecutionPercent),
			OrDash(string(f.ProblemSeverity)),
		})
	}
	table := Table{Headers: headers, Rows: rows, RightAlign: map[int]bool{0: true, 4: true}}
	return RenderBox("Follow-ups of "+planCode, table.Render())
}

// FormatFollowUp renders the 3G record: where it was seen, what was seen
// and the data behind it.
func FormatFollowUp(f *domain.FollowUp) string {
	var b strings.Builder
	b.WriteString(Field("Gemba", f.GembaLocal))
	b.WriteString(Field("Gembutsu", f.GembutsuObservation))
	b.WriteString(Field("Genjitsu", f.GenjitsuData))
	b.WriteString("\n")
	b.WriteString(Field("Execution", fmt.Sprintf("%s %d%%", ExecutionBadge(f.ExecutionStatus), f.ExecutionPercent)))
	if f.ProblemsObserved != "" {
		b.WriteString(Field("Problems", fmt.Sprintf("%s %s", f.ProblemsObserved, Dim("["+string(f.ProblemSeverity)+"]"))))
	}
	if f.RequiresNewPlan {
		b.WriteString(Field("New plan", f.NewPlanDescription))
		b.WriteString(Field("Assigned", f.NewPlanAssignedTo))
	}
	for _, url := range f.EvidenceURLs {
		b.WriteString(Field("Evidence", StyleBlue.Render(url)))
	}
	b.WriteString(Field("Verified", fmt.Sprintf("%s by %s", ShortDate(f.VerifiedAt), f.VerifiedBy)))
	return RenderBox(fmt.Sprintf("Follow-up #%d", f.FollowUpNumber), strings.TrimRight(b.String(), "\n"))
}

// FormatExecuteResult summarizes what a recorded follow-up changed.
func FormatExecuteResult(res *contract.ExecuteFollowUpResult) string {
	lines := []string{
		fmt.Sprintf("Recorded follow-up #%d on %s", res.FollowUp.FollowUpNumber, res.ActionPlan.Code),
	}
	if res.AdvancedToCheck {
		lines = append(lines, StyleGreen.Render("Plan advanced to CHECK"))
	}
	if res.CompletedNow {
		lines = append(lines, StyleGreen.Render("Plan completed"))
	}
	if res.ChildActionPlan != nil {
		lines = append(lines, fmt.Sprintf("Reproposed as %s (due %s)", Bold(res.ChildActionPlan.Code), ShortDate(res.ChildActionPlan.WhenEnd)))
	}
	if res.Escalate {
		lines = append(lines, StyleRed.Render("▲ Escalation required"))
	}
	return strings.Join(lines, "\n")
}
