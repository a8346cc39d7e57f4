package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/strategos/internal/contract"
	"github.com/alexanderramin/strategos/internal/domain"
)

const planProgressBarWidth = 10

// FormatPlanList renders one row per plan inside a bordered box.
func FormatPlanList(plans []*domain.ActionPlan, total int, now time.Time) string {
	headers := []string{"CODE", "WHAT", "PDCA", "STATUS", "PROGRESS", "PRIORITY", "DUE"}
	rows := make([][]string, 0, len(plans))
	for _, p := range plans {
		rows = append(rows, []string{
			p.Code,
			Bold(truncate(p.What, 40)),
			PhaseBadge(p.PDCACycle),
			PlanStatusPill(p.Status),
			RenderProgress(p.CompletionPercent, planProgressBarWidth),
			PriorityBadge(p.Priority),
			DeadlineStyled(p.WhenEnd, now, p.Status.IsTerminal()),
		})
	}

	var b strings.Builder
	b.WriteString(RenderTable(headers, rows))
	if total > len(plans) {
		b.WriteString("\n" + Dim(fmt.Sprintf("showing %d of %d", len(plans), total)) + "\n")
	}
	return RenderBox("Action Plans", b.String())
}

// FormatPlan renders the 5W2H card of a single plan.
func FormatPlan(p *domain.ActionPlan, now time.Time) string {
	var b strings.Builder
	b.WriteString(Bold(p.What) + "\n\n")

	b.WriteString(Field("Why", p.Why))
	b.WriteString(Field("Where", p.WhereLocation))
	b.WriteString(Field("When", fmt.Sprintf("%s → %s (%s)",
		ShortDate(p.WhenStart), ShortDate(p.WhenEnd),
		DeadlineStyled(p.WhenEnd, now, p.Status.IsTerminal()))))
	b.WriteString(Field("Who", who(p.Who, p.WhoUserID)))
	b.WriteString(Field("How", p.How))
	b.WriteString(Field("How much", Money(p.HowMuchAmount, p.HowMuchCurrency)))
	b.WriteString("\n")

	b.WriteString(Field("PDCA", PhaseBadge(p.PDCACycle)))
	b.WriteString(Field("Status", PlanStatusPill(p.Status)))
	b.WriteString(Field("Progress", RenderProgress(p.CompletionPercent, planProgressBarWidth)))
	b.WriteString(Field("Priority", PriorityBadge(p.Priority)))
	if p.RepropositionNumber > 0 {
		b.WriteString(Field("Lineage", fmt.Sprintf("reproposition %d of %d", p.RepropositionNumber, domain.MaxRepropositions)))
		b.WriteString(Field("Reason", p.RepropositionReason))
	}
	if p.NextFollowUpDate != nil {
		b.WriteString(Field("Follow-up", ShortDate(*p.NextFollowUpDate)))
	}
	if p.CancellationReason != "" {
		b.WriteString(Field("Cancelled", p.CancellationReason))
	}
	for _, url := range p.EvidenceURLs {
		b.WriteString(Field("Evidence", StyleBlue.Render(url)))
	}
	return RenderBox(p.Code, strings.TrimRight(b.String(), "\n"))
}

// FormatLineage lists a reproposition chain from root to the latest child.
func FormatLineage(chain []*domain.ActionPlan) string {
	var b strings.Builder
	for i, p := range chain {
		indent := strings.Repeat("  ", i)
		connector := ""
		if i > 0 {
			connector = StyleDim.Render("└─ ")
		}
		b.WriteString(fmt.Sprintf("%s%s%s  %s  %s\n", indent, connector, Bold(p.Code), PlanStatusPill(p.Status), Dim(truncate(p.What, 40))))
		if p.RepropositionReason != "" {
			b.WriteString(fmt.Sprintf("%s   %s\n", indent, Dim("reason: "+p.RepropositionReason)))
		}
	}
	return RenderBox("Lineage", strings.TrimRight(b.String(), "\n"))
}

func FormatAdvance(res *contract.AdvancePDCAResult) string {
	msg := fmt.Sprintf("%s moved to %s", res.Plan.Code, PhaseBadge(res.Plan.PDCACycle))
	if res.Event != nil {
		msg += "\n" + StyleGreen.Render("PDCA cycle completed")
	}
	return msg
}

func FormatReproposal(res *contract.ReproposeResult) string {
	remaining := res.Child.RemainingRepropositions()
	return fmt.Sprintf("Reproposed %s as %s (due %s, %d reproposition(s) left)",
		res.Parent.Code, Bold(res.Child.Code), ShortDate(res.Child.WhenEnd), remaining)
}

func who(name, userID string) string {
	if userID == "" || userID == name {
		return OrDash(name)
	}
	return fmt.Sprintf("%s %s", name, Dim("("+userID+")"))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
