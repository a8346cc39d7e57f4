package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/strategos/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// KPIColor returns the traffic-light style for a KPI status.
func KPIColor(status domain.KPIStatus) lipgloss.Style {
	switch status {
	case domain.KPIRed:
		return StyleRed
	case domain.KPIYellow:
		return StyleYellow
	case domain.KPIGreen:
		return StyleGreen
	default:
		return StyleDim
	}
}

// KPIIndicator returns a colored indicator such as "● YELLOW". Critical
// deviations are marked with a triangle.
func KPIIndicator(status domain.KPIStatus, critical bool) string {
	mark := "●"
	if critical {
		mark = "▲"
	}
	if status == "" {
		return StyleDim.Render("● UNKNOWN")
	}
	return KPIColor(status).Render(fmt.Sprintf("%s %s", mark, status))
}

// PlanStatusPill returns a colored status indicator for an action plan.
func PlanStatusPill(status domain.ActionPlanStatus) string {
	switch status {
	case domain.PlanDraft:
		return StyleDim.Render("○ Draft")
	case domain.PlanPending:
		return StyleBlue.Render("○ Pending")
	case domain.PlanInProgress:
		return StyleGreen.Render("● In Progress")
	case domain.PlanBlocked:
		return StyleRed.Render("■ Blocked")
	case domain.PlanCompleted:
		return StyleDim.Render("✔ Completed")
	case domain.PlanCancelled:
		return StyleDim.Render("✖ Cancelled")
	default:
		return StyleDim.Render(string(status))
	}
}

// PhaseBadge shows the PDCA cycle with the current phase highlighted,
// e.g. "P [D] C A".
func PhaseBadge(current domain.PDCAPhase) string {
	phases := []domain.PDCAPhase{domain.PhasePlan, domain.PhaseDo, domain.PhaseCheck, domain.PhaseAct}
	parts := make([]string, len(phases))
	for i, ph := range phases {
		letter := string(ph)[:1]
		if ph == current {
			parts[i] = StyleHeader.Render("[" + letter + "]")
			continue
		}
		parts[i] = StyleDim.Render(letter)
	}
	return strings.Join(parts, " ")
}

func PriorityBadge(p domain.Priority) string {
	switch p {
	case domain.PriorityCritical:
		return StyleRed.Render("▲ CRITICAL")
	case domain.PriorityHigh:
		return StyleYellow.Render("HIGH")
	case domain.PriorityMedium:
		return StyleFg.Render("MEDIUM")
	case domain.PriorityLow:
		return StyleDim.Render("LOW")
	default:
		return StyleDim.Render("--")
	}
}

func IdeaStatusPill(status domain.IdeaStatus) string {
	switch status {
	case domain.IdeaSubmitted:
		return StyleBlue.Render("○ Submitted")
	case domain.IdeaUnderReview:
		return StyleYellow.Render("◐ Under Review")
	case domain.IdeaApproved:
		return StyleGreen.Render("● Approved")
	case domain.IdeaRejected:
		return StyleRed.Render("✖ Rejected")
	case domain.IdeaConverted:
		return StylePurple.Render("➜ Converted")
	case domain.IdeaArchived:
		return StyleDim.Render("✖ Archived")
	default:
		return StyleDim.Render(string(status))
	}
}

func ExecutionBadge(s domain.ExecutionStatus) string {
	switch s {
	case domain.ExecutedOK:
		return StyleGreen.Render("✔ OK")
	case domain.ExecutedPartial:
		return StyleYellow.Render("◐ PARTIAL")
	case domain.NotExecuted:
		return StyleRed.Render("○ NOT EXECUTED")
	case domain.ExecutionBlocked:
		return StyleRed.Render("■ BLOCKED")
	default:
		return StyleDim.Render(string(s))
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
