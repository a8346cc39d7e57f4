package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/strategos/internal/domain"
)

func FormatIdeaList(ideas []*domain.IdeaBox, total int) string {
	headers := []string{"CODE", "TITLE", "SOURCE", "QUADRANT", "STATUS"}
	rows := make([][]string, 0, len(ideas))
	for _, i := range ideas {
		rows = append(rows, []string{
			i.Code,
			Bold(truncate(i.Title, 40)),
			Dim(string(i.SourceType)),
			QuadrantBadge(i.PriorityQuadrant()),
			IdeaStatusPill(i.Status),
		})
	}
	var b strings.Builder
	b.WriteString(RenderTable(headers, rows))
	if total > len(ideas) {
		b.WriteString("\n" + Dim(fmt.Sprintf("showing %d of %d", len(ideas), total)) + "\n")
	}
	return RenderBox("Ideas", b.String())
}

func FormatIdea(i *domain.IdeaBox) string {
	var b strings.Builder
	b.WriteString(Bold(i.Title) + "\n\n")
	b.WriteString(i.Description + "\n\n")
	b.WriteString(Field("Status", IdeaStatusPill(i.Status)))
	b.WriteString(Field("Source", string(i.SourceType)))
	b.WriteString(Field("Department", OrDash(i.Department)))
	b.WriteString(Field("Eisenhower", fmt.Sprintf("%s %s", QuadrantBadge(i.PriorityQuadrant()),
		Dim(fmt.Sprintf("urgency %s, importance %s", i.Urgency, i.Importance)))))
	b.WriteString(Field("Impact", OrDash(i.EstimatedImpact)))
	b.WriteString(Field("Cost", Money(i.EstimatedCost, "")))
	b.WriteString(Field("Benefit", OrDash(i.EstimatedBenefit)))
	b.WriteString(Field("Submitted", i.SubmittedBy))
	if i.ReviewedAt != nil {
		b.WriteString(Field("Reviewed", fmt.Sprintf("%s by %s", ShortDate(*i.ReviewedAt), i.ReviewedBy)))
		if i.ReviewNotes != "" {
			b.WriteString(Field("Notes", i.ReviewNotes))
		}
	}
	if i.ConvertedAt != nil {
		b.WriteString(Field("Converted", fmt.Sprintf("%s %s", i.ConvertedTo, i.ConvertedEntityID)))
	}
	return RenderBox(i.Code, strings.TrimRight(b.String(), "\n"))
}

func QuadrantBadge(q domain.Quadrant) string {
	switch q {
	case domain.QuadrantDoFirst:
		return StyleRed.Render("DO FIRST")
	case domain.QuadrantSchedule:
		return StyleYellow.Render("SCHEDULE")
	case domain.QuadrantDelegate:
		return StyleBlue.Render("DELEGATE")
	default:
		return StyleDim.Render("ELIMINATE")
	}
}
