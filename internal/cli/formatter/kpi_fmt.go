package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/strategos/internal/contract"
	"github.com/alexanderramin/strategos/internal/domain"
)

const kpiBarWidth = 8

func FormatKPIList(kpis []*domain.KPI, total int) string {
	headers := []string{"CODE", "NAME", "CURRENT", "TARGET", "", "STATUS", "SOURCE"}
	rows := make([][]string, 0, len(kpis))
	for _, k := range kpis {
		res, _ := k.Evaluate()
		source := Dim("manual")
		if k.AutoCalculate {
			source = k.SourceModule
		}
		rows = append(rows, []string{
			k.Code,
			Bold(truncate(k.Name, 32)),
			Number(k.CurrentValue, k.Unit),
			Number(k.TargetValue, k.Unit),
			RenderAchievementBar(res.Achievement, kpiBarWidth, KPIColor(k.Status).Render),
			KPIIndicator(k.Status, res.Critical),
			source,
		})
	}
	table := Table{Headers: headers, Rows: rows, RightAlign: map[int]bool{2: true, 3: true}}
	var b strings.Builder
	b.WriteString(table.Render())
	if total > len(kpis) {
		b.WriteString("\n" + Dim(fmt.Sprintf("showing %d of %d", len(kpis), total)) + "\n")
	}
	return RenderBox("KPIs", b.String())
}

func FormatKPI(r *contract.KPIReading) string {
	k := r.KPI
	var b strings.Builder
	b.WriteString(Bold(k.Name) + "\n\n")
	b.WriteString(Field("Status", KPIIndicator(r.Result.Status, r.Result.Critical)))
	b.WriteString(Field("Current", Number(k.CurrentValue, k.Unit)))
	b.WriteString(Field("Target", fmt.Sprintf("%s %s", Number(k.TargetValue, k.Unit), Dim(string(k.Polarity)))))
	b.WriteString(Field("Achievement", fmt.Sprintf("%s %.1f%%",
		RenderAchievementBar(r.Result.Achievement, kpiBarWidth, KPIColor(r.Result.Status).Render),
		r.Result.Achievement*100)))
	b.WriteString(Field("Thresholds", fmt.Sprintf("alert %s%%, critical %s%%", trimFloat(k.AlertThreshold), trimFloat(k.CriticalThreshold))))
	b.WriteString(Field("Frequency", string(k.Frequency)))
	if k.AutoCalculate {
		b.WriteString(Field("Source", fmt.Sprintf("%s %s", k.SourceModule, Dim(k.SourceQuery))))
	}
	if k.LastCalculatedAt != nil {
		b.WriteString(Field("Updated", k.LastCalculatedAt.Format("2006-01-02 15:04")))
	}
	return RenderBox(k.Code, strings.TrimRight(b.String(), "\n"))
}

// FormatSync lists every KPI a sync touched with its outcome.
func FormatSync(resp *contract.SyncKPIsResponse) string {
	headers := []string{"CODE", "OUTCOME", "VALUE", "STATUS", "MESSAGE"}
	rows := make([][]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		value := Dim("--")
		if item.Value != nil {
			value = trimFloat(*item.Value)
		}
		status := Dim("--")
		if item.Status != "" {
			status = KPIIndicator(item.Status, item.Critical)
			if item.PreviousStatus != "" && item.PreviousStatus != item.Status {
				status = fmt.Sprintf("%s → %s", Dim(string(item.PreviousStatus)), status)
			}
		}
		rows = append(rows, []string{item.Code, SyncOutcomeBadge(item.Outcome), value, status, Dim(item.Message)})
	}

	var b strings.Builder
	b.WriteString(Table{Headers: headers, Rows: rows, RightAlign: map[int]bool{2: true}}.Render())
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s, %s, %s\n",
		StyleGreen.Render(fmt.Sprintf("%d updated", resp.Updated)),
		StyleYellow.Render(fmt.Sprintf("%d without data", resp.NoData)),
		StyleRed.Render(fmt.Sprintf("%d failed", resp.Errors)),
	))
	return RenderBox("KPI Sync", b.String())
}

func SyncOutcomeBadge(o contract.SyncOutcome) string {
	switch o {
	case contract.SyncUpdated:
		return StyleGreen.Render("UPDATED")
	case contract.SyncNoData:
		return StyleYellow.Render("NO DATA")
	case contract.SyncError:
		return StyleRed.Render("ERROR")
	default:
		return Dim(string(o))
	}
}

// Number prints a value without trailing zeros, followed by its unit.
func Number(v float64, unit string) string {
	s := trimFloat(v)
	if unit == "" {
		return s
	}
	if unit == "%" {
		return s + "%"
	}
	return s + " " + unit
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
