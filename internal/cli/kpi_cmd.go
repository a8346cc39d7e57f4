package cli

import (
	"fmt"
	"strconv"

	"github.com/alexanderramin/strategos/internal/cli/formatter"
	"github.com/alexanderramin/strategos/internal/contract"
	"github.com/alexanderramin/strategos/internal/domain"
	"github.com/spf13/cobra"
)

func newKPICmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "kpi",
		Aliases: []string{"kpis"},
		Short:   "Track KPIs and their GREEN/YELLOW/RED status",
	}

	cmd.AddCommand(
		newKPICreateCmd(app),
		newKPIListCmd(app),
		newKPIShowCmd(app),
		newKPIValueCmd(app, "update", "Record a new value", func(cmd *cobra.Command, id string, v float64) (*contract.KPIReading, error) {
			return app.KPIs.UpdateValue(ctxOf(cmd), app.Tenant, id, v)
		}),
		newKPIValueCmd(app, "target", "Change the target value", func(cmd *cobra.Command, id string, v float64) (*contract.KPIReading, error) {
			return app.KPIs.ChangeTarget(ctxOf(cmd), app.Tenant, id, v)
		}),
		newKPIThresholdsCmd(app),
		newKPIRemoveCmd(app),
		newKPISyncCmd(app),
	)

	return cmd
}

func newKPICreateCmd(app *App) *cobra.Command {
	var (
		req                                 contract.CreateKPIRequest
		polarity, frequency, current, base string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Define a KPI",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if req.CurrentValue, err = parseOptionalFloat("current", current); err != nil {
				return err
			}
			if req.BaselineValue, err = parseOptionalFloat("baseline", base); err != nil {
				return err
			}
			req.Tenant = app.Tenant
			req.Polarity = domain.Polarity(upper(polarity))
			req.Frequency = domain.Frequency(upper(frequency))
			req.AutoCalculate = req.SourceModule != ""

			reading, err := app.KPIs.Create(ctxOf(cmd), req)
			if err != nil {
				return err
			}
			out(cmd, fmt.Sprintf("Created KPI %s %s", reading.KPI.Code, formatter.KPIIndicator(reading.Result.Status, reading.Result.Critical)))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.Code, "code", "", "Unique KPI code")
	f.StringVar(&req.Name, "name", "", "Display name")
	f.StringVar(&req.Description, "description", "", "Description")
	f.StringVar(&req.Unit, "unit", "", "Unit, e.g. %")
	f.StringVar(&polarity, "polarity", "UP", "UP when higher is better, DOWN otherwise")
	f.StringVar(&frequency, "frequency", "", "DAILY, WEEKLY, MONTHLY, QUARTERLY or YEARLY")
	f.Float64Var(&req.TargetValue, "target", 0, "Target value")
	f.StringVar(&current, "current", "", "Current value")
	f.StringVar(&base, "baseline", "", "Baseline value")
	f.Float64Var(&req.AlertThreshold, "alert", 10, "Alert threshold in percent below target")
	f.Float64Var(&req.CriticalThreshold, "critical", 0, "Critical threshold in percent below target (0 disables)")
	f.StringVar(&req.SourceModule, "source", "", "Data source module for automatic sync (sql, snapshot)")
	f.StringVar(&req.SourceQuery, "query", "", "Query passed to the data source")
	f.StringVar(&req.ResponsibleUserID, "responsible", "", "Responsible user ID")
	_ = cmd.MarkFlagRequired("code")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

func newKPIListCmd(app *App) *cobra.Command {
	var (
		req    contract.ListKPIsRequest
		status string
		auto   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List KPIs",
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Tenant = app.Tenant
			req.Status = domain.KPIStatus(upper(status))
			if cmd.Flags().Changed("auto") {
				req.AutoCalculate = &auto
			}
			page, err := app.KPIs.List(ctxOf(cmd), req)
			if err != nil {
				return err
			}
			if len(page.Items) == 0 {
				out(cmd, "No KPIs found.")
				return nil
			}
			out(cmd, formatter.FormatKPIList(page.Items, page.Total))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&status, "status", "", "Filter by GREEN, YELLOW or RED")
	f.BoolVar(&auto, "auto", false, "Filter by automatic calculation")
	f.StringVar(&req.Search, "search", "", "Search in code/name")
	f.IntVar(&req.Page, "page", 1, "Page number")
	f.IntVar(&req.PageSize, "page-size", 20, "Page size (max 100)")

	return cmd
}

func newKPIShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID|CODE",
		Short: "Show a KPI with its current evaluation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reading, err := app.KPIs.Get(ctxOf(cmd), app.Tenant, args[0])
			if err != nil {
				return err
			}
			out(cmd, formatter.FormatKPI(reading))
			return nil
		},
	}
}

func newKPIValueCmd(app *App, use, short string, fn func(cmd *cobra.Command, id string, v float64) (*contract.KPIReading, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID|CODE VALUE",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid value %q", args[1])
			}
			reading, err := fn(cmd, args[0], v)
			if err != nil {
				return err
			}
			out(cmd, fmt.Sprintf("%s %s", reading.KPI.Code, formatter.KPIIndicator(reading.Result.Status, reading.Result.Critical)))
			return nil
		},
	}
}

func newKPIThresholdsCmd(app *App) *cobra.Command {
	var alert, critical float64

	cmd := &cobra.Command{
		Use:   "thresholds ID|CODE",
		Short: "Change the alert and critical thresholds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reading, err := app.KPIs.ChangeThresholds(ctxOf(cmd), app.Tenant, args[0], alert, critical)
			if err != nil {
				return err
			}
			out(cmd, fmt.Sprintf("%s %s", reading.KPI.Code, formatter.KPIIndicator(reading.Result.Status, reading.Result.Critical)))
			return nil
		},
	}
	cmd.Flags().Float64Var(&alert, "alert", 0, "Alert threshold in percent")
	cmd.Flags().Float64Var(&critical, "critical", 0, "Critical threshold in percent (0 disables)")
	_ = cmd.MarkFlagRequired("alert")

	return cmd
}

func newKPIRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "remove ID|CODE",
		Aliases: []string{"rm"},
		Short:   "Soft-delete a KPI",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.KPIs.Delete(ctxOf(cmd), app.Tenant, args[0]); err != nil {
				return err
			}
			out(cmd, fmt.Sprintf("Removed %s", args[0]))
			return nil
		},
	}
}

func newKPISyncCmd(app *App) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "sync [CODE...]",
		Short: "Refresh auto-calculated KPIs from their data sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := contract.NewSyncKPIsRequest(app.Tenant)
			req.Codes = args
			now, err := parseOptionalDate("at", at)
			if err != nil {
				return err
			}
			req.Now = now
			resp, err := app.KPIs.Sync(ctxOf(cmd), req)
			if err != nil {
				return err
			}
			if resp.Total == 0 {
				out(cmd, "No auto-calculated KPIs to sync.")
				return nil
			}
			out(cmd, formatter.FormatSync(resp))
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "Record the sync as of this date instead of now")

	return cmd
}
