package domain

import (
	"math"
	"strings"
	"time"
)

// KPI is a tracked indicator. Its Status is always the calculator's verdict
// on the current fields and is never assigned by callers.
type KPI struct {
	ID             string
	OrganizationID string
	BranchID       string
	Code           string
	Name           string
	Description    string
	Unit           string
	Polarity       Polarity
	Frequency      Frequency

	TargetValue       float64
	CurrentValue      float64
	BaselineValue     *float64
	AlertThreshold    float64
	CriticalThreshold float64

	AutoCalculate bool
	SourceModule  string
	SourceQuery   string

	Status            KPIStatus
	LastCalculatedAt  *time.Time
	ResponsibleUserID string

	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

type KPIProps struct {
	OrganizationID    string
	BranchID          string
	Code              string
	Name              string
	Description       string
	Unit              string
	Polarity          Polarity
	Frequency         Frequency
	TargetValue       float64
	CurrentValue      *float64
	BaselineValue     *float64
	AlertThreshold    float64
	CriticalThreshold float64
	AutoCalculate     bool
	SourceModule      string
	SourceQuery       string
	ResponsibleUserID string
	CreatedBy         string
}

func validateThresholds(alert, critical float64) error {
	if !isFinite(alert) || alert < 0 || alert > 100 {
		return NewValidationError("alertThreshold", "alert threshold %v must be between 0 and 100", alert)
	}
	if !isFinite(critical) || critical < 0 || critical > 100 {
		return NewValidationError("criticalThreshold", "critical threshold %v must be between 0 and 100", critical)
	}
	if critical > 0 && critical < alert {
		return NewValidationError("criticalThreshold", "critical threshold %v must not be below alert threshold %v", critical, alert)
	}
	return nil
}

func validateTarget(target float64) error {
	if !isFinite(target) {
		return NewValidationError("targetValue", "target value must be a finite number")
	}
	if target < 0 {
		return NewValidationError("targetValue", "target value %v must not be negative", target)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// NewKPI validates props and computes the initial status. The starting
// value is CurrentValue, falling back to BaselineValue, then zero.
func NewKPI(props KPIProps, ids IDGenerator, now time.Time) (*KPI, error) {
	required := []struct {
		name  string
		value string
	}{
		{"organizationId", props.OrganizationID},
		{"branchId", props.BranchID},
		{"code", props.Code},
		{"name", props.Name},
		{"createdBy", props.CreatedBy},
	}
	for _, f := range required {
		if isBlank(f.value) {
			return nil, NewValidationError(f.name, "%s is required", f.name)
		}
	}

	polarity := props.Polarity
	if polarity == "" {
		polarity = PolarityUp
	}
	if !polarity.Valid() {
		return nil, NewValidationError("polarity", "polarity %q must be UP or DOWN", props.Polarity)
	}
	frequency := props.Frequency
	if frequency == "" {
		frequency = FrequencyMonthly
	}
	if !frequency.Valid() {
		return nil, NewValidationError("frequency", "frequency %q is not recognized", props.Frequency)
	}
	if err := validateTarget(props.TargetValue); err != nil {
		return nil, err
	}
	if err := validateThresholds(props.AlertThreshold, props.CriticalThreshold); err != nil {
		return nil, err
	}
	if props.AutoCalculate && (isBlank(props.SourceModule) || isBlank(props.SourceQuery)) {
		return nil, NewValidationError("sourceModule", "auto-calculated KPIs need a source module and query")
	}

	current := 0.0
	switch {
	case props.CurrentValue != nil:
		current = *props.CurrentValue
	case props.BaselineValue != nil:
		current = *props.BaselineValue
	}
	if !isFinite(current) {
		return nil, NewValidationError("currentValue", "current value must be a finite number")
	}

	k := &KPI{
		ID:                ids.NewID(),
		OrganizationID:    props.OrganizationID,
		BranchID:          props.BranchID,
		Code:              strings.TrimSpace(props.Code),
		Name:              strings.TrimSpace(props.Name),
		Description:       strings.TrimSpace(props.Description),
		Unit:              strings.TrimSpace(props.Unit),
		Polarity:          polarity,
		Frequency:         frequency,
		TargetValue:       props.TargetValue,
		CurrentValue:      current,
		BaselineValue:     props.BaselineValue,
		AlertThreshold:    props.AlertThreshold,
		CriticalThreshold: props.CriticalThreshold,
		AutoCalculate:     props.AutoCalculate,
		SourceModule:      strings.TrimSpace(props.SourceModule),
		SourceQuery:       strings.TrimSpace(props.SourceQuery),
		ResponsibleUserID: props.ResponsibleUserID,
		CreatedBy:         props.CreatedBy,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	k.recompute()
	return k, nil
}

// Evaluate runs the calculator over the current fields.
func (k *KPI) Evaluate() (StatusResult, error) {
	return ComputeKPIStatus(StatusInput{
		Current:       k.CurrentValue,
		Target:        k.TargetValue,
		Polarity:      k.Polarity,
		WarningRatio:  WarningRatio(k.AlertThreshold),
		CriticalRatio: CriticalRatio(k.CriticalThreshold),
	})
}

// recompute refreshes Status. An indeterminate result is reported as RED.
func (k *KPI) recompute() StatusResult {
	res, err := k.Evaluate()
	if err != nil {
		res = StatusResult{Status: KPIRed}
	}
	k.Status = res.Status
	return res
}

// UpdateValue stores a new reading, stamps LastCalculatedAt and recomputes
// the status.
func (k *KPI) UpdateValue(value float64, now time.Time) (StatusResult, error) {
	return k.RecordReading(value, now, now)
}

// RecordReading is UpdateValue for a reading taken at measuredAt, which
// becomes LastCalculatedAt. A zero measuredAt falls back to now.
func (k *KPI) RecordReading(value float64, measuredAt, now time.Time) (StatusResult, error) {
	if !isFinite(value) {
		return StatusResult{}, NewValidationError("currentValue", "current value must be a finite number")
	}
	if measuredAt.IsZero() {
		measuredAt = now
	}
	k.CurrentValue = value
	k.LastCalculatedAt = &measuredAt
	k.UpdatedAt = now
	return k.recompute(), nil
}

func (k *KPI) ChangeTarget(target float64, now time.Time) (StatusResult, error) {
	if err := validateTarget(target); err != nil {
		return StatusResult{}, err
	}
	k.TargetValue = target
	k.UpdatedAt = now
	return k.recompute(), nil
}

func (k *KPI) ChangeThresholds(alert, critical float64, now time.Time) (StatusResult, error) {
	if err := validateThresholds(alert, critical); err != nil {
		return StatusResult{}, err
	}
	k.AlertThreshold = alert
	k.CriticalThreshold = critical
	k.UpdatedAt = now
	return k.recompute(), nil
}
