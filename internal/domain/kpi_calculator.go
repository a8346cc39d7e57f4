package domain

import (
	"errors"
	"math"
)

// ErrIndeterminateKPI is returned when a KPI status cannot be derived, for
// example when the target is zero.
var ErrIndeterminateKPI = errors.New("kpi status is indeterminate")

// ratioEpsilon absorbs float rounding so readings exactly on a band edge
// land inside the band.
const ratioEpsilon = 1e-9

// StatusInput holds everything the calculator needs.
type StatusInput struct {
	Current      float64
	Target       float64
	Polarity     Polarity
	WarningRatio float64

	// CriticalRatio is optional; zero disables critical deviation detection.
	CriticalRatio float64
}

type StatusResult struct {
	Status      KPIStatus
	Achievement float64
	// Critical reports an achievement below CriticalRatio.
	Critical bool
}

// WarningRatio converts an alert threshold percent into the minimum
// achievement that still counts as YELLOW.
func WarningRatio(alertThreshold float64) float64 {
	return 1 - alertThreshold/100
}

// CriticalRatio converts a critical threshold percent into the achievement
// below which the deviation is critical. Zero means no critical band.
func CriticalRatio(criticalThreshold float64) float64 {
	if criticalThreshold <= 0 {
		return 0
	}
	return 1 - criticalThreshold/100
}

// ComputeKPIStatus classifies a KPI reading:
//
//	achievement >= 1             GREEN
//	achievement >= WarningRatio  YELLOW (boundary inclusive)
//	otherwise                    RED
//
// For DOWN polarity the achievement is mirrored around 1, so a value 10%
// above target scores 0.9. A target at or below zero has no meaningful ratio
// and is indeterminate.
func ComputeKPIStatus(in StatusInput) (StatusResult, error) {
	for _, v := range []float64{in.Current, in.Target, in.WarningRatio, in.CriticalRatio} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return StatusResult{}, ErrIndeterminateKPI
		}
	}
	if in.Target <= 0 {
		return StatusResult{}, ErrIndeterminateKPI
	}

	ratio := in.Current / in.Target
	achievement := ratio
	if in.Polarity == PolarityDown {
		achievement = 2 - ratio
	}

	res := StatusResult{Achievement: achievement}
	switch {
	case achievement >= 1-ratioEpsilon:
		res.Status = KPIGreen
	case achievement >= in.WarningRatio-ratioEpsilon:
		res.Status = KPIYellow
	default:
		res.Status = KPIRed
	}
	res.Critical = in.CriticalRatio > 0 && achievement < in.CriticalRatio-ratioEpsilon
	return res, nil
}
