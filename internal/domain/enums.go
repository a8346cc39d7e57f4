package domain

type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

type ActionPlanStatus string

const (
	PlanDraft      ActionPlanStatus = "DRAFT"
	PlanPending    ActionPlanStatus = "PENDING"
	PlanInProgress ActionPlanStatus = "IN_PROGRESS"
	PlanCompleted  ActionPlanStatus = "COMPLETED"
	PlanCancelled  ActionPlanStatus = "CANCELLED"
	PlanBlocked    ActionPlanStatus = "BLOCKED"
)

// IsTerminal reports whether the plan can no longer progress.
func (s ActionPlanStatus) IsTerminal() bool {
	return s == PlanCompleted || s == PlanCancelled
}

func (s ActionPlanStatus) Valid() bool {
	switch s {
	case PlanDraft, PlanPending, PlanInProgress, PlanCompleted, PlanCancelled, PlanBlocked:
		return true
	}
	return false
}

// Severity grades problems observed during a follow-up.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

type IdeaSourceType string

const (
	SourceSuggestion     IdeaSourceType = "SUGGESTION"
	SourceComplaint      IdeaSourceType = "COMPLAINT"
	SourceObservation    IdeaSourceType = "OBSERVATION"
	SourceBenchmark      IdeaSourceType = "BENCHMARK"
	SourceAudit          IdeaSourceType = "AUDIT"
	SourceClientFeedback IdeaSourceType = "CLIENT_FEEDBACK"
)

func (s IdeaSourceType) Valid() bool {
	switch s {
	case SourceSuggestion, SourceComplaint, SourceObservation, SourceBenchmark, SourceAudit, SourceClientFeedback:
		return true
	}
	return false
}

// Level is the three-step scale used for idea urgency and importance.
type Level string

const (
	LevelLow    Level = "LOW"
	LevelMedium Level = "MEDIUM"
	LevelHigh   Level = "HIGH"
)

func (l Level) Valid() bool {
	return l == LevelLow || l == LevelMedium || l == LevelHigh
}

// Quadrant is a cell of the Eisenhower urgency/importance matrix.
type Quadrant string

const (
	QuadrantDoFirst   Quadrant = "DO_FIRST"
	QuadrantSchedule  Quadrant = "SCHEDULE"
	QuadrantDelegate  Quadrant = "DELEGATE"
	QuadrantEliminate Quadrant = "ELIMINATE"
)

// ConversionTarget is the kind of entity an approved idea was turned into.
type ConversionTarget string

const (
	ConvertToActionPlan ConversionTarget = "ACTION_PLAN"
	ConvertToProject    ConversionTarget = "PROJECT"
	ConvertToGoal       ConversionTarget = "GOAL"
)

func (c ConversionTarget) Valid() bool {
	return c == ConvertToActionPlan || c == ConvertToProject || c == ConvertToGoal
}

// Polarity tells whether higher (UP) or lower (DOWN) KPI values are better.
type Polarity string

const (
	PolarityUp   Polarity = "UP"
	PolarityDown Polarity = "DOWN"
)

func (p Polarity) Valid() bool {
	return p == PolarityUp || p == PolarityDown
}

type Frequency string

const (
	FrequencyDaily     Frequency = "DAILY"
	FrequencyWeekly    Frequency = "WEEKLY"
	FrequencyMonthly   Frequency = "MONTHLY"
	FrequencyQuarterly Frequency = "QUARTERLY"
	FrequencyYearly    Frequency = "YEARLY"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	}
	return false
}

// KPIStatus is the traffic-light classification of a KPI.
type KPIStatus string

const (
	KPIGreen  KPIStatus = "GREEN"
	KPIYellow KPIStatus = "YELLOW"
	KPIRed    KPIStatus = "RED"
)
