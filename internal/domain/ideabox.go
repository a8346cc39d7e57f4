package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// IdeaBox is an improvement idea moving through review towards conversion
// into an action plan, project or goal.
type IdeaBox struct {
	ID             string
	OrganizationID string
	BranchID       string
	Code           string

	Title       string
	Description string
	SourceType  IdeaSourceType
	Category    string
	SubmittedBy string
	Department  string
	Urgency     Level
	Importance  Level
	Status      IdeaStatus

	ReviewedBy  string
	ReviewedAt  *time.Time
	ReviewNotes string

	ConvertedTo       ConversionTarget
	ConvertedEntityID string
	ConvertedAt       *time.Time

	EstimatedImpact  string
	EstimatedCost    decimal.NullDecimal
	EstimatedBenefit string

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

type IdeaProps struct {
	OrganizationID   string
	BranchID         string
	Code             string
	Title            string
	Description      string
	SourceType       IdeaSourceType
	Category         string
	SubmittedBy      string
	Department       string
	Urgency          Level
	Importance       Level
	EstimatedImpact  string
	EstimatedCost    decimal.NullDecimal
	EstimatedBenefit string
}

// NewIdea creates a SUBMITTED idea. Urgency and importance default to MEDIUM.
func NewIdea(props IdeaProps, ids IDGenerator, now time.Time) (*IdeaBox, error) {
	required := []struct {
		name  string
		value string
	}{
		{"organizationId", props.OrganizationID},
		{"branchId", props.BranchID},
		{"code", props.Code},
		{"title", props.Title},
		{"description", props.Description},
		{"submittedBy", props.SubmittedBy},
	}
	for _, f := range required {
		if isBlank(f.value) {
			return nil, NewValidationError(f.name, "%s is required", f.name)
		}
	}
	if !props.SourceType.Valid() {
		return nil, NewValidationError("sourceType", "source type %q is not recognized", props.SourceType)
	}

	urgency, importance := props.Urgency, props.Importance
	if urgency == "" {
		urgency = LevelMedium
	}
	if importance == "" {
		importance = LevelMedium
	}
	if !urgency.Valid() {
		return nil, NewValidationError("urgency", "urgency %q must be LOW, MEDIUM or HIGH", urgency)
	}
	if !importance.Valid() {
		return nil, NewValidationError("importance", "importance %q must be LOW, MEDIUM or HIGH", importance)
	}
	if props.EstimatedCost.Valid && props.EstimatedCost.Decimal.IsNegative() {
		return nil, NewValidationError("estimatedCost", "estimated cost must not be negative")
	}

	return &IdeaBox{
		ID:               ids.NewID(),
		OrganizationID:   props.OrganizationID,
		BranchID:         props.BranchID,
		Code:             props.Code,
		Title:            strings.TrimSpace(props.Title),
		Description:      strings.TrimSpace(props.Description),
		SourceType:       props.SourceType,
		Category:         strings.TrimSpace(props.Category),
		SubmittedBy:      props.SubmittedBy,
		Department:       strings.TrimSpace(props.Department),
		Urgency:          urgency,
		Importance:       importance,
		Status:           IdeaSubmitted,
		EstimatedImpact:  strings.TrimSpace(props.EstimatedImpact),
		EstimatedCost:    props.EstimatedCost,
		EstimatedBenefit: strings.TrimSpace(props.EstimatedBenefit),
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

func (i *IdeaBox) transitionTo(target IdeaStatus, now time.Time) error {
	if !i.Status.CanTransitionTo(target) {
		return NewInvariantError("idea %s cannot move from %s to %s", i.Code, i.Status, target)
	}
	i.Status = target
	i.UpdatedAt = now
	return nil
}

func (i *IdeaBox) StartReview(now time.Time) error {
	return i.transitionTo(IdeaUnderReview, now)
}

// Approve accepts the idea and returns an IDEA_APPROVED event.
func (i *IdeaBox) Approve(reviewedBy, notes string, now time.Time) (Event, error) {
	if isBlank(reviewedBy) {
		return Event{}, NewValidationError("reviewedBy", "reviewer is required")
	}
	if err := i.transitionTo(IdeaApproved, now); err != nil {
		return Event{}, err
	}
	i.recordReview(reviewedBy, notes, now)
	return Event{
		Type:           EventIdeaApproved,
		AggregateID:    i.ID,
		OrganizationID: i.OrganizationID,
		BranchID:       i.BranchID,
		OccurredAt:     now,
		Payload: map[string]any{
			"code":       i.Code,
			"reviewedBy": reviewedBy,
		},
	}, nil
}

// Reject refuses the idea. Notes are mandatory.
func (i *IdeaBox) Reject(reviewedBy, notes string, now time.Time) error {
	if isBlank(reviewedBy) {
		return NewValidationError("reviewedBy", "reviewer is required")
	}
	if isBlank(notes) {
		return NewValidationError("reviewNotes", "a rejection must include review notes")
	}
	if err := i.transitionTo(IdeaRejected, now); err != nil {
		return err
	}
	i.recordReview(reviewedBy, notes, now)
	return nil
}

func (i *IdeaBox) Archive(now time.Time) error {
	return i.transitionTo(IdeaArchived, now)
}

func (i *IdeaBox) recordReview(reviewedBy, notes string, now time.Time) {
	i.ReviewedBy = reviewedBy
	i.ReviewedAt = &now
	i.ReviewNotes = strings.TrimSpace(notes)
}

// IdeaRefinement updates estimates. Nil fields are left unchanged.
type IdeaRefinement struct {
	EstimatedImpact  *string
	EstimatedCost    *decimal.Decimal
	EstimatedBenefit *string
}

// Refine revises the estimates of an idea that is still open.
func (i *IdeaBox) Refine(r IdeaRefinement, now time.Time) error {
	if i.Status.IsTerminal() {
		return NewInvariantError("idea %s is %s and can no longer be refined", i.Code, i.Status)
	}
	if r.EstimatedCost != nil && r.EstimatedCost.IsNegative() {
		return NewValidationError("estimatedCost", "estimated cost must not be negative")
	}
	if r.EstimatedImpact != nil {
		i.EstimatedImpact = strings.TrimSpace(*r.EstimatedImpact)
	}
	if r.EstimatedCost != nil {
		i.EstimatedCost = decimal.NewNullDecimal(*r.EstimatedCost)
	}
	if r.EstimatedBenefit != nil {
		i.EstimatedBenefit = strings.TrimSpace(*r.EstimatedBenefit)
	}
	i.UpdatedAt = now
	return nil
}

// Convert records that the approved idea became entityID and returns an
// IDEA_CONVERTED event.
func (i *IdeaBox) Convert(target ConversionTarget, entityID string, now time.Time) (Event, error) {
	if !target.Valid() {
		return Event{}, NewValidationError("convertedTo", "conversion target %q is not recognized", target)
	}
	if isBlank(entityID) {
		return Event{}, NewValidationError("convertedEntityId", "converted entity id is required")
	}
	if err := i.transitionTo(IdeaConverted, now); err != nil {
		return Event{}, err
	}
	i.ConvertedTo = target
	i.ConvertedEntityID = entityID
	i.ConvertedAt = &now
	return Event{
		Type:           EventIdeaConverted,
		AggregateID:    i.ID,
		OrganizationID: i.OrganizationID,
		BranchID:       i.BranchID,
		OccurredAt:     now,
		Payload: map[string]any{
			"code":              i.Code,
			"convertedTo":       string(target),
			"convertedEntityId": entityID,
		},
	}, nil
}

// PriorityQuadrant places the idea on the Eisenhower matrix.
func (i *IdeaBox) PriorityQuadrant() Quadrant {
	switch {
	case i.Urgency == LevelHigh && i.Importance == LevelHigh:
		return QuadrantDoFirst
	case i.Urgency == LevelLow && i.Importance == LevelHigh:
		return QuadrantSchedule
	case i.Urgency == LevelHigh && i.Importance == LevelLow:
		return QuadrantDelegate
	default:
		return QuadrantEliminate
	}
}

// SuggestedPriority maps the quadrant onto an action plan priority.
func (q Quadrant) SuggestedPriority() Priority {
	switch q {
	case QuadrantDoFirst:
		return PriorityHigh
	case QuadrantSchedule, QuadrantDelegate:
		return PriorityMedium
	default:
		return PriorityLow
	}
}
