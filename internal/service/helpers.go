package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/strategos/internal/app"
	"github.com/alexanderramin/strategos/internal/domain"
	"github.com/alexanderramin/strategos/internal/repository"
	"go.uber.org/zap"
)

// EventSink receives domain events after the transaction that produced them
// has committed.
type EventSink interface {
	Publish(ctx context.Context, event domain.Event) error
}

type noopSink struct{}

func (noopSink) Publish(context.Context, domain.Event) error { return nil }

// Env holds the capabilities every service shares. Zero fields fall back to
// the system clock, random UUIDs, a discarding sink and a no-op logger.
type Env struct {
	Clock  domain.Clock
	IDs    domain.IDGenerator
	Events EventSink
	Logger *zap.Logger
}

func (e Env) withDefaults() Env {
	if e.Clock == nil {
		e.Clock = domain.SystemClock{}
	}
	if e.IDs == nil {
		e.IDs = domain.UUIDGenerator{}
	}
	if e.Events == nil {
		e.Events = noopSink{}
	}
	if e.Logger == nil {
		e.Logger = zap.NewNop()
	}
	return e
}

// dispatch hands events to the sink. A sink failure never fails the use case
// whose writes already committed; it is logged instead.
func (e Env) dispatch(ctx context.Context, events ...domain.Event) {
	for _, ev := range events {
		if err := e.Events.Publish(ctx, ev); err != nil {
			e.Logger.Warn("event dispatch failed",
				zap.String("type", string(ev.Type)),
				zap.String("aggregate_id", ev.AggregateID),
				zap.String("organization_id", ev.OrganizationID),
				zap.String("branch_id", ev.BranchID),
				zap.Error(err),
			)
		}
	}
}

// checkRequest validates the tenant first, then the request's own tags.
func checkRequest(tenant app.TenantContext, req any) error {
	if err := tenant.Validate(); err != nil {
		return err
	}
	if req == nil {
		return nil
	}
	return app.ValidateRequest(req)
}

func requireID(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return domain.NewValidationError(field, "%s is required", field)
	}
	return nil
}

func isCallerError(err error) bool {
	return domain.CodeOf(err) != ""
}

// reproposePlan creates the child of parent. A parent is reproposed at most
// once; further repropositions continue from the latest child.
func reproposePlan(
	ctx context.Context,
	plans repository.ActionPlanRepo,
	parent *domain.ActionPlan,
	in domain.RepropositionInput,
	ids domain.IDGenerator,
	now time.Time,
) (*domain.ActionPlan, domain.Event, error) {
	if parent.Status == domain.PlanCancelled {
		return nil, domain.Event{}, domain.NewInvariantError("action plan %s is cancelled and cannot be reproposed", parent.Code)
	}
	existing, err := plans.ChildCode(ctx, parent.ID, parent.OrganizationID, parent.BranchID)
	if err != nil {
		return nil, domain.Event{}, err
	}
	if existing != "" {
		return nil, domain.Event{}, domain.NewInvariantError("action plan %s was already reproposed as %s", parent.Code, existing)
	}
	child, event, err := parent.Repropose(in, ids, now)
	if err != nil {
		return nil, domain.Event{}, err
	}
	if err := plans.Save(ctx, child); err != nil {
		return nil, domain.Event{}, fmt.Errorf("saving reproposed plan %s: %w", child.Code, err)
	}
	return child, event, nil
}
