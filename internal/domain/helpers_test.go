package domain

import (
	"fmt"
	"time"
)

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type seqIDs struct{ n int }

func (s *seqIDs) NewID() string {
	s.n++
	return fmt.Sprintf("id-%03d", s.n)
}

func validPlanProps() ActionPlanProps {
	return ActionPlanProps{
		OrganizationID: "org-1",
		BranchID:       "br-1",
		Code:           "PA-2026-0001",
		What:           "Reduce dock dwell time",
		Why:            "Trucks wait more than 2h at the dock",
		WhereLocation:  "Warehouse A",
		WhenStart:      testNow,
		WhenEnd:        testNow.Add(14 * 24 * time.Hour),
		Who:            "Ana Souza",
		WhoUserID:      "user-ana",
		How:            "Slot booking per carrier",
		CreatedBy:      "user-admin",
	}
}

func newTestPlan(mods ...func(*ActionPlanProps)) *ActionPlan {
	props := validPlanProps()
	for _, m := range mods {
		m(&props)
	}
	p, err := NewActionPlan(props, &seqIDs{}, testNow)
	if err != nil {
		panic(err)
	}
	return p
}

func validFollowUpProps() FollowUpProps {
	return FollowUpProps{
		OrganizationID:      "org-1",
		BranchID:            "br-1",
		ActionPlanID:        "plan-1",
		FollowUpNumber:      1,
		GembaLocal:          "Dock 3",
		GembutsuObservation: "Booking board installed",
		GenjitsuData:        "Average wait 95 min over 5 days",
		ExecutionStatus:     ExecutedPartial,
		ExecutionPercent:    40,
		VerifiedBy:          "user-lead",
	}
}

func validIdeaProps() IdeaProps {
	return IdeaProps{
		OrganizationID: "org-1",
		BranchID:       "br-1",
		Code:           "IDEA-2026-00001",
		Title:          "Carrier slot booking",
		Description:    "Let carriers book unloading slots online",
		SourceType:     SourceSuggestion,
		SubmittedBy:    "user-op",
	}
}
