package postgresadapter

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"legisflow/contexts/legislative-advocacy/workflow-service/domain/entities"
	domainerrors "legisflow/contexts/legislative-advocacy/workflow-service/domain/errors"
	"legisflow/contexts/legislative-advocacy/workflow-service/ports"
	"legisflow/internal/platform/db"
	"legisflow/internal/platform/db/dbtest"
)

type RepositorySuite struct {
	suite.Suite
	ctx  context.Context
	pg   *db.Postgres
	repo *Repository
}

func TestRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = dbtest.SetupPostgres(s.T(), s.ctx)
	s.repo = NewRepository(s.pg.DB, nil)
}

func (s *RepositorySuite) SetupTest() {
	dbtest.Truncate(s.T(), s.pg,
		"legislative_outbox", "legislative_transitions", "legislative_gates", "legislative_workflows", "consumer_dedup")
}

func (s *RepositorySuite) seed(campaignID string) (entities.CampaignWorkflow, entities.Gate) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	workflow := entities.CampaignWorkflow{
		CampaignID:     campaignID,
		ProcessID:      "legislative",
		CurrentStateID: "PRE_EVT",
		StateEnteredAt: now,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	gate := entities.NewGate(campaignID+"-gate", campaignID, entities.GateTemplate{
		Code: "HR_PRE", FromState: "PRE_EVT", ToState: "INTRO_EVT", Name: "Approve Concept Direction",
	}, 0, now)
	gate.Version = 1
	require.NoError(s.T(), s.repo.CreateWorkflow(s.ctx, workflow, []entities.Gate{gate}, envelope(campaignID+"-init", campaignID)))
	return workflow, gate
}

func envelope(eventID string, campaignID string) ports.EventEnvelope {
	return ports.EventEnvelope{
		EventID:      eventID,
		EventType:    "legislative.test",
		OccurredAt:   time.Now().UTC(),
		PartitionKey: campaignID,
		Data:         []byte(`{}`),
	}
}

func (s *RepositorySuite) TestCreateWorkflowDuplicate() {
	workflow, _ := s.seed("c-dup")
	err := s.repo.CreateWorkflow(s.ctx, workflow, nil, envelope("c-dup-2", "c-dup"))
	s.Require().ErrorIs(err, domainerrors.ErrWorkflowExists)
}

func (s *RepositorySuite) TestGetWorkflowNotFound() {
	_, err := s.repo.GetWorkflow(s.ctx, "missing")
	s.Require().ErrorIs(err, domainerrors.ErrWorkflowNotFound)
}

func (s *RepositorySuite) TestSaveTransitionCompareAndSwap() {
	workflow, _ := s.seed("c-cas")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			next := workflow
			next.CurrentStateID = "INTRO_EVT"
			next.Version = 2
			next.UpdatedAt = time.Now().UTC()
			transition := entities.Transition{
				TransitionID: "t-" + string(rune('a'+i)),
				CampaignID:   "c-cas",
				FromState:    "PRE_EVT",
				ToState:      "INTRO_EVT",
				Kind:         entities.TransitionKindAdvance,
				RequestedBy:  "tester",
				OccurredAt:   time.Now().UTC(),
			}
			errs[i] = s.repo.SaveTransition(s.ctx, next, 1, transition, envelope(transition.TransitionID, "c-cas"))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.Require().ErrorIs(err, domainerrors.ErrConflict)
	}
	s.Require().Equal(1, succeeded)

	stored, err := s.repo.GetWorkflow(s.ctx, "c-cas")
	s.Require().NoError(err)
	s.Equal("INTRO_EVT", stored.CurrentStateID)
	s.EqualValues(2, stored.Version)

	history, err := s.repo.ListTransitions(s.ctx, "c-cas")
	s.Require().NoError(err)
	s.Len(history, 1)
}

func (s *RepositorySuite) TestSaveGateApproval() {
	_, gate := s.seed("c-gate")

	approved, _ := gate.Approve("Alice", "ok", time.Now())
	approved.Version = 2
	s.Require().NoError(s.repo.SaveGateApproval(s.ctx, approved, 1, envelope("c-gate-approve", "c-gate")))

	stored, err := s.repo.GetGate(s.ctx, gate.GateID)
	s.Require().NoError(err)
	s.True(stored.IsApproved())
	s.Require().NotNil(stored.ApprovedBy)
	s.Equal("Alice", *stored.ApprovedBy)

	err = s.repo.SaveGateApproval(s.ctx, approved, 1, envelope("c-gate-approve-2", "c-gate"))
	s.Require().ErrorIs(err, domainerrors.ErrConflict)
}

func (s *RepositorySuite) TestOutboxAndDedup() {
	s.seed("c-outbox")

	pending, err := s.repo.ListPendingOutbox(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Require().NoError(s.repo.MarkOutboxPublished(s.ctx, pending[0].OutboxID, time.Now()))

	pending, err = s.repo.ListPendingOutbox(s.ctx, 10)
	s.Require().NoError(err)
	s.Empty(pending)

	seen, err := s.repo.ReserveEvent(s.ctx, "evt-1", "hash", time.Now().Add(time.Hour))
	s.Require().NoError(err)
	s.False(seen)
	seen, err = s.repo.ReserveEvent(s.ctx, "evt-1", "hash", time.Now().Add(time.Hour))
	s.Require().NoError(err)
	s.True(seen)
}

func (s *RepositorySuite) TestReserveEventExpiryAndRelease() {
	seen, err := s.repo.ReserveEvent(s.ctx, "evt-expired", "hash", time.Now().Add(-time.Minute))
	s.Require().NoError(err)
	s.False(seen)

	seen, err = s.repo.ReserveEvent(s.ctx, "evt-expired", "other", time.Now().Add(time.Hour))
	s.Require().NoError(err)
	s.False(seen, "expired reservation must be taken over")

	seen, err = s.repo.ReserveEvent(s.ctx, "evt-expired", "other", time.Now().Add(time.Hour))
	s.Require().NoError(err)
	s.True(seen)

	s.Require().NoError(s.repo.ReleaseEvent(s.ctx, "evt-expired"))
	seen, err = s.repo.ReserveEvent(s.ctx, "evt-expired", "other", time.Now().Add(time.Hour))
	s.Require().NoError(err)
	s.False(seen, "released reservation must be reservable again")
}
