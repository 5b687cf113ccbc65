package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"legisflow/contexts/legislative-advocacy/workflow-service/domain/entities"
	domainerrors "legisflow/contexts/legislative-advocacy/workflow-service/domain/errors"
	"legisflow/contexts/legislative-advocacy/workflow-service/ports"

	"github.com/google/uuid"
)

type dedupEntry struct {
	payloadHash string
	expiresAt   time.Time
}

type outboxRow struct {
	message     ports.OutboxMessage
	publishedAt *time.Time
}

// Store keeps workflows, gates, history and outbox rows in memory. Every
// write takes the single lock, so version checks and writes are atomic.
type Store struct {
	mu sync.RWMutex

	workflows   map[string]entities.CampaignWorkflow
	gates       map[string]entities.Gate
	transitions map[string][]entities.Transition
	outbox      []outboxRow
	dedup       map[string]dedupEntry

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		workflows:   make(map[string]entities.CampaignWorkflow),
		gates:       make(map[string]entities.Gate),
		transitions: make(map[string][]entities.Transition),
		outbox:      make([]outboxRow, 0),
		dedup:       make(map[string]dedupEntry),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SetNow replaces the store clock.
func (s *Store) SetNow(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) CreateWorkflow(
	_ context.Context,
	workflow entities.CampaignWorkflow,
	gates []entities.Gate,
	event ports.EventEnvelope,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.workflows[workflow.CampaignID]; exists {
		return fmt.Errorf("%w: %s", domainerrors.ErrWorkflowExists, workflow.CampaignID)
	}
	for _, gate := range gates {
		if _, exists := s.gates[gate.GateID]; exists {
			return fmt.Errorf("%w: gate %s", domainerrors.ErrConflict, gate.GateID)
		}
	}
	if err := s.appendOutboxLocked(event); err != nil {
		return err
	}
	s.workflows[workflow.CampaignID] = workflow
	for _, gate := range gates {
		s.gates[gate.GateID] = gate
	}
	return nil
}

func (s *Store) GetWorkflow(_ context.Context, campaignID string) (entities.CampaignWorkflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.workflows[strings.TrimSpace(campaignID)]
	if !exists {
		return entities.CampaignWorkflow{}, domainerrors.ErrWorkflowNotFound
	}
	return item, nil
}

func (s *Store) SaveTransition(
	_ context.Context,
	workflow entities.CampaignWorkflow,
	expectedVersion int64,
	transition entities.Transition,
	event ports.EventEnvelope,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.workflows[workflow.CampaignID]
	if !exists {
		return domainerrors.ErrWorkflowNotFound
	}
	if current.Version != expectedVersion {
		return fmt.Errorf("%w: workflow %s version %d, expected %d",
			domainerrors.ErrConflict, workflow.CampaignID, current.Version, expectedVersion)
	}
	if err := s.appendOutboxLocked(event); err != nil {
		return err
	}
	s.workflows[workflow.CampaignID] = workflow
	s.transitions[workflow.CampaignID] = append(s.transitions[workflow.CampaignID], transition)
	return nil
}

func (s *Store) ListTransitions(_ context.Context, campaignID string) ([]entities.Transition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]entities.Transition(nil), s.transitions[strings.TrimSpace(campaignID)]...), nil
}

func (s *Store) GetGate(_ context.Context, gateID string) (entities.Gate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.gates[strings.TrimSpace(gateID)]
	if !exists {
		return entities.Gate{}, domainerrors.ErrGateNotFound
	}
	return item, nil
}

func (s *Store) ListGates(_ context.Context, campaignID string) ([]entities.Gate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	campaignID = strings.TrimSpace(campaignID)
	items := make([]entities.Gate, 0, 4)
	for _, gate := range s.gates {
		if gate.CampaignID == campaignID {
			items = append(items, gate)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Position < items[j].Position
	})
	return items, nil
}

func (s *Store) SaveGateApproval(
	_ context.Context,
	gate entities.Gate,
	expectedVersion int64,
	event ports.EventEnvelope,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.gates[gate.GateID]
	if !exists {
		return domainerrors.ErrGateNotFound
	}
	if current.Version != expectedVersion {
		return fmt.Errorf("%w: gate %s version %d, expected %d",
			domainerrors.ErrConflict, gate.GateID, current.Version, expectedVersion)
	}
	workflow, exists := s.workflows[current.CampaignID]
	if !exists {
		return domainerrors.ErrWorkflowNotFound
	}
	if workflow.CurrentStateID != current.FromState {
		return fmt.Errorf("%w: campaign moved to %s", domainerrors.ErrGateNotActive, workflow.CurrentStateID)
	}
	if err := s.appendOutboxLocked(event); err != nil {
		return err
	}
	s.gates[gate.GateID] = gate
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0, limit)
	for _, row := range s.outbox {
		if row.publishedAt != nil {
			continue
		}
		items = append(items, row.message)
		if len(items) == limit {
			break
		}
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.outbox {
		if s.outbox[i].message.OutboxID == outboxID {
			at := publishedAt.UTC()
			s.outbox[i].publishedAt = &at
			return nil
		}
	}
	return fmt.Errorf("outbox row %s: %w", outboxID, domainerrors.ErrNotFound)
}

func (s *Store) ReserveEvent(_ context.Context, eventID string, payloadHash string, expiresAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	eventID = strings.TrimSpace(eventID)
	if existing, ok := s.dedup[eventID]; ok && existing.expiresAt.After(s.now()) {
		if existing.payloadHash != payloadHash {
			return false, fmt.Errorf("%w: event %s replayed with a different payload", domainerrors.ErrConflict, eventID)
		}
		return true, nil
	}
	s.dedup[eventID] = dedupEntry{payloadHash: payloadHash, expiresAt: expiresAt.UTC()}
	return false, nil
}

func (s *Store) ReleaseEvent(_ context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.dedup, strings.TrimSpace(eventID))
	return nil
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.now()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) appendOutboxLocked(event ports.EventEnvelope) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	s.outbox = append(s.outbox, outboxRow{message: ports.OutboxMessage{
		OutboxID:     event.EventID,
		EventType:    event.EventType,
		PartitionKey: event.PartitionKey,
		Payload:      payload,
		CreatedAt:    event.OccurredAt.UTC(),
	}})
	return nil
}
