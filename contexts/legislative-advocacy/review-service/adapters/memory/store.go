package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"legisflow/contexts/legislative-advocacy/review-service/domain/entities"
	domainerrors "legisflow/contexts/legislative-advocacy/review-service/domain/errors"
	"legisflow/contexts/legislative-advocacy/review-service/ports"

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

type Store struct {
	mu sync.RWMutex

	artifacts map[string]entities.ArtifactReview
	outbox    []outboxRow
	dedup     map[string]dedupEntry

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		artifacts: make(map[string]entities.ArtifactReview),
		outbox:    make([]outboxRow, 0),
		dedup:     make(map[string]dedupEntry),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) SetNow(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) CreateArtifact(_ context.Context, item entities.ArtifactReview, event ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.artifacts[item.ArtifactID]; exists {
		return fmt.Errorf("%w: %s", domainerrors.ErrArtifactExists, item.ArtifactID)
	}
	if err := s.appendOutboxLocked(event); err != nil {
		return err
	}
	s.artifacts[item.ArtifactID] = item
	return nil
}

func (s *Store) GetArtifact(_ context.Context, artifactID string) (entities.ArtifactReview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.artifacts[strings.TrimSpace(artifactID)]
	if !exists {
		return entities.ArtifactReview{}, domainerrors.ErrArtifactNotFound
	}
	return item, nil
}

func (s *Store) SaveReview(
	_ context.Context,
	item entities.ArtifactReview,
	expectedVersion int64,
	event ports.EventEnvelope,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.artifacts[item.ArtifactID]
	if !exists {
		return domainerrors.ErrArtifactNotFound
	}
	if current.Version != expectedVersion {
		return fmt.Errorf("%w: artifact %s version %d, expected %d",
			domainerrors.ErrConflict, item.ArtifactID, current.Version, expectedVersion)
	}
	if err := s.appendOutboxLocked(event); err != nil {
		return err
	}
	s.artifacts[item.ArtifactID] = item
	return nil
}

// ListArtifacts orders by creation time, then artifact id.
func (s *Store) ListArtifacts(_ context.Context, filter ports.ArtifactFilter) ([]entities.ArtifactReview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	documentID := strings.TrimSpace(filter.DocumentID)
	items := make([]entities.ArtifactReview, 0)
	for _, item := range s.artifacts {
		if documentID != "" && item.DocumentID != documentID {
			continue
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ArtifactID < items[j].ArtifactID
	})
	return items, nil
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
