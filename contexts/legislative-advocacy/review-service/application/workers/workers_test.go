package workers_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"legisflow/contexts/legislative-advocacy/review-service/adapters/memory"
	"legisflow/contexts/legislative-advocacy/review-service/application/commands"
	"legisflow/contexts/legislative-advocacy/review-service/application/workers"
	"legisflow/contexts/legislative-advocacy/review-service/domain/entities"
	"legisflow/contexts/legislative-advocacy/review-service/ports"
)

type recordingPublisher struct {
	topics []string
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, _ ports.EventEnvelope) error {
	p.topics = append(p.topics, topic)
	return nil
}

func artifactEvent(t *testing.T, eventID string, artifactID string) ports.EventEnvelope {
	t.Helper()
	data, err := json.Marshal(map[string]string{
		"artifact_id":   artifactID,
		"document_id":   "d1",
		"artifact_type": "summary",
		"title":         "Summary",
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return ports.EventEnvelope{EventID: eventID, EventType: workers.ArtifactGeneratedTopic, Data: data}
}

func TestArtifactGeneratedConsumerRegistersOnce(t *testing.T) {
	store := memory.NewStore()
	publisher := &recordingPublisher{}
	consumer := workers.ArtifactGeneratedConsumer{
		Register: commands.RegisterArtifactUseCase{Artifacts: store, Clock: store, IDGen: store},
		Dedup:    store,
		Clock:    store,
	}
	ctx := context.Background()

	event := artifactEvent(t, "evt-1", "a1")
	for i := 0; i < 2; i++ {
		if err := consumer.Handle(ctx, event); err != nil {
			t.Fatalf("handle #%d: %v", i, err)
		}
	}
	if err := consumer.Handle(ctx, artifactEvent(t, "evt-2", "a1")); err != nil {
		t.Fatalf("redelivered artifact under new event id: %v", err)
	}

	items, _ := store.ListArtifacts(ctx, ports.ArtifactFilter{DocumentID: "d1"})
	if len(items) != 1 {
		t.Fatalf("expected one artifact, got %d", len(items))
	}

	relay := workers.OutboxRelay{Outbox: store, Publisher: publisher, Clock: store}
	if err := relay.RunOnce(ctx); err != nil {
		t.Fatalf("relay: %v", err)
	}
	if len(publisher.topics) != 1 || publisher.topics[0] != commands.EventArtifactRegistered {
		t.Fatalf("unexpected published topics %v", publisher.topics)
	}
	if pending, _ := store.ListPendingOutbox(ctx, 10); len(pending) != 0 {
		t.Fatalf("expected drained outbox, got %d rows", len(pending))
	}
}

func TestArtifactGeneratedConsumerRejectsIncompletePayload(t *testing.T) {
	store := memory.NewStore()
	consumer := workers.ArtifactGeneratedConsumer{
		Register: commands.RegisterArtifactUseCase{Artifacts: store, Clock: store, IDGen: store},
		Dedup:    store,
	}
	event := ports.EventEnvelope{EventID: "evt-bad", Data: []byte(`{"artifact_id":"a1"}`)}
	if err := consumer.Handle(context.Background(), event); err == nil {
		t.Fatalf("expected validation error")
	}
}

type flakyIDs struct {
	failures int
	next     ports.IDGenerator
}

func (f *flakyIDs) NewID(ctx context.Context) (string, error) {
	if f.failures > 0 {
		f.failures--
		return "", errors.New("transient store failure")
	}
	return f.next.NewID(ctx)
}

func TestArtifactGeneratedConsumerAppliesRedeliveryAfterFailure(t *testing.T) {
	store := memory.NewStore()
	consumer := workers.ArtifactGeneratedConsumer{
		Register: commands.RegisterArtifactUseCase{Artifacts: store, Clock: store, IDGen: &flakyIDs{failures: 1, next: store}},
		Dedup:    store,
		Clock:    store,
	}
	ctx := context.Background()
	event := artifactEvent(t, "evt-retry", "a-retry")

	if err := consumer.Handle(ctx, event); err == nil {
		t.Fatalf("expected first delivery to fail")
	}
	if err := consumer.Handle(ctx, event); err != nil {
		t.Fatalf("redelivery: %v", err)
	}

	item, err := store.GetArtifact(ctx, "a-retry")
	if err != nil {
		t.Fatalf("expected redelivered event to register the artifact: %v", err)
	}
	if item.ReviewStatus != entities.ReviewStatusPendingReview {
		t.Fatalf("expected pending_review, got %s", item.ReviewStatus)
	}
}

type documentFailPublisher struct {
	failDocument string
	published    []string
}

func (p *documentFailPublisher) Publish(_ context.Context, _ string, event ports.EventEnvelope) error {
	if event.PartitionKey == p.failDocument {
		return errors.New("partition unavailable")
	}
	p.published = append(p.published, event.PartitionKey)
	return nil
}

func TestOutboxRelayHoldsOnlyFailingDocument(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	register := commands.RegisterArtifactUseCase{Artifacts: store, Clock: store, IDGen: store}
	for _, cmd := range []commands.RegisterArtifactCommand{
		{ArtifactID: "a1", DocumentID: "d1", ArtifactType: "summary", Title: "Summary"},
		{ArtifactID: "a2", DocumentID: "d2", ArtifactType: "summary", Title: "Summary"},
		{ArtifactID: "a3", DocumentID: "d1", ArtifactType: "action_plan", Title: "Plan"},
	} {
		if _, err := register.Execute(ctx, cmd); err != nil {
			t.Fatalf("register %s: %v", cmd.ArtifactID, err)
		}
	}

	publisher := &documentFailPublisher{failDocument: "d1"}
	relay := workers.OutboxRelay{Outbox: store, Publisher: publisher, Clock: store}
	if err := relay.RunOnce(ctx); err == nil {
		t.Fatalf("expected the d1 failure to be reported")
	}
	if len(publisher.published) != 1 || publisher.published[0] != "d2" {
		t.Fatalf("expected only d2 to be published, got %v", publisher.published)
	}
	if pending, _ := store.ListPendingOutbox(ctx, 10); len(pending) != 2 {
		t.Fatalf("expected both d1 rows to stay pending, got %d", len(pending))
	}
}
