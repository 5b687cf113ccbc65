package workers_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"legisflow/contexts/legislative-advocacy/workflow-service/adapters/definition"
	"legisflow/contexts/legislative-advocacy/workflow-service/adapters/memory"
	"legisflow/contexts/legislative-advocacy/workflow-service/application/commands"
	"legisflow/contexts/legislative-advocacy/workflow-service/application/workers"
	"legisflow/contexts/legislative-advocacy/workflow-service/ports"
)

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	fail   error
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, _ ports.EventEnvelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	p.topics = append(p.topics, topic)
	return nil
}

func initializeUseCase(store *memory.Store) commands.InitializeWorkflowUseCase {
	return commands.InitializeWorkflowUseCase{
		Workflows: store,
		Catalog:   definition.MustDefaultCatalog(),
		Clock:     store,
		IDGen:     store,
	}
}

func TestOutboxRelayPublishesAndMarks(t *testing.T) {
	store := memory.NewStore()
	if _, err := initializeUseCase(store).Execute(context.Background(), commands.InitializeWorkflowCommand{CampaignID: "c1"}); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	publisher := &recordingPublisher{}
	relay := workers.OutboxRelay{Outbox: store, Publisher: publisher, Clock: store}

	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay: %v", err)
	}
	if len(publisher.topics) != 1 || publisher.topics[0] != commands.EventWorkflowInitialized {
		t.Fatalf("unexpected topics %v", publisher.topics)
	}
	pending, _ := store.ListPendingOutbox(context.Background(), 10)
	if len(pending) != 0 {
		t.Fatalf("expected outbox drained, got %d", len(pending))
	}
}

func TestOutboxRelayKeepsRowsOnPublishFailure(t *testing.T) {
	store := memory.NewStore()
	if _, err := initializeUseCase(store).Execute(context.Background(), commands.InitializeWorkflowCommand{CampaignID: "c1"}); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	relay := workers.OutboxRelay{Outbox: store, Publisher: &recordingPublisher{fail: errors.New("bus down")}}

	if err := relay.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected publish failure")
	}
	pending, _ := store.ListPendingOutbox(context.Background(), 10)
	if len(pending) != 1 {
		t.Fatalf("expected row to stay pending, got %d", len(pending))
	}
}

func TestCampaignCreatedConsumerInitializesOnce(t *testing.T) {
	store := memory.NewStore()
	consumer := workers.CampaignCreatedConsumer{
		Initialize: initializeUseCase(store),
		Dedup:      store,
		Clock:      store,
		DedupTTL:   time.Hour,
	}
	data, _ := json.Marshal(map[string]string{"campaign_id": "c9", "created_by": "u1"})
	event := ports.EventEnvelope{EventID: "evt-1", EventType: workers.CampaignCreatedTopic, PartitionKey: "c9", Data: data}

	if err := consumer.Handle(context.Background(), event); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if err := consumer.Handle(context.Background(), event); err != nil {
		t.Fatalf("replay: %v", err)
	}
	redelivered := event
	redelivered.EventID = "evt-2"
	if err := consumer.Handle(context.Background(), redelivered); err != nil {
		t.Fatalf("expected existing workflow to be tolerated, got %v", err)
	}

	workflow, err := store.GetWorkflow(context.Background(), "c9")
	if err != nil || workflow.CurrentStateID != "PRE_EVT" {
		t.Fatalf("expected workflow at PRE_EVT, got %+v err=%v", workflow, err)
	}
}

func TestCampaignCreatedConsumerRejectsMissingCampaign(t *testing.T) {
	store := memory.NewStore()
	consumer := workers.CampaignCreatedConsumer{Initialize: initializeUseCase(store), Dedup: store}
	event := ports.EventEnvelope{EventID: "evt-3", Data: []byte(`{}`)}
	if err := consumer.Handle(context.Background(), event); err == nil {
		t.Fatalf("expected missing campaign_id to fail")
	}
}

// flakyIDs fails the first NewID call, then delegates.
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

func TestCampaignCreatedConsumerAppliesRedeliveryAfterFailure(t *testing.T) {
	store := memory.NewStore()
	initialize := initializeUseCase(store)
	initialize.IDGen = &flakyIDs{failures: 1, next: store}
	consumer := workers.CampaignCreatedConsumer{
		Initialize: initialize,
		Dedup:      store,
		Clock:      store,
		DedupTTL:   time.Hour,
	}
	data, _ := json.Marshal(map[string]string{"campaign_id": "c-retry", "created_by": "u1"})
	event := ports.EventEnvelope{EventID: "evt-retry", EventType: workers.CampaignCreatedTopic, PartitionKey: "c-retry", Data: data}

	if err := consumer.Handle(context.Background(), event); err == nil {
		t.Fatalf("expected first delivery to fail")
	}
	if err := consumer.Handle(context.Background(), event); err != nil {
		t.Fatalf("redelivery: %v", err)
	}

	workflow, err := store.GetWorkflow(context.Background(), "c-retry")
	if err != nil || workflow.CurrentStateID != "PRE_EVT" {
		t.Fatalf("expected redelivered event to create the workflow, got %+v err=%v", workflow, err)
	}
	if err := consumer.Handle(context.Background(), event); err != nil {
		t.Fatalf("third delivery should be a deduplicated no-op: %v", err)
	}
}

// campaignFailPublisher rejects every event for one campaign.
type campaignFailPublisher struct {
	failCampaign string
	published    []string
}

func (p *campaignFailPublisher) Publish(_ context.Context, topic string, event ports.EventEnvelope) error {
	if event.PartitionKey == p.failCampaign {
		return errors.New("partition unavailable")
	}
	p.published = append(p.published, event.PartitionKey+":"+topic)
	return nil
}

func TestOutboxRelayHoldsOnlyFailingCampaign(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	for _, campaignID := range []string{"c1", "c2"} {
		if _, err := initializeUseCase(store).Execute(ctx, commands.InitializeWorkflowCommand{CampaignID: campaignID}); err != nil {
			t.Fatalf("initialize %s: %v", campaignID, err)
		}
	}
	gates, err := store.ListGates(ctx, "c1")
	if err != nil || len(gates) == 0 {
		t.Fatalf("list gates: %v", err)
	}
	approve := commands.ApproveGateUseCase{Workflows: store, Gates: store, Clock: store, IDGen: store}
	if _, err := approve.Execute(ctx, commands.ApproveGateCommand{GateID: gates[0].GateID, ApprovedBy: "Alice"}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	publisher := &campaignFailPublisher{failCampaign: "c1"}
	relay := workers.OutboxRelay{Outbox: store, Publisher: publisher, Clock: store}
	if err := relay.RunOnce(ctx); err == nil {
		t.Fatalf("expected the c1 failure to be reported")
	}
	if len(publisher.published) != 1 || publisher.published[0] != "c2:"+commands.EventWorkflowInitialized {
		t.Fatalf("expected only c2 to be published, got %v", publisher.published)
	}
	pending, _ := store.ListPendingOutbox(ctx, 10)
	if len(pending) != 2 {
		t.Fatalf("expected both c1 rows to stay pending, got %d", len(pending))
	}

	publisher.failCampaign = ""
	if err := relay.RunOnce(ctx); err != nil {
		t.Fatalf("second cycle: %v", err)
	}
	want := []string{"c2:" + commands.EventWorkflowInitialized, "c1:" + commands.EventWorkflowInitialized, "c1:" + commands.EventGateApproved}
	if len(publisher.published) != len(want) {
		t.Fatalf("unexpected publish order %v", publisher.published)
	}
	for i := range want {
		if publisher.published[i] != want[i] {
			t.Fatalf("unexpected publish order %v", publisher.published)
		}
	}
}
