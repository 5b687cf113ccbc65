package bootstrap

import (
	"context"
	"time"

	reviewworkers "legisflow/contexts/legislative-advocacy/review-service/application/workers"
	workflowworkers "legisflow/contexts/legislative-advocacy/workflow-service/application/workers"
	"legisflow/internal/platform/observability"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

type relay interface {
	RunOnce(ctx context.Context) error
}

type WorkerApp struct {
	runtime        *runtime
	workflowRelay  workflowworkers.OutboxRelay
	reviewRelay    reviewworkers.OutboxRelay
	campaignEvents workflowworkers.CampaignCreatedConsumer
	artifactEvents reviewworkers.ArtifactGeneratedConsumer
	pollInterval   time.Duration
}

func BuildWorker(ctx context.Context) (*WorkerApp, error) {
	rt, err := buildRuntime(ctx, "worker")
	if err != nil {
		return nil, err
	}
	return newWorkerApp(rt), nil
}

func newWorkerApp(rt *runtime) *WorkerApp {
	return &WorkerApp{
		runtime:        rt,
		workflowRelay:  rt.workflow.OutboxRelay,
		reviewRelay:    rt.review.OutboxRelay,
		campaignEvents: rt.workflow.CampaignEvents,
		artifactEvents: rt.review.ArtifactEvents,
		pollInterval:   rt.cfg.OutboxPollInterval,
	}
}

// Run subscribes the consumers and drives both outbox relays until ctx is
// done. A failed relay cycle is logged and retried on the next tick.
func (w *WorkerApp) Run(ctx context.Context) error {
	if err := w.campaignEvents.Start(ctx); err != nil {
		return err
	}
	if err := w.artifactEvents.Start(ctx); err != nil {
		return err
	}

	w.runtime.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error { return w.loop(groupCtx, "workflow", w.workflowRelay) })
	group.Go(func() error { return w.loop(groupCtx, "review", w.reviewRelay) })
	return group.Wait()
}

func (w *WorkerApp) loop(ctx context.Context, name string, r relay) error {
	interval := w.pollInterval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	tracer := observability.Tracer()
	for {
		err := observability.TraceOperation(ctx, tracer, "outbox.relay", r.RunOnce, attribute.String("relay", name))
		if err != nil && ctx.Err() == nil {
			w.runtime.logger.Warn("outbox relay cycle failed",
				"event", "bootstrap_relay_cycle_failed",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"relay", name,
				"error", err.Error(),
			)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	return w.runtime.close()
}
