package bootstrap

import (
	"context"
	"time"

	"legisflow/internal/platform/httpserver"
	"legisflow/internal/platform/observability"

	"golang.org/x/sync/errgroup"
)

type APIApp struct {
	runtime *runtime
	server  *httpserver.Server
	// workers is set when the stores live in this process's memory, so
	// events still flow without a separate worker process.
	workers *WorkerApp
}

func BuildAPI(ctx context.Context) (*APIApp, error) {
	rt, err := buildRuntime(ctx, "api")
	if err != nil {
		return nil, err
	}
	app := &APIApp{
		runtime: rt,
		server: httpserver.New(rt.workflow, rt.review, rt.logger, httpserver.Options{
			Addr:                rt.cfg.HTTPAddr,
			WriteRateLimitRPS:   rt.cfg.WriteRateLimitRPS,
			WriteRateLimitBurst: rt.cfg.WriteRateLimitBurst,
			Tracer:              observability.Tracer(),
		}),
	}
	if !rt.cfg.UsesPostgres() {
		app.workers = newWorkerApp(rt)
	}
	return app, nil
}

// Run serves until ctx is done, then drains in-flight requests.
func (a *APIApp) Run(ctx context.Context) error {
	a.runtime.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"embedded_workers", a.workers != nil,
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(a.server.Start)
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})
	if a.workers != nil {
		group.Go(func() error { return a.workers.Run(groupCtx) })
	}
	return group.Wait()
}

func (a *APIApp) Close() error {
	return a.runtime.close()
}
