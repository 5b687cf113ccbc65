package reviewservice

import (
	"log/slog"
	"time"

	httpadapter "legisflow/contexts/legislative-advocacy/review-service/adapters/http"
	"legisflow/contexts/legislative-advocacy/review-service/adapters/memory"
	"legisflow/contexts/legislative-advocacy/review-service/application/commands"
	"legisflow/contexts/legislative-advocacy/review-service/application/queries"
	"legisflow/contexts/legislative-advocacy/review-service/application/workers"
	"legisflow/contexts/legislative-advocacy/review-service/ports"
)

type Module struct {
	Handler        httpadapter.Handler
	OutboxRelay    workers.OutboxRelay
	ArtifactEvents workers.ArtifactGeneratedConsumer
	Store          *memory.Store
}

type Dependencies struct {
	Artifacts       ports.ArtifactReviewRepository
	Outbox          ports.OutboxRepository
	Dedup           ports.EventDedupStore
	Publisher       ports.EventPublisher
	Subscriber      ports.EventSubscriber
	Clock           ports.Clock
	IDGenerator     ports.IDGenerator
	OutboxBatchSize int
	DedupTTL        time.Duration
	Logger          *slog.Logger
}

func NewModule(deps Dependencies) Module {
	register := commands.RegisterArtifactUseCase{
		Artifacts: deps.Artifacts,
		Clock:     deps.Clock,
		IDGen:     deps.IDGenerator,
		Logger:    deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			RegisterArtifact: register,
			UpdateReview: commands.UpdateReviewUseCase{
				Artifacts: deps.Artifacts,
				Clock:     deps.Clock,
				IDGen:     deps.IDGenerator,
				Logger:    deps.Logger,
			},
			GetArtifact: queries.GetArtifactUseCase{Artifacts: deps.Artifacts},
			GetDocumentReviews: queries.GetDocumentReviewsUseCase{
				Artifacts: deps.Artifacts,
				Logger:    deps.Logger,
			},
			ListDocumentSummaries: queries.ListDocumentSummariesUseCase{Artifacts: deps.Artifacts},
			Logger:                deps.Logger,
		},
		OutboxRelay: workers.OutboxRelay{
			Outbox:    deps.Outbox,
			Publisher: deps.Publisher,
			Clock:     deps.Clock,
			BatchSize: deps.OutboxBatchSize,
			Logger:    deps.Logger,
		},
		ArtifactEvents: workers.ArtifactGeneratedConsumer{
			Subscriber: deps.Subscriber,
			Register:   register,
			Dedup:      deps.Dedup,
			Clock:      deps.Clock,
			DedupTTL:   deps.DedupTTL,
			Logger:     deps.Logger,
		},
	}
}

func NewInMemoryModule(publisher ports.EventPublisher, subscriber ports.EventSubscriber, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Artifacts:   store,
		Outbox:      store,
		Dedup:       store,
		Publisher:   publisher,
		Subscriber:  subscriber,
		Clock:       store,
		IDGenerator: store,
		DedupTTL:    7 * 24 * time.Hour,
		Logger:      logger,
	})
	module.Store = store
	return module
}
