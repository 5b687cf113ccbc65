package workflowservice

import (
	"log/slog"
	"time"

	"legisflow/contexts/legislative-advocacy/workflow-service/adapters/definition"
	httpadapter "legisflow/contexts/legislative-advocacy/workflow-service/adapters/http"
	"legisflow/contexts/legislative-advocacy/workflow-service/adapters/memory"
	"legisflow/contexts/legislative-advocacy/workflow-service/application/commands"
	"legisflow/contexts/legislative-advocacy/workflow-service/application/queries"
	"legisflow/contexts/legislative-advocacy/workflow-service/application/workers"
	"legisflow/contexts/legislative-advocacy/workflow-service/ports"
)

type Module struct {
	Handler        httpadapter.Handler
	Initialize     commands.InitializeWorkflowUseCase
	OutboxRelay    workers.OutboxRelay
	CampaignEvents workers.CampaignCreatedConsumer
	Store          *memory.Store
}

type Dependencies struct {
	Catalog         ports.ProcessCatalog
	Workflows       ports.WorkflowRepository
	Gates           ports.GateRepository
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
	initialize := commands.InitializeWorkflowUseCase{
		Workflows: deps.Workflows,
		Catalog:   deps.Catalog,
		Clock:     deps.Clock,
		IDGen:     deps.IDGenerator,
		Logger:    deps.Logger,
	}
	approveGate := commands.ApproveGateUseCase{
		Workflows: deps.Workflows,
		Gates:     deps.Gates,
		Clock:     deps.Clock,
		IDGen:     deps.IDGenerator,
		Logger:    deps.Logger,
	}
	advance := commands.AdvanceWorkflowUseCase{
		Workflows: deps.Workflows,
		Gates:     deps.Gates,
		Catalog:   deps.Catalog,
		Clock:     deps.Clock,
		IDGen:     deps.IDGenerator,
		Logger:    deps.Logger,
	}
	reset := commands.ResetWorkflowUseCase{
		Workflows: deps.Workflows,
		Catalog:   deps.Catalog,
		Clock:     deps.Clock,
		IDGen:     deps.IDGenerator,
		Logger:    deps.Logger,
	}

	return Module{
		Handler: httpadapter.Handler{
			InitializeWorkflow: initialize,
			ApproveGate:        approveGate,
			AdvanceWorkflow:    advance,
			ResetWorkflow:      reset,
			GetCurrentState: queries.GetCurrentStateUseCase{
				Workflows: deps.Workflows,
				Gates:     deps.Gates,
				Catalog:   deps.Catalog,
				Logger:    deps.Logger,
			},
			ListWorkflowStates: queries.ListWorkflowStatesUseCase{
				Workflows: deps.Workflows,
				Gates:     deps.Gates,
				Catalog:   deps.Catalog,
				Logger:    deps.Logger,
			},
			ListGates: queries.ListGatesUseCase{
				Workflows: deps.Workflows,
				Gates:     deps.Gates,
				Logger:    deps.Logger,
			},
			GetHistory: queries.GetHistoryUseCase{
				Workflows: deps.Workflows,
				Logger:    deps.Logger,
			},
			ListProcessStates: queries.ListProcessStatesUseCase{Catalog: deps.Catalog},
			ListGateTemplates: queries.ListGateTemplatesUseCase{Catalog: deps.Catalog},
			Logger:            deps.Logger,
		},
		Initialize: initialize,
		OutboxRelay: workers.OutboxRelay{
			Outbox:    deps.Outbox,
			Publisher: deps.Publisher,
			Clock:     deps.Clock,
			BatchSize: deps.OutboxBatchSize,
			Logger:    deps.Logger,
		},
		CampaignEvents: workers.CampaignCreatedConsumer{
			Subscriber: deps.Subscriber,
			Initialize: initialize,
			Dedup:      deps.Dedup,
			Clock:      deps.Clock,
			DedupTTL:   deps.DedupTTL,
			Logger:     deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module over a memory store and the embedded
// process definition. Publisher and subscriber may be nil when the worker
// side is unused.
func NewInMemoryModule(publisher ports.EventPublisher, subscriber ports.EventSubscriber, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Catalog:     definition.MustDefaultCatalog(),
		Workflows:   store,
		Gates:       store,
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
