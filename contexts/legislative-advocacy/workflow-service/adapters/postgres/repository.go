package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"legisflow/contexts/legislative-advocacy/workflow-service/domain/entities"
	domainerrors "legisflow/contexts/legislative-advocacy/workflow-service/domain/errors"
	"legisflow/contexts/legislative-advocacy/workflow-service/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
	dedupConsumer         = "workflow-service"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) CreateWorkflow(
	ctx context.Context,
	workflow entities.CampaignWorkflow,
	gates []entities.Gate,
	event ports.EventEnvelope,
) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := workflowModelFromEntity(workflow)
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %s", domainerrors.ErrWorkflowExists, workflow.CampaignID)
			}
			return err
		}
		if len(gates) > 0 {
			rows := make([]gateModel, 0, len(gates))
			for _, gate := range gates {
				rows = append(rows, gateModelFromEntity(gate))
			}
			if err := tx.Create(&rows).Error; err != nil {
				if isUniqueViolation(err) {
					return fmt.Errorf("%w: duplicate gate for campaign %s", domainerrors.ErrConflict, workflow.CampaignID)
				}
				return err
			}
		}
		return insertOutboxEnvelopeTx(tx, event)
	})
	return r.storeError("create_workflow", err)
}

func (r *Repository) GetWorkflow(ctx context.Context, campaignID string) (entities.CampaignWorkflow, error) {
	var row workflowModel
	err := r.db.WithContext(ctx).
		Where("campaign_id = ?", strings.TrimSpace(campaignID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.CampaignWorkflow{}, domainerrors.ErrWorkflowNotFound
		}
		return entities.CampaignWorkflow{}, r.storeError("get_workflow", err)
	}
	return row.toEntity(), nil
}

func (r *Repository) SaveTransition(
	ctx context.Context,
	workflow entities.CampaignWorkflow,
	expectedVersion int64,
	transition entities.Transition,
	event ports.EventEnvelope,
) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&workflowModel{}).
			Where("campaign_id = ? AND version = ?", workflow.CampaignID, expectedVersion).
			Updates(map[string]any{
				"current_state_id": workflow.CurrentStateID,
				"state_entered_at": workflow.StateEnteredAt.UTC(),
				"version":          workflow.Version,
				"updated_at":       workflow.UpdatedAt.UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return versionMissError(tx, &workflowModel{}, "campaign_id", workflow.CampaignID, domainerrors.ErrWorkflowNotFound)
		}

		row := transitionModel{
			TransitionID: transition.TransitionID,
			CampaignID:   transition.CampaignID,
			FromState:    transition.FromState,
			ToState:      transition.ToState,
			Kind:         string(transition.Kind),
			RequestedBy:  transition.RequestedBy,
			GateID:       transition.GateID,
			ApprovedBy:   transition.ApprovedBy,
			Notes:        transition.Notes,
			OccurredAt:   transition.OccurredAt.UTC(),
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		return insertOutboxEnvelopeTx(tx, event)
	})
	return r.storeError("save_transition", err)
}

func (r *Repository) ListTransitions(ctx context.Context, campaignID string) ([]entities.Transition, error) {
	var rows []transitionModel
	if err := r.db.WithContext(ctx).
		Where("campaign_id = ?", strings.TrimSpace(campaignID)).
		Order("occurred_at ASC").
		Find(&rows).
		Error; err != nil {
		return nil, r.storeError("list_transitions", err)
	}
	items := make([]entities.Transition, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetGate(ctx context.Context, gateID string) (entities.Gate, error) {
	var row gateModel
	err := r.db.WithContext(ctx).
		Where("gate_id = ?", strings.TrimSpace(gateID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Gate{}, domainerrors.ErrGateNotFound
		}
		return entities.Gate{}, r.storeError("get_gate", err)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListGates(ctx context.Context, campaignID string) ([]entities.Gate, error) {
	var rows []gateModel
	if err := r.db.WithContext(ctx).
		Where("campaign_id = ?", strings.TrimSpace(campaignID)).
		Order("position ASC").
		Find(&rows).
		Error; err != nil {
		return nil, r.storeError("list_gates", err)
	}
	items := make([]entities.Gate, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) SaveGateApproval(
	ctx context.Context,
	gate entities.Gate,
	expectedVersion int64,
	event ports.EventEnvelope,
) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Share-lock the workflow so an advance cannot slip in between the
		// activeness check and the gate write.
		var workflow workflowModel
		if err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
			Where("campaign_id = ?", gate.CampaignID).
			First(&workflow).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrWorkflowNotFound
			}
			return err
		}
		if workflow.CurrentStateID != gate.FromState {
			return fmt.Errorf("%w: campaign moved to %s", domainerrors.ErrGateNotActive, workflow.CurrentStateID)
		}

		result := tx.Model(&gateModel{}).
			Where("gate_id = ? AND version = ?", gate.GateID, expectedVersion).
			Updates(map[string]any{
				"status":         string(gate.Status),
				"approved_by":    gate.ApprovedBy,
				"approved_at":    normalizeOptionalTime(gate.ApprovedAt),
				"approval_notes": gate.ApprovalNotes,
				"version":        gate.Version,
				"updated_at":     gate.UpdatedAt.UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return versionMissError(tx, &gateModel{}, "gate_id", gate.GateID, domainerrors.ErrGateNotFound)
		}
		return insertOutboxEnvelopeTx(tx, event)
	})
	return r.storeError("save_gate_approval", err)
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, r.storeError("list_outbox", err)
	}

	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.storeError("mark_outbox_published", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("outbox row %s: %w", outboxID, domainerrors.ErrNotFound)
	}
	return nil
}

func (r *Repository) ReserveEvent(
	ctx context.Context,
	eventID string,
	payloadHash string,
	expiresAt time.Time,
) (bool, error) {
	row := eventDedupModel{
		EventID:     strings.TrimSpace(eventID),
		Consumer:    dedupConsumer,
		PayloadHash: strings.TrimSpace(payloadHash),
		ExpiresAt:   expiresAt.UTC(),
		ProcessedAt: time.Now().UTC(),
	}

	createResult := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}, {Name: "consumer"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload_hash", "expires_at", "processed_at"}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Expr{SQL: "consumer_dedup.expires_at <= ?", Vars: []any{row.ProcessedAt}},
			}},
		}).
		Create(&row)
	if createResult.Error != nil {
		return false, r.storeError("reserve_event", createResult.Error)
	}
	if createResult.RowsAffected > 0 {
		return false, nil
	}

	var existing eventDedupModel
	if err := r.db.WithContext(ctx).
		Select("payload_hash").
		Where("event_id = ? AND consumer = ?", row.EventID, dedupConsumer).
		First(&existing).
		Error; err != nil {
		return false, r.storeError("reserve_event", err)
	}
	if existing.PayloadHash != row.PayloadHash {
		return false, fmt.Errorf("%w: event %s replayed with a different payload", domainerrors.ErrConflict, row.EventID)
	}
	return true, nil
}

// ReleaseEvent drops this consumer's reservation for eventID.
func (r *Repository) ReleaseEvent(ctx context.Context, eventID string) error {
	result := r.db.WithContext(ctx).
		Where("event_id = ? AND consumer = ?", strings.TrimSpace(eventID), dedupConsumer).
		Delete(&eventDedupModel{})
	if result.Error != nil {
		return r.storeError("release_event", result.Error)
	}
	return nil
}

func insertOutboxEnvelopeTx(tx *gorm.DB, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return tx.Create(&row).Error
}

// versionMissError tells a lost compare-and-swap apart from a missing row.
func versionMissError(tx *gorm.DB, model any, keyColumn string, key string, notFound error) error {
	var count int64
	if err := tx.Model(model).Where(keyColumn+" = ?", key).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return notFound
	}
	return fmt.Errorf("%w: %s was modified concurrently", domainerrors.ErrConflict, key)
}

// storeError passes domain errors through and marks everything else as a
// store failure.
func (r *Repository) storeError(operation string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{
		domainerrors.ErrInvalidTransition,
		domainerrors.ErrValidation,
		domainerrors.ErrNotFound,
		domainerrors.ErrConflict,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	r.logger.Error("workflow store operation failed",
		"event", "workflow_store_failed",
		"module", "legislative-advocacy/workflow-service",
		"layer", "adapter",
		"operation", operation,
		"error", err.Error(),
	)
	return fmt.Errorf("%w: %s: %v", domainerrors.ErrStoreUnavailable, operation, err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
