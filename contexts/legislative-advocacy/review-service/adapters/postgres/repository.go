package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"legisflow/contexts/legislative-advocacy/review-service/domain/entities"
	domainerrors "legisflow/contexts/legislative-advocacy/review-service/domain/errors"
	"legisflow/contexts/legislative-advocacy/review-service/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
	dedupConsumer         = "review-service"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

func (r *Repository) Now() time.Time {
	return time.Now().UTC()
}

func (r *Repository) NewID(context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (r *Repository) CreateArtifact(ctx context.Context, item entities.ArtifactReview, event ports.EventEnvelope) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := artifactReviewModelFromEntity(item)
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %s", domainerrors.ErrArtifactExists, item.ArtifactID)
			}
			return err
		}
		return insertOutboxEnvelopeTx(tx, event)
	})
	return r.storeError("create_artifact", err)
}

func (r *Repository) GetArtifact(ctx context.Context, artifactID string) (entities.ArtifactReview, error) {
	var row artifactReviewModel
	err := r.db.WithContext(ctx).
		Where("artifact_id = ?", strings.TrimSpace(artifactID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.ArtifactReview{}, domainerrors.ErrArtifactNotFound
		}
		return entities.ArtifactReview{}, r.storeError("get_artifact", err)
	}
	return row.toEntity(), nil
}

func (r *Repository) SaveReview(
	ctx context.Context,
	item entities.ArtifactReview,
	expectedVersion int64,
	event ports.EventEnvelope,
) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&artifactReviewModel{}).
			Where("artifact_id = ? AND version = ?", item.ArtifactID, expectedVersion).
			Updates(map[string]any{
				"review_status": string(item.ReviewStatus),
				"reviewed_by":   item.ReviewedBy,
				"reviewed_at":   normalizeOptionalTime(item.ReviewedAt),
				"review_notes":  item.ReviewNotes,
				"version":       item.Version,
				"updated_at":    item.UpdatedAt.UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&artifactReviewModel{}).Where("artifact_id = ?", item.ArtifactID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return domainerrors.ErrArtifactNotFound
			}
			return fmt.Errorf("%w: artifact %s was modified concurrently", domainerrors.ErrConflict, item.ArtifactID)
		}
		return insertOutboxEnvelopeTx(tx, event)
	})
	return r.storeError("save_review", err)
}

func (r *Repository) ListArtifacts(ctx context.Context, filter ports.ArtifactFilter) ([]entities.ArtifactReview, error) {
	query := r.db.WithContext(ctx).Model(&artifactReviewModel{})
	if documentID := strings.TrimSpace(filter.DocumentID); documentID != "" {
		query = query.Where("document_id = ?", documentID)
	}
	var rows []artifactReviewModel
	if err := query.Order("created_at ASC").Order("artifact_id ASC").Find(&rows).Error; err != nil {
		return nil, r.storeError("list_artifacts", err)
	}
	items := make([]entities.ArtifactReview, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
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

func (r *Repository) ReserveEvent(ctx context.Context, eventID string, payloadHash string, expiresAt time.Time) (bool, error) {
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

func (r *Repository) storeError(operation string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{
		domainerrors.ErrValidation,
		domainerrors.ErrNotFound,
		domainerrors.ErrConflict,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	r.logger.Error("review store operation failed",
		"event", "review_store_failed",
		"module", "legislative-advocacy/review-service",
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
