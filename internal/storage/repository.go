package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"caseguard-backend/internal/attachment"
)

type Repository struct {
	Store *Store
}

func NewRepository(store *Store) *Repository {
	return &Repository{Store: store}
}

// CreateAttachments stores the batch in one transaction and returns the new
// attachment ids in request order.
func (r *Repository) CreateAttachments(ctx context.Context, caseID string, requests []attachment.Request) ([]string, error) {
	tx, err := r.Store.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]string, 0, len(requests))
	for _, req := range requests {
		payload, err := json.Marshal(req)
		if err != nil {
			return nil, err
		}
		id := uuid.NewString()
		var typeID *string
		if req.ExternalReferenceAttachmentTypeID != "" {
			typeID = &req.ExternalReferenceAttachmentTypeID
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO case_attachments (id, case_id, attachment_type, external_reference_type_id, owner, payload, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,now())`,
			id, caseID, string(req.Type), typeID, req.Owner, payload,
		); err != nil {
			return nil, fmt.Errorf("insert attachment: %w", err)
		}
		if err := insertAlertRefs(ctx, tx, id, caseID, req); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return ids, nil
}

func insertAlertRefs(ctx context.Context, tx pgx.Tx, attachmentID, caseID string, req attachment.Request) error {
	for i, alertID := range req.AlertIDs() {
		index := ""
		if i < len(req.Index) {
			index = req.Index[i]
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO case_attachment_alerts (attachment_id, case_id, alert_id, alert_index)
			VALUES ($1,$2,$3,$4)`,
			attachmentID, caseID, alertID, index,
		); err != nil {
			return fmt.Errorf("insert alert reference: %w", err)
		}
	}
	return nil
}

func (r *Repository) ListAttachments(ctx context.Context, caseID string) ([]AttachmentRecord, error) {
	rows, err := r.Store.Pool.Query(ctx, `
		SELECT id, case_id, attachment_type, external_reference_type_id, owner, payload, created_at
		FROM case_attachments WHERE case_id=$1 ORDER BY created_at ASC, id ASC`, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	results := []AttachmentRecord{}
	for rows.Next() {
		rec, err := scanAttachment(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, rec)
	}
	return results, rows.Err()
}

// GetAttachment loads one attachment of a case. ErrNotFound is returned only
// when no such row exists.
func (r *Repository) GetAttachment(ctx context.Context, caseID, id string) (AttachmentRecord, error) {
	row := r.Store.Pool.QueryRow(ctx, `
		SELECT id, case_id, attachment_type, external_reference_type_id, owner, payload, created_at
		FROM case_attachments WHERE id=$1 AND case_id=$2`, id, caseID)
	rec, err := scanAttachment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return AttachmentRecord{}, ErrNotFound
	}
	if err != nil {
		return AttachmentRecord{}, fmt.Errorf("get attachment %s: %w", id, err)
	}
	return rec, nil
}

func scanAttachment(row pgx.Row) (AttachmentRecord, error) {
	var rec AttachmentRecord
	var payload []byte
	if err := row.Scan(&rec.ID, &rec.CaseID, &rec.Type, &rec.ExternalReferenceTypeID, &rec.Owner, &payload, &rec.CreatedAt); err != nil {
		return AttachmentRecord{}, err
	}
	rec.Payload = payload
	return rec, nil
}

// CountOfItemsOfKind counts distinct alert ids or file references already
// attached to the case.
func (r *Repository) CountOfItemsOfKind(ctx context.Context, caseID string, kind attachment.Kind) (int, error) {
	var count int
	var err error
	switch kind {
	case attachment.KindAlert:
		err = r.Store.Pool.QueryRow(ctx, `
			SELECT COUNT(DISTINCT alert_id) FROM case_attachment_alerts WHERE case_id=$1`, caseID).Scan(&count)
	case attachment.KindFile:
		err = r.Store.Pool.QueryRow(ctx, `
			SELECT COUNT(*) FROM case_attachments
			WHERE case_id=$1 AND attachment_type=$2 AND external_reference_type_id=$3`,
			caseID, string(attachment.TypeExternalReference), attachment.FileAttachmentTypeID).Scan(&count)
	default:
		return 0, fmt.Errorf("unsupported attachment kind %q", kind)
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}
