package store

import (
	"context"
	"time"
)

// AuditStore records every balance-affecting operation pair inside the same
// transaction as the writes themselves, giving a replay/repair trail if a
// balance ever disagrees with its transactions.
type AuditStore struct {
	db DB
}

type AuditEntry struct {
	ID          string    `db:"id" json:"id"`
	ActorUserID string    `db:"actor_user_id" json:"actor_user_id"`
	Action      string    `db:"action" json:"action"`
	EntityType  string    `db:"entity_type" json:"entity_type"`
	EntityID    string    `db:"entity_id" json:"entity_id"`
	Data        string    `db:"data" json:"data"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

func NewAuditStore(db DB) *AuditStore {
	return &AuditStore{db: db}
}

func (s *AuditStore) Log(ctx context.Context, tx Execer, actorID, action, entityType, entityID, data string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO audit_logs (id, actor_user_id, action, entity_type, entity_id, data)
		VALUES (gen_random_uuid()::text, $1, $2, $3, $4, $5)
	`, actorID, action, entityType, entityID, data)
	return err
}

func (s *AuditStore) ListByActor(ctx context.Context, actorID string, limit, offset int) ([]AuditEntry, error) {
	var rows []AuditEntry
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, actor_user_id, action, entity_type, entity_id, data, created_at
		FROM audit_logs
		WHERE actor_user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, actorID, limit, offset)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
