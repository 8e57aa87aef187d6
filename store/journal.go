package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Journal is an append-only audit trail of applied operations. It sits
// downstream of the in-memory registries: writes are best-effort and a
// journal failure never rolls back the operation it records.
type Journal struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

// OperationRecord is one journaled mutation.
type OperationRecord struct {
	ID         uuid.UUID       `json:"id"`
	EventID    uint64          `json:"event_id"`
	Wallet     string          `json:"wallet,omitempty"`
	Op         string          `json:"op"`
	Detail     json.RawMessage `json:"detail,omitempty"`
	RecordedAt time.Time       `json:"recorded_at"`
}

func NewJournal(db *pgxpool.Pool, log *zap.Logger) *Journal {
	return &Journal{db: db, log: log}
}

// EnsureSchema creates the journal table if it does not exist.
func (j *Journal) EnsureSchema(ctx context.Context) error {
	_, err := j.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS operation_log (
			id UUID PRIMARY KEY,
			event_id BIGINT NOT NULL,
			wallet TEXT,
			op TEXT NOT NULL,
			detail JSONB,
			recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS operation_log_event_idx ON operation_log (event_id, recorded_at DESC);
	`)
	return err
}

// Record appends one applied operation. detail is marshaled to JSON; a nil
// detail journals as NULL.
func (j *Journal) Record(ctx context.Context, eventID uint64, wallet, op string, detail interface{}) {
	if j == nil || j.db == nil {
		return
	}
	var payload []byte
	if detail != nil {
		var err error
		payload, err = json.Marshal(detail)
		if err != nil {
			j.log.Warn("journal detail marshal failed", zap.String("op", op), zap.Error(err))
			payload = nil
		}
	}

	_, err := j.db.Exec(ctx,
		`INSERT INTO operation_log (id, event_id, wallet, op, detail) VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), int64(eventID), wallet, op, payload,
	)
	if err != nil {
		j.log.Warn("journal write failed",
			zap.Uint64("event_id", eventID),
			zap.String("op", op),
			zap.Error(err),
		)
	}
}

// History returns the newest journal rows for an event.
func (j *Journal) History(ctx context.Context, eventID uint64, limit int) ([]OperationRecord, error) {
	if j == nil || j.db == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := j.db.Query(ctx, `
		SELECT id, event_id, wallet, op, detail, recorded_at
		FROM operation_log
		WHERE event_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2
	`, int64(eventID), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []OperationRecord
	for rows.Next() {
		var rec OperationRecord
		var evID int64
		var wallet *string
		var detail []byte
		if err := rows.Scan(&rec.ID, &evID, &wallet, &rec.Op, &detail, &rec.RecordedAt); err != nil {
			return nil, err
		}
		rec.EventID = uint64(evID)
		if wallet != nil {
			rec.Wallet = *wallet
		}
		rec.Detail = detail
		records = append(records, rec)
	}
	return records, rows.Err()
}
