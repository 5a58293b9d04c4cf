// Package store provides the optional SQLite-backed event recorder. The
// simulation itself is in-memory and ephemeral; the recorder is a
// write-only diagnostics sink for post-game inspection.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"airlock/internal/domain"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id            TEXT NOT NULL,
	simulation_id TEXT NOT NULL,
	seq           INTEGER NOT NULL,
	action        TEXT NOT NULL,
	actor         TEXT NOT NULL DEFAULT '',
	location      TEXT NOT NULL DEFAULT '',
	visibility    TEXT NOT NULL,
	timestamp     REAL NOT NULL,
	payload_json  TEXT NOT NULL DEFAULT '{}',
	UNIQUE(simulation_id, seq)
);
CREATE INDEX IF NOT EXISTS idx_events_sim_seq ON events(simulation_id, seq);
`

// Recorder owns the database handle. One recorder serves every
// simulation in the process; per-simulation sinks are created with Sink.
type Recorder struct {
	db *sql.DB
}

// Open creates (or reopens) the recorder database at path and applies
// the schema.
func Open(path string) (*Recorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open recorder db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply recorder schema: %w", err)
	}
	return &Recorder{db: db}, nil
}

func (r *Recorder) Close() error {
	return r.db.Close()
}

// Sink returns an append-only sink bound to one simulation. Sequence
// numbers restart at 1 per simulation.
func (r *Recorder) Sink(simulationID uuid.UUID) domain.EventSink {
	return &simSink{recorder: r, simulationID: simulationID.String()}
}

type simSink struct {
	recorder     *Recorder
	simulationID string
	seq          atomic.Int64
}

func (s *simSink) Record(ev *domain.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	const q = `INSERT INTO events (id, simulation_id, seq, action, actor, location, visibility, timestamp, payload_json)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.recorder.db.ExecContext(context.Background(), q,
		ev.ID.String(),
		s.simulationID,
		s.seq.Add(1),
		string(ev.Action),
		ev.Actor,
		ev.Location,
		string(ev.Visibility),
		ev.Timestamp,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("record event: %w", err)
	}
	return nil
}

// RecordedEvent is one recorder row, with the full event preserved in
// Payload.
type RecordedEvent struct {
	Seq     int64
	Payload domain.Event
}

// ListBySimulation returns a simulation's recorded events in dispatch
// order.
func (r *Recorder) ListBySimulation(ctx context.Context, simulationID uuid.UUID) ([]RecordedEvent, error) {
	const q = `SELECT seq, payload_json FROM events WHERE simulation_id = ? ORDER BY seq ASC`
	rows, err := r.db.QueryContext(ctx, q, simulationID.String())
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []RecordedEvent
	for rows.Next() {
		var rec RecordedEvent
		var payload string
		if err := rows.Scan(&rec.Seq, &payload); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &rec.Payload); err != nil {
			return nil, fmt.Errorf("decode event payload: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
