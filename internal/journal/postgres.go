package journal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/five82/queuecall/internal/turn"
	"github.com/five82/queuecall/internal/vqueue"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS turn_registrations (
	registration_id      UUID PRIMARY KEY,
	turn_code            TEXT NOT NULL,
	turn_number          INTEGER NOT NULL,
	first_name           TEXT NOT NULL,
	last_name            TEXT NOT NULL,
	email                TEXT NOT NULL,
	phone                TEXT NOT NULL,
	identifier           TEXT NOT NULL DEFAULT '',
	video_call_url       TEXT NOT NULL,
	average_waiting_time DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at           TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS turn_transitions (
	transition_id UUID PRIMARY KEY,
	turn_code     TEXT NOT NULL,
	from_phase    TEXT NOT NULL,
	to_phase      TEXT NOT NULL,
	status        TEXT NOT NULL,
	recorded_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS turn_transitions_code_idx ON turn_transitions (turn_code, recorded_at);
`

// Postgres stores the journal in two tables, turn_registrations and turn_transitions.
type Postgres struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// Open connects to dsn, verifies the connection and creates the tables if needed.
func Open(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("journal connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("journal ping: %w", err)
	}
	j := NewPostgres(pool)
	if err := j.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return j, nil
}

// NewPostgres wraps an existing pool. Close closes the pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool, now: func() time.Time { return time.Now().UTC() }}
}

// EnsureSchema creates the journal tables when they do not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("journal schema: %w", err)
	}
	return nil
}

func (p *Postgres) RecordRegistration(ctx context.Context, reg vqueue.Registration, snap vqueue.TurnSnapshot) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO turn_registrations (
			registration_id, turn_code, turn_number, first_name, last_name, email, phone,
			identifier, video_call_url, average_waiting_time, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		uuid.NewString(), snap.Code, snap.TurnNumber, reg.FirstName, reg.LastName, reg.Email, reg.Phone,
		reg.Identifier, snap.VideoCallURL, snap.AverageWaitingTime, p.now(),
	)
	if err != nil {
		return fmt.Errorf("record registration %s: %w", snap.Code, err)
	}
	return nil
}

func (p *Postgres) RecordTransition(ctx context.Context, code string, from, to turn.Phase, status string) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO turn_transitions (transition_id, turn_code, from_phase, to_phase, status, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.NewString(), code, from.String(), to.String(), status, p.now(),
	)
	if err != nil {
		return fmt.Errorf("record transition %s: %w", code, err)
	}
	return nil
}

// Transitions returns the recorded transitions for code, oldest first.
func (p *Postgres) Transitions(ctx context.Context, code string) ([]Transition, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT transition_id::text, turn_code, from_phase, to_phase, status, recorded_at
		FROM turn_transitions
		WHERE turn_code = $1
		ORDER BY recorded_at, transition_id`, strings.TrimSpace(code))
	if err != nil {
		return nil, fmt.Errorf("query transitions %s: %w", code, err)
	}
	defer rows.Close()

	var out []Transition
	for rows.Next() {
		var t Transition
		if err := rows.Scan(&t.ID, &t.Code, &t.From, &t.To, &t.Status, &t.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transitions: %w", err)
	}
	return out, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}
