package encounter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

var ErrRecordNotFound = errors.New("triage record not found")

// Repository archives finished triages.
type Repository interface {
	GetBySession(ctx context.Context, sessionID string) (*Record, error)
	Save(ctx context.Context, r *Record) error
}

type postgresRepo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

func (p *postgresRepo) GetBySession(ctx context.Context, sessionID string) (*Record, error) {
	query := `SELECT id, session_id, patient_ref, result, abstention, recommendation, report_key, created_at, updated_at
		FROM triage_results WHERE session_id = $1`

	row := p.db.QueryRowContext(ctx, query, sessionID)

	var r Record
	var resultJSON, abstentionJSON []byte
	err := row.Scan(
		&r.ID,
		&r.SessionID,
		&r.PatientRef,
		&resultJSON,
		&abstentionJSON,
		&r.Recommendation,
		&r.ReportKey,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(resultJSON, &r.Result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}
	if len(abstentionJSON) > 0 {
		if err := json.Unmarshal(abstentionJSON, &r.Abstention); err != nil {
			return nil, fmt.Errorf("failed to unmarshal abstention: %w", err)
		}
	}
	return &r, nil
}

func (p *postgresRepo) Save(ctx context.Context, r *Record) error {
	resultJSON, err := json.Marshal(r.Result)
	if err != nil {
		return err
	}
	abstentionJSON, err := json.Marshal(r.Abstention)
	if err != nil {
		return err
	}

	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	r.UpdatedAt = time.Now()

	query := `
		INSERT INTO triage_results (id, session_id, patient_ref, classification, score, confidence,
			emergency, abstain, result, abstention, recommendation, report_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (session_id) DO UPDATE SET
			recommendation = $11,
			report_key = $12,
			updated_at = $14
	`
	_, err = p.db.ExecContext(ctx, query,
		r.ID, r.SessionID, r.PatientRef, string(r.Result.Classification), r.Result.Score, r.Result.Confidence,
		r.Result.Emergency, r.Abstention.Abstain, resultJSON, abstentionJSON, r.Recommendation, r.ReportKey,
		r.CreatedAt, r.UpdatedAt)
	return err
}

type memoryRepo struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryRepository is used when no database is configured.
func NewMemoryRepository() Repository {
	return &memoryRepo{records: make(map[string]Record)}
}

func (m *memoryRepo) GetBySession(_ context.Context, sessionID string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[sessionID]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return &r, nil
}

func (m *memoryRepo) Save(_ context.Context, r *Record) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	r.UpdatedAt = time.Now()
	m.mu.Lock()
	m.records[r.SessionID] = *r
	m.mu.Unlock()
	return nil
}
