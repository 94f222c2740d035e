package pos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Saga steps. A checkout saga advances started -> customer_created (when an
// inline customer was saved) -> transaction_created.
type SagaStep string

const (
	StepStarted            SagaStep = "started"
	StepCustomerCreated    SagaStep = "customer_created"
	StepTransactionCreated SagaStep = "transaction_created"
)

// ErrSagaOpen means the session already has an unfinished checkout journaled.
var ErrSagaOpen = errors.New("an unfinished checkout is already journaled for this session")

// SaleSaga journals which steps of a multi-call checkout have succeeded so a
// retry resumes instead of re-issuing completed upstream calls.
type SaleSaga struct {
	ID            uuid.UUID
	SessionID     string
	TransactionNo string
	Step          SagaStep
	CustomerID    *int64
	TransactionID *int64
	LastError     *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SagaRepository persists checkout sagas.
type SagaRepository interface {
	Create(ctx context.Context, saga *SaleSaga) error
	SetCustomer(ctx context.Context, id uuid.UUID, customerID int64) error
	SetTransaction(ctx context.Context, id uuid.UUID, transactionID int64, transactionNo string) error
	SetError(ctx context.Context, id uuid.UUID, cause string) error
	Close(ctx context.Context, id uuid.UUID) error
	OpenBySession(ctx context.Context, sessionID string) (*SaleSaga, error)
}

// PGSagaRepository is the pgx-backed SagaRepository.
type PGSagaRepository struct {
	pool *pgxpool.Pool
}

// NewSagaRepository constructs a PGSagaRepository.
func NewSagaRepository(pool *pgxpool.Pool) *PGSagaRepository {
	return &PGSagaRepository{pool: pool}
}

const sagaColumns = `id, session_id, transaction_no, step, customer_id, transaction_id, last_error, open, created_at, updated_at`

func scanSaga(row pgx.Row) (*SaleSaga, error) {
	var (
		saga SaleSaga
		open bool
	)
	err := row.Scan(&saga.ID, &saga.SessionID, &saga.TransactionNo, &saga.Step,
		&saga.CustomerID, &saga.TransactionID, &saga.LastError, &open,
		&saga.CreatedAt, &saga.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &saga, nil
}

// Create journals a fresh saga. At most one open saga may exist per session;
// a second insert surfaces ErrSagaOpen so the caller resumes the first.
func (r *PGSagaRepository) Create(ctx context.Context, saga *SaleSaga) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO pos_sale_sagas (id, session_id, transaction_no, step, open, created_at, updated_at)
		VALUES ($1, $2, $3, $4, TRUE, now(), now())`,
		saga.ID, saga.SessionID, saga.TransactionNo, saga.Step)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrSagaOpen
		}
		return fmt.Errorf("pos/saga: create: %w", err)
	}
	return nil
}

// SetCustomer records the create-customer step.
func (r *PGSagaRepository) SetCustomer(ctx context.Context, id uuid.UUID, customerID int64) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE pos_sale_sagas
		SET customer_id = $2, step = $3, updated_at = now()
		WHERE id = $1`,
		id, customerID, StepCustomerCreated)
	if err != nil {
		return fmt.Errorf("pos/saga: set customer: %w", err)
	}
	return nil
}

// SetTransaction records the create-transaction step and closes the saga.
func (r *PGSagaRepository) SetTransaction(ctx context.Context, id uuid.UUID, transactionID int64, transactionNo string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE pos_sale_sagas
		SET transaction_id = $2, transaction_no = $3, step = $4, open = FALSE, updated_at = now()
		WHERE id = $1`,
		id, transactionID, transactionNo, StepTransactionCreated)
	if err != nil {
		return fmt.Errorf("pos/saga: set transaction: %w", err)
	}
	return nil
}

// SetError records the failure cause while keeping the saga open for resume.
func (r *PGSagaRepository) SetError(ctx context.Context, id uuid.UUID, cause string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE pos_sale_sagas
		SET last_error = $2, updated_at = now()
		WHERE id = $1`,
		id, cause)
	if err != nil {
		return fmt.Errorf("pos/saga: set error: %w", err)
	}
	return nil
}

// Close abandons an open saga without completing it.
func (r *PGSagaRepository) Close(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE pos_sale_sagas
		SET open = FALSE, updated_at = now()
		WHERE id = $1`,
		id)
	if err != nil {
		return fmt.Errorf("pos/saga: close: %w", err)
	}
	return nil
}

// OpenBySession returns the session's open saga, nil when there is none.
func (r *PGSagaRepository) OpenBySession(ctx context.Context, sessionID string) (*SaleSaga, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+sagaColumns+`
		FROM pos_sale_sagas
		WHERE session_id = $1 AND open
		ORDER BY created_at DESC
		LIMIT 1`,
		sessionID)
	saga, err := scanSaga(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("pos/saga: open by session: %w", err)
	}
	return saga, nil
}
