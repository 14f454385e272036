package requests

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mbd888/paylink/internal/pagination"
)

// PostgresStore persists payment requests in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL-backed request store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (p *PostgresStore) Create(ctx context.Context, request *Request) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO payment_requests (
			id, address, chain_id, token_address, amount,
			status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8
		)`,
		request.ID, request.Address, request.ChainID, request.TokenAddress, request.Amount,
		string(request.Status), request.CreatedAt, request.UpdatedAt,
	)
	return err
}

func (p *PostgresStore) Get(ctx context.Context, id string) (*Request, error) {
	r, err := scanRequest(p.db.QueryRowContext(ctx, `
		SELECT id, address, chain_id, token_address, amount,
		       status, created_at, updated_at
		FROM payment_requests WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

// MarkClaimed flips status PENDING → CLAIMED in a single conditional
// UPDATE, which makes settlement recording race-safe without explicit
// row locking.
func (p *PostgresStore) MarkClaimed(ctx context.Context, id string) error {
	result, err := p.db.ExecContext(ctx, `
		UPDATE payment_requests SET
			status = 'CLAIMED', updated_at = NOW()
		WHERE id = $1 AND status = 'PENDING'`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		// Missing row and lost race look the same to the UPDATE.
		if _, err := p.Get(ctx, id); errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return ErrAlreadyClaimed
	}
	return nil
}

// List uses keyset pagination on (created_at, id) rather than OFFSET,
// so page boundaries stay stable while new requests arrive.
func (p *PostgresStore) List(ctx context.Context, limit int, cursor *pagination.Cursor) ([]*Request, error) {
	query := `
		SELECT id, address, chain_id, token_address, amount,
		       status, created_at, updated_at
		FROM payment_requests`
	args := []interface{}{limit}
	if cursor != nil {
		query += `
		WHERE (created_at, id) < ($2, $3)`
		args = append(args, cursor.CreatedAt, cursor.ID)
	}
	query += `
		ORDER BY created_at DESC, id DESC
		LIMIT $1`

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var result []*Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// --- scanners ---

type requestScanner interface {
	Scan(dest ...interface{}) error
}

func scanRequest(sc requestScanner) (*Request, error) {
	r := &Request{}
	var status string

	err := sc.Scan(
		&r.ID, &r.Address, &r.ChainID, &r.TokenAddress, &r.Amount,
		&status, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Status = Status(status)
	return r, nil
}

// Compile-time assertion.
var _ Store = (*PostgresStore)(nil)
