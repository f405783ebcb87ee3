package blocklist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"marketgate/internal/admission/models"
	"marketgate/pkg/requestcontext"
)

// PostgresStore persists the blocklist so every instance shares it.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Add(ctx context.Context, entry *models.BlockedAddress) error {
	if entry == nil {
		return fmt.Errorf("blocked address is required")
	}
	query := `
		INSERT INTO blocked_addresses (address, reason, created_by, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (address) DO UPDATE SET
			reason = EXCLUDED.reason,
			created_by = EXCLUDED.created_by,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at
	`
	_, err := s.db.ExecContext(ctx, query,
		entry.Address,
		entry.Reason,
		entry.CreatedBy,
		entry.CreatedAt,
		entry.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("add blocked address: %w", err)
	}
	return nil
}

func (s *PostgresStore) Remove(ctx context.Context, address string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM blocked_addresses WHERE address = $1`, address)
	if err != nil {
		return false, fmt.Errorf("remove blocked address: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove blocked address: %w", err)
	}
	return n > 0, nil
}

func (s *PostgresStore) IsBlocked(ctx context.Context, address string) (bool, error) {
	if address == "" {
		return false, nil
	}
	query := `
		SELECT 1
		FROM blocked_addresses
		WHERE address = $1
		  AND (expires_at IS NULL OR expires_at > $2)
		LIMIT 1
	`
	var exists int
	err := s.db.QueryRowContext(ctx, query, address, requestcontext.Now(ctx)).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check blocklist: %w", err)
	}
	return true, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.BlockedAddress, error) {
	query := `
		SELECT address, reason, created_by, created_at, expires_at
		FROM blocked_addresses
		WHERE expires_at IS NULL OR expires_at > $1
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, requestcontext.Now(ctx))
	if err != nil {
		return nil, fmt.Errorf("list blocked addresses: %w", err)
	}
	defer rows.Close()

	entries := []*models.BlockedAddress{}
	for rows.Next() {
		var entry models.BlockedAddress
		var expiresAt sql.NullTime
		if err := rows.Scan(&entry.Address, &entry.Reason, &entry.CreatedBy, &entry.CreatedAt, &expiresAt); err != nil {
			return nil, fmt.Errorf("scan blocked address: %w", err)
		}
		if expiresAt.Valid {
			entry.ExpiresAt = &expiresAt.Time
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blocked addresses: %w", err)
	}
	return entries, nil
}

// PurgeExpired deletes entries whose expiry has passed.
func (s *PostgresStore) PurgeExpired(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM blocked_addresses WHERE expires_at IS NOT NULL AND expires_at <= $1`,
		requestcontext.Now(ctx))
	if err != nil {
		return 0, fmt.Errorf("purge blocked addresses: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge blocked addresses: %w", err)
	}
	return int(n), nil
}
