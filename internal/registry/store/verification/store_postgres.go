package verification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"attestry/internal/registry/models"
	"attestry/pkg/platform/sentinel"
)

// PostgresStore persists the attestation relation with a composite primary
// key. The database enforces pair uniqueness as a backstop; the service is
// still the layer that turns a duplicate into AlreadyVerified.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the verifications table when it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS verifications (
			validator_id TEXT NOT NULL,
			owner_id     TEXT NOT NULL,
			verified     BOOLEAN NOT NULL DEFAULT TRUE,
			PRIMARY KEY (validator_id, owner_id)
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure verifications schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Exists(ctx context.Context, validatorID, ownerID models.AccountID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM verifications WHERE validator_id = $1 AND owner_id = $2
		)
	`, string(validatorID), string(ownerID)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("verification exists: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) Insert(ctx context.Context, validatorID, ownerID models.AccountID) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO verifications (validator_id, owner_id, verified)
		VALUES ($1, $2, TRUE)
	`, string(validatorID), string(ownerID))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("verification insert: %w", err)
	}
	return nil
}
