package identity

import (
	"context"
	"database/sql"
	"fmt"

	"attestry/internal/registry/models"
	"attestry/pkg/platform/sentinel"
)

// PostgresStore persists identity records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the identities table when it does not exist yet.
// Integration tests and single-node deployments call this at startup.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS identities (
			account_id    TEXT PRIMARY KEY,
			name          BYTEA NOT NULL,
			email         BYTEA NOT NULL,
			document_hash BYTEA NOT NULL,
			revoked       BOOLEAN NOT NULL DEFAULT FALSE
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure identities schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, accountID models.AccountID) (models.Identity, error) {
	var identity models.Identity
	err := s.db.QueryRowContext(ctx, `
		SELECT name, email, document_hash, revoked
		FROM identities
		WHERE account_id = $1
	`, string(accountID)).Scan(&identity.Name, &identity.Email, &identity.DocumentHash, &identity.Revoked)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Identity{}, sentinel.ErrNotFound
		}
		return models.Identity{}, fmt.Errorf("find identity: %w", err)
	}
	return identity, nil
}

func (s *PostgresStore) Save(ctx context.Context, accountID models.AccountID, identity models.Identity) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO identities (account_id, name, email, document_hash, revoked)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (account_id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			document_hash = EXCLUDED.document_hash,
			revoked = EXCLUDED.revoked
	`, string(accountID), identity.Name, identity.Email, identity.DocumentHash, identity.Revoked)
	if err != nil {
		return fmt.Errorf("save identity: %w", err)
	}
	return nil
}

// Mutate applies fn to the stored record inside a transaction, holding a row
// lock so the read-modify-write is atomic. Missing records are a silent no-op.
func (s *PostgresStore) Mutate(ctx context.Context, accountID models.AccountID, fn func(*models.Identity)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin mutate: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var identity models.Identity
	err = tx.QueryRowContext(ctx, `
		SELECT name, email, document_hash, revoked
		FROM identities
		WHERE account_id = $1
		FOR UPDATE
	`, string(accountID)).Scan(&identity.Name, &identity.Email, &identity.DocumentHash, &identity.Revoked)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return fmt.Errorf("mutate identity: %w", err)
	}

	fn(&identity)

	_, err = tx.ExecContext(ctx, `
		UPDATE identities
		SET name = $2, email = $3, document_hash = $4, revoked = $5
		WHERE account_id = $1
	`, string(accountID), identity.Name, identity.Email, identity.DocumentHash, identity.Revoked)
	if err != nil {
		return fmt.Errorf("mutate identity: %w", err)
	}
	return tx.Commit()
}
