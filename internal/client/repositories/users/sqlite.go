package users

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/taskly/internal/client/models"
	"github.com/dmitrijs2005/taskly/internal/common"
	"github.com/dmitrijs2005/taskly/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, u LocalUser) error {
	profile, err := json.Marshal(u.Profile)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO users (email, profile, salt, verifier) VALUES (?, ?, ?, ?)`,
		common.NormalizeEmail(u.Profile.Email), profile, u.Salt, u.Verifier)
	if err != nil {
		if isUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, u LocalUser) error {
	profile, err := json.Marshal(u.Profile)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (email, profile, salt, verifier) VALUES (?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET profile = excluded.profile,
			salt = excluded.salt,
			verifier = excluded.verifier
	`, common.NormalizeEmail(u.Profile.Email), profile, u.Salt, u.Verifier)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) FindByEmail(ctx context.Context, email string) (*LocalUser, error) {
	var (
		profile []byte
		u       LocalUser
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT profile, salt, verifier FROM users WHERE email = ?`,
		common.NormalizeEmail(email)).Scan(&profile, &u.Salt, &u.Verifier)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select user: %w", err)
	}
	if err := json.Unmarshal(profile, &u.Profile); err != nil {
		return nil, fmt.Errorf("corrupt profile for %s: %w", email, err)
	}
	return &u, nil
}

func (r *SQLiteRepository) UpdateProfile(ctx context.Context, p models.User) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE users SET profile = ? WHERE email = ?`,
		data, common.NormalizeEmail(p.Email))
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return expectOneRow(res)
}

func (r *SQLiteRepository) UpdateVerifier(ctx context.Context, email string, salt, verifier []byte) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET salt = ?, verifier = ? WHERE email = ?`,
		salt, verifier, common.NormalizeEmail(email))
	if err != nil {
		return fmt.Errorf("failed to update verifier: %w", err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// modernc reports constraint failures only through the message text.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "PRIMARY KEY")
}
