package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/taskly/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// owners are emails; the key is case-insensitive like the users table.
func normOwner(owner string) string {
	return strings.ToLower(strings.TrimSpace(owner))
}

func (r *SQLiteRepository) Get(ctx context.Context, key Key) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM records WHERE purpose = ? AND owner = ?`,
		string(key.Purpose), normOwner(key.Owner)).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record %s/%s: %w", key.Purpose, key.Owner, err)
	}
	return value, nil
}

// Put upserts the value stored under key.
func (r *SQLiteRepository) Put(ctx context.Context, key Key, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	query := `INSERT INTO records (purpose, owner, value, updated_at)
			VALUES (?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(purpose, owner) DO UPDATE SET value = excluded.value,
				updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query, string(key.Purpose), normOwner(key.Owner), value)
	if err != nil {
		return fmt.Errorf("failed to put record %s/%s: %w", key.Purpose, key.Owner, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, key Key) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM records WHERE purpose = ? AND owner = ?`,
		string(key.Purpose), normOwner(key.Owner))
	if err != nil {
		return fmt.Errorf("failed to delete record %s/%s: %w", key.Purpose, key.Owner, err)
	}
	return nil
}

func (r *SQLiteRepository) Purposes(ctx context.Context, owner string) ([]Purpose, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT purpose FROM records WHERE owner = ? ORDER BY purpose`, normOwner(owner))
	if err != nil {
		return nil, fmt.Errorf("failed to select records: %w", err)
	}
	defer rows.Close()

	result := []Purpose{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		result = append(result, Purpose(p))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
