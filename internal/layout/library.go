package layout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nerrad567/hwlog/internal/sensorlog"
)

// Info describes a named layout without its columns.
type Info struct {
	Name      string
	Columns   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Library stores named layouts in SQLite.
//
// It expects the layouts and layout_columns tables created by the embedded
// migrations. Column order is kept through an explicit position column.
type Library struct {
	db *sql.DB
}

// NewLibrary creates a Library on an open SQLite connection.
//
// Parameters:
//   - db: Migrated hwlog database
//
// Returns:
//   - *Library: Library ready for use
func NewLibrary(db *sql.DB) *Library {
	return &Library{db: db}
}

// Save stores sel under name, replacing any previous column list for that
// name in a single transaction.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - name: Layout name (non-empty, trimmed)
//   - sel: Ordered column names
//
// Returns:
//   - error: ErrInvalidName for a bad name or column, ErrResource on database failure
func (l *Library) Save(ctx context.Context, name string, sel sensorlog.Selection) error {
	name, err := normaliseName(name)
	if err != nil {
		return err
	}
	for _, column := range sel {
		if err := validateColumnName(column); err != nil {
			return err
		}
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: starting transaction: %w", ErrResource, err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO layouts (name, created_at, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET updated_at = excluded.updated_at`,
		name, now, now,
	); err != nil {
		return fmt.Errorf("%w: upserting layout %s: %w", ErrResource, name, err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM layout_columns WHERE layout_name = ?", name,
	); err != nil {
		return fmt.Errorf("%w: clearing layout %s: %w", ErrResource, name, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO layout_columns (layout_name, position, column_name) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("%w: preparing insert: %w", ErrResource, err)
	}
	defer stmt.Close()

	for i, column := range sel {
		if _, err := stmt.ExecContext(ctx, name, i, column); err != nil {
			return fmt.Errorf("%w: inserting column %q: %w", ErrResource, column, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing layout %s: %w", ErrResource, name, err)
	}
	return nil
}

// Load returns the columns of the named layout in stored order.
// Returns ErrLayoutNotFound (wrapped in ErrResource) if name is unknown.
func (l *Library) Load(ctx context.Context, name string) (sensorlog.Selection, error) {
	name, err := normaliseName(name)
	if err != nil {
		return nil, err
	}

	var exists int
	err = l.db.QueryRowContext(ctx, "SELECT 1 FROM layouts WHERE name = ?", name).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return sensorlog.Selection{}, fmt.Errorf("%w: %w: %s", ErrResource, ErrLayoutNotFound, name)
	}
	if err != nil {
		return sensorlog.Selection{}, fmt.Errorf("%w: querying layout %s: %w", ErrResource, name, err)
	}

	rows, err := l.db.QueryContext(ctx,
		`SELECT column_name FROM layout_columns
		 WHERE layout_name = ?
		 ORDER BY position`,
		name,
	)
	if err != nil {
		return sensorlog.Selection{}, fmt.Errorf("%w: querying columns of %s: %w", ErrResource, name, err)
	}
	defer rows.Close()

	sel := sensorlog.Selection{}
	for rows.Next() {
		var column string
		if err := rows.Scan(&column); err != nil {
			return sensorlog.Selection{}, fmt.Errorf("%w: scanning column: %w", ErrResource, err)
		}
		sel = append(sel, column)
	}
	if err := rows.Err(); err != nil {
		return sensorlog.Selection{}, fmt.Errorf("%w: iterating columns: %w", ErrResource, err)
	}
	return sel, nil
}

// List returns every stored layout ordered by name.
func (l *Library) List(ctx context.Context) ([]Info, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT l.name, l.created_at, l.updated_at, COUNT(c.position)
		 FROM layouts l
		 LEFT JOIN layout_columns c ON c.layout_name = l.name
		 GROUP BY l.name
		 ORDER BY l.name`)
	if err != nil {
		return nil, fmt.Errorf("%w: listing layouts: %w", ErrResource, err)
	}
	defer rows.Close()

	var infos []Info
	for rows.Next() {
		var info Info
		var createdAt, updatedAt string
		if err := rows.Scan(&info.Name, &createdAt, &updatedAt, &info.Columns); err != nil {
			return nil, fmt.Errorf("%w: scanning layout: %w", ErrResource, err)
		}
		info.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // Format is controlled
		info.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // Format is controlled
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating layouts: %w", ErrResource, err)
	}
	return infos, nil
}

// Delete removes the named layout and its columns.
// Returns ErrLayoutNotFound if name is unknown.
func (l *Library) Delete(ctx context.Context, name string) error {
	name, err := normaliseName(name)
	if err != nil {
		return err
	}

	result, err := l.db.ExecContext(ctx, "DELETE FROM layouts WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("%w: deleting layout %s: %w", ErrResource, name, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking rows affected: %w", ErrResource, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrLayoutNotFound, name)
	}
	return nil
}

func normaliseName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: layout name is required", ErrInvalidName)
	}
	return name, nil
}
