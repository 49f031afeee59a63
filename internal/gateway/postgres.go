package gateway

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	_ "github.com/lib/pq"

	"confreg/pkg/platform/sentinel"
)

// Postgres runs procedures as PostgreSQL functions using named-notation
// argument calls.
type Postgres struct {
	db *sql.DB
}

// NewPostgres wraps an open connection pool.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Open dials PostgreSQL and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

var opNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Table runs a set-returning procedure and materializes every row.
func (g *Postgres) Table(ctx context.Context, op string, p Params) ([]Row, error) {
	query, args, err := buildCall("SELECT * FROM", op, p)
	if err != nil {
		return nil, err
	}
	rows, err := g.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%s columns: %w", op, err)
	}

	var out []Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("%s scan: %w", op, err)
		}
		row := make(Row, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s rows: %w", op, err)
	}
	return out, nil
}

// Scalar runs a procedure returning a single value.
func (g *Postgres) Scalar(ctx context.Context, op string, p Params) (any, error) {
	query, args, err := buildCall("SELECT", op, p)
	if err != nil {
		return nil, err
	}
	var value any
	if err := g.db.QueryRowContext(ctx, query, args...).Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return value, nil
}

// Exec runs a procedure returning an integer status. Zero means success;
// other statuses are handed back for the caller to interpret.
func (g *Postgres) Exec(ctx context.Context, op string, p Params) (int, error) {
	value, err := g.Scalar(ctx, op, p)
	if err != nil {
		return 0, err
	}
	switch v := value.(type) {
	case int64:
		return int(v), nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("%s: unexpected status type %T", op, value)
	}
}

// buildCall renders "<prefix> op(name => $1, ...)" with arguments in a
// stable order. Slice-of-row parameters travel as jsonb.
func buildCall(prefix, op string, p Params) (string, []any, error) {
	if !opNamePattern.MatchString(op) {
		return "", nil, fmt.Errorf("invalid procedure name %q", op)
	}

	names := make([]string, 0, len(p))
	for name := range p {
		if !opNamePattern.MatchString(name) {
			return "", nil, fmt.Errorf("%s: invalid parameter name %q", op, name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	args := make([]any, 0, len(names))
	for i, name := range names {
		placeholder := fmt.Sprintf("$%d", i+1)
		value := p[name]
		if rows, ok := value.([]Row); ok {
			encoded, err := json.Marshal(rows)
			if err != nil {
				return "", nil, fmt.Errorf("%s: encode %s: %w", op, name, err)
			}
			value = string(encoded)
			placeholder += "::jsonb"
		}
		parts = append(parts, fmt.Sprintf("%s => %s", name, placeholder))
		args = append(args, value)
	}

	return fmt.Sprintf("%s %s(%s)", prefix, op, strings.Join(parts, ", ")), args, nil
}
