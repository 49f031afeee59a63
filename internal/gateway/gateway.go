// Package gateway is the single entry point to the registration database.
// All persistence goes through named database procedures so the schema
// stays owned by the database; stores translate procedure results into
// domain types.
package gateway

import (
	"context"
	"strconv"
	"time"
)

// Params names the arguments passed to a procedure.
type Params map[string]any

// Row is one result row keyed by column name.
type Row map[string]any

// Gateway executes named procedures. Exec returns the procedure's integer
// status code; zero means success and the caller interprets the rest.
type Gateway interface {
	Table(ctx context.Context, op string, p Params) ([]Row, error)
	Scalar(ctx context.Context, op string, p Params) (any, error)
	Exec(ctx context.Context, op string, p Params) (int, error)
}

// Str reads a column as a string, tolerating driver byte slices.
func (r Row) Str(key string) string {
	switch v := r[key].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}

// Int reads a column as an int, tolerating the numeric types drivers emit.
func (r Row) Int(key string) int {
	switch v := r[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	case []byte:
		n, _ := strconv.Atoi(string(v))
		return n
	case string:
		n, _ := strconv.Atoi(v)
		return n
	default:
		return 0
	}
}

// Bool reads a column as a bool.
func (r Row) Bool(key string) bool {
	switch v := r[key].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	default:
		return false
	}
}

// Time reads a column as a time.Time; the zero value means absent.
func (r Row) Time(key string) time.Time {
	if v, ok := r[key].(time.Time); ok {
		return v
	}
	return time.Time{}
}

// Float reads a column as a float64.
func (r Row) Float(key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case []byte:
		f, _ := strconv.ParseFloat(string(v), 64)
		return f
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return 0
	}
}
