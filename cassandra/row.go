package cassandra

import (
	"time"
)

// Row is one result row keyed by column name. A column that is null may be
// absent, nil, or the zero value of its type depending on the executor;
// the accessors treat all three the same.
type Row map[string]any

// String returns a text column, or "" when null.
func (r Row) String(col string) string {
	s, _ := r[col].(string)
	return s
}

// Bool returns a boolean column, or false when null.
func (r Row) Bool(col string) bool {
	b, _ := r[col].(bool)
	return b
}

// Bytes returns a blob column, or nil when null.
func (r Row) Bytes(col string) []byte {
	b, _ := r[col].([]byte)
	if len(b) == 0 {
		return nil
	}
	return b
}

// Time returns a timestamp column and whether it was set.
func (r Row) Time(col string) (time.Time, bool) {
	switch v := r[col].(type) {
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil || v.IsZero() {
			return time.Time{}, false
		}
		return *v, true
	default:
		return time.Time{}, false
	}
}

// Epoch returns a timestamp column as unix seconds, or nil when null.
func (r Row) Epoch(col string) *int64 {
	t, ok := r.Time(col)
	if !ok {
		return nil
	}
	secs := t.Unix()
	return &secs
}
