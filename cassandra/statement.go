package cassandra

import (
	"strings"
)

// Kind is the verb of a statement.
type Kind int

const (
	KindSelect Kind = iota
	KindUpsert
	KindDelete
)

func (k Kind) String() string {
	switch k {
	case KindSelect:
		return "SELECT"
	case KindUpsert:
		return "INSERT"
	case KindDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// Statement is one fixed query shape. Statements are values: the modifier
// methods return a copy and never touch the receiver, so package-level
// statements can be shared between goroutines.
//
// Bind arguments follow the shape:
//   - select and delete: one value per key column, in order
//   - upsert: one value per column, in order, then the TTL in seconds when UsingTTL is set
type Statement struct {
	Table          string
	Kind           Kind
	Columns        []string
	Keys           []string
	AllowFiltering bool
	WithTTL        bool
	Consistency    Consistency

	cql string
}

// NewSelect returns "SELECT columns FROM table WHERE k1 = ? AND ...".
func NewSelect(table string, columns, keys []string) Statement {
	return Statement{Table: table, Kind: KindSelect, Columns: columns, Keys: keys}.render()
}

// NewUpsert returns "INSERT INTO table (columns) VALUES (?, ...)".
func NewUpsert(table string, columns []string) Statement {
	return Statement{Table: table, Kind: KindUpsert, Columns: columns}.render()
}

// NewDelete returns "DELETE FROM table WHERE k1 = ? AND ...".
func NewDelete(table string, keys []string) Statement {
	return Statement{Table: table, Kind: KindDelete, Keys: keys}.render()
}

// Filtering appends ALLOW FILTERING to a select.
func (s Statement) Filtering() Statement {
	s.AllowFiltering = true
	return s.render()
}

// UsingTTL appends "USING TTL ?" to an upsert.
func (s Statement) UsingTTL() Statement {
	s.WithTTL = true
	return s.render()
}

// At sets the consistency level the statement is executed at.
func (s Statement) At(c Consistency) Statement {
	s.Consistency = c
	return s
}

// Arity is the number of bind arguments the statement expects.
func (s Statement) Arity() int {
	switch s.Kind {
	case KindUpsert:
		if s.WithTTL {
			return len(s.Columns) + 1
		}
		return len(s.Columns)
	default:
		return len(s.Keys)
	}
}

// CQL returns the rendered statement text.
func (s Statement) CQL() string { return s.cql }

// String returns the rendered statement text, for logs.
func (s Statement) String() string { return s.cql }

func (s Statement) render() Statement {
	var b strings.Builder
	switch s.Kind {
	case KindSelect:
		b.WriteString("SELECT ")
		b.WriteString(strings.Join(s.Columns, ", "))
		b.WriteString(" FROM ")
		b.WriteString(s.Table)
		writeWhere(&b, s.Keys)
		if s.AllowFiltering {
			b.WriteString(" ALLOW FILTERING")
		}
	case KindUpsert:
		b.WriteString("INSERT INTO ")
		b.WriteString(s.Table)
		b.WriteString(" (")
		b.WriteString(strings.Join(s.Columns, ", "))
		b.WriteString(") VALUES (")
		b.WriteString(placeholders(len(s.Columns)))
		b.WriteString(")")
		if s.WithTTL {
			b.WriteString(" USING TTL ?")
		}
	case KindDelete:
		b.WriteString("DELETE FROM ")
		b.WriteString(s.Table)
		writeWhere(&b, s.Keys)
	}
	s.cql = b.String()
	return s
}

func writeWhere(b *strings.Builder, keys []string) {
	for i, k := range keys {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		b.WriteString(k)
		b.WriteString(" = ?")
	}
}

func placeholders(n int) string {
	if n == 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}
