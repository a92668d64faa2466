package cassandra

import "testing"

func TestStatementRendering(t *testing.T) {
	tests := []struct {
		name  string
		stmt  Statement
		cql   string
		arity int
	}{
		{
			name:  "select by full key",
			stmt:  NewSelect("session", []string{"value"}, []string{"type", "key"}),
			cql:   "SELECT value FROM session WHERE type = ? AND key = ?",
			arity: 2,
		},
		{
			name:  "partition scan with filtering",
			stmt:  NewSelect("entities", []string{"entityid", "enabled"}, []string{"feed"}).Filtering(),
			cql:   "SELECT entityid, enabled FROM entities WHERE feed = ? ALLOW FILTERING",
			arity: 1,
		},
		{
			name:  "upsert",
			stmt:  NewUpsert("session", []string{"type", "key", "value"}),
			cql:   "INSERT INTO session (type, key, value) VALUES (?, ?, ?)",
			arity: 3,
		},
		{
			name:  "upsert with ttl",
			stmt:  NewUpsert("session", []string{"type", "key", "value"}).UsingTTL(),
			cql:   "INSERT INTO session (type, key, value) VALUES (?, ?, ?) USING TTL ?",
			arity: 4,
		},
		{
			name:  "delete",
			stmt:  NewDelete("entities", []string{"feed", "entityid"}),
			cql:   "DELETE FROM entities WHERE feed = ? AND entityid = ?",
			arity: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stmt.CQL(); got != tt.cql {
				t.Errorf("CQL() = %q, want %q", got, tt.cql)
			}
			if got := tt.stmt.Arity(); got != tt.arity {
				t.Errorf("Arity() = %d, want %d", got, tt.arity)
			}
		})
	}
}

func TestStatementModifiersCopy(t *testing.T) {
	base := NewUpsert("session", []string{"type", "key", "value"})
	withTTL := base.UsingTTL().At(Quorum)

	if base.WithTTL || base.Consistency != "" {
		t.Error("modifiers must not change the receiver")
	}
	if !withTTL.WithTTL || withTTL.Consistency != Quorum {
		t.Errorf("modified statement = %+v", withTTL)
	}
	if withTTL.String() != withTTL.CQL() {
		t.Error("String() should equal CQL()")
	}
}

func TestKindString(t *testing.T) {
	if KindSelect.String() != "SELECT" || KindUpsert.String() != "INSERT" || KindDelete.String() != "DELETE" {
		t.Error("unexpected kind names")
	}
	if Kind(99).String() != "UNKNOWN" {
		t.Error("unknown kind should render UNKNOWN")
	}
}
