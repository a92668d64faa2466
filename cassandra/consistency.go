package cassandra

import (
	"fmt"
	"strings"

	"github.com/gocql/gocql"
)

// Consistency is a CQL consistency level, spelled as in cqlsh.
type Consistency string

// Supported consistency levels.
const (
	One         Consistency = "ONE"
	Quorum      Consistency = "QUORUM"
	LocalQuorum Consistency = "LOCAL_QUORUM"
	EachQuorum  Consistency = "EACH_QUORUM"
	LocalOne    Consistency = "LOCAL_ONE"
	All         Consistency = "ALL"
)

var driverLevels = map[Consistency]gocql.Consistency{
	One:         gocql.One,
	Quorum:      gocql.Quorum,
	LocalQuorum: gocql.LocalQuorum,
	EachQuorum:  gocql.EachQuorum,
	LocalOne:    gocql.LocalOne,
	All:         gocql.All,
}

// ParseConsistency parses a level name, case-insensitively.
func ParseConsistency(s string) (Consistency, error) {
	c := Consistency(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := driverLevels[c]; !ok {
		return "", fmt.Errorf("unsupported consistency level %q", s)
	}
	return c, nil
}

// String returns the level name.
func (c Consistency) String() string { return string(c) }

func (c Consistency) driver() gocql.Consistency {
	if level, ok := driverLevels[c]; ok {
		return level
	}
	return gocql.LocalQuorum
}
