package introspect

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
)

// RawColumn is a column row as reported by a connector, before type
// normalization.
type RawColumn struct {
	Name       string
	Position   int
	NativeType string
	Nullable   bool
	IsArray    bool
	// IsEnum marks user-defined enum types whose NativeType is the type
	// name rather than a recognizable keyword.
	IsEnum  bool
	Default *string
}

// RawForeignKey is a foreign-key constraint as reported by a connector.
// Column lists are parallel; composite keys are filtered by the builder.
type RawForeignKey struct {
	Name              string
	Columns           []string
	ReferencedTable   string
	ReferencedColumns []string
	OnDelete          string
	OnUpdate          string
}

// Connector abstracts one database engine's metadata catalog. All
// operations are read-only; no row data is touched.
type Connector interface {
	// TableNames lists base tables in the target schema, sorted.
	TableNames(ctx context.Context) ([]string, error)
	// Columns lists a table's columns in ordinal order.
	Columns(ctx context.Context, table string) ([]RawColumn, error)
	// PrimaryKey returns the table's primary key, or nil.
	PrimaryKey(ctx context.Context, table string) (*PrimaryKey, error)
	// ForeignKeys lists the table's foreign-key constraints.
	ForeignKeys(ctx context.Context, table string) ([]RawForeignKey, error)
	// UniqueColumns lists columns covered by a single-column unique index.
	UniqueColumns(ctx context.Context, table string) ([]string, error)
}

// Factory builds a Connector over an open handle for one dialect.
type Factory func(db *sqlx.DB, schema string) Connector

var dialects = map[string]Factory{}

// Register makes a connector factory available under a driver name.
func Register(driver string, f Factory) {
	dialects[strings.ToLower(driver)] = f
}

// NewConnector returns the connector registered for driver.
func NewConnector(driver string, db *sqlx.DB, schema string) (Connector, error) {
	f, ok := dialects[strings.ToLower(driver)]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver: %s (available: %s)",
			driver, strings.Join(registeredDrivers(), ", "))
	}
	return f(db, schema), nil
}

func registeredDrivers() []string {
	keys := make([]string, 0, len(dialects))
	for k := range dialects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
