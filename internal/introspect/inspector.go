package introspect

import (
	"context"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/graphbase-io/graphbase/internal/logger"
)

// Introspector runs the pipeline Connector → builder → classifier →
// emitter. Each call builds a fresh model; nothing is cached across runs.
type Introspector struct {
	conn Connector
}

// NewIntrospector binds an Introspector to a connector.
func NewIntrospector(conn Connector) *Introspector {
	return &Introspector{conn: conn}
}

// Introspect discovers the schema and returns the emitted SDL with the
// table count and any structural warnings. Fatal conditions return no
// partial result.
func (i *Introspector) Introspect(ctx context.Context) (*Result, error) {
	model, err := BuildModel(ctx, i.conn)
	if err != nil {
		return nil, err
	}
	if len(model.TableNames) == 0 {
		return nil, ErrEmptySchema
	}

	classified, err := Classify(model)
	if err != nil {
		return nil, err
	}

	logger.Introspect().Debug("introspected %d tables, %d warnings",
		len(model.TableNames), len(model.Warnings))

	return &Result{
		SDL:        Emit(classified),
		TableCount: len(model.TableNames),
		Warnings:   model.Warnings,
	}, nil
}

// IntrospectDatabase opens a connection for the given driver, verifies it,
// and runs a full introspection against the target schema.
func IntrospectDatabase(ctx context.Context, driver, dsn, schema string) (*Result, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	logger.DB().Debug("connected via %s driver", driver)

	conn, err := NewConnector(driver, db, schema)
	if err != nil {
		return nil, err
	}

	return NewIntrospector(conn).Introspect(ctx)
}
