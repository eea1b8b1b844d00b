package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

func init() {
	Register("postgres", NewPostgresConnector)
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type postgresConnector struct {
	db     *sqlx.DB
	schema string
}

// NewPostgresConnector builds a Connector over PostgreSQL's catalogs.
// An empty schema defaults to public.
func NewPostgresConnector(db *sqlx.DB, schema string) Connector {
	if schema == "" {
		schema = "public"
	}
	return &postgresConnector{db: db, schema: schema}
}

func (c *postgresConnector) TableNames(ctx context.Context) ([]string, error) {
	query, args, err := psql.Select("table_name").
		From("information_schema.tables").
		Where(squirrel.Eq{"table_schema": c.schema, "table_type": "BASE TABLE"}).
		OrderBy("table_name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build tables query: %w", err)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		tables = append(tables, name)
	}

	return tables, rows.Err()
}

func (c *postgresConnector) Columns(ctx context.Context, table string) ([]RawColumn, error) {
	query, args, err := psql.Select(
		"column_name",
		"ordinal_position",
		"data_type",
		"udt_name",
		"is_nullable = 'YES' AS nullable",
		"column_default",
		"EXISTS (SELECT 1 FROM pg_type pt WHERE pt.typname = udt_name AND pt.typtype = 'e') AS is_enum",
	).
		From("information_schema.columns").
		Where(squirrel.Eq{"table_schema": c.schema, "table_name": table}).
		OrderBy("ordinal_position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build columns query: %w", err)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns: %w", err)
	}
	defer rows.Close()

	var columns []RawColumn
	for rows.Next() {
		var (
			col      RawColumn
			dataType string
			udtName  string
			def      sql.NullString
		)
		if err := rows.Scan(&col.Name, &col.Position, &dataType, &udtName, &col.Nullable, &def, &col.IsEnum); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}

		// Array columns report data_type ARRAY and an underscore-prefixed
		// element type in udt_name.
		col.IsArray = dataType == "ARRAY"
		col.NativeType = strings.TrimPrefix(udtName, "_")
		if def.Valid {
			col.Default = &def.String
		}

		columns = append(columns, col)
	}

	return columns, rows.Err()
}

func (c *postgresConnector) PrimaryKey(ctx context.Context, table string) (*PrimaryKey, error) {
	query := `
		SELECT
			tc.constraint_name,
			array_agg(kcu.column_name ORDER BY kcu.ordinal_position) AS columns
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
			AND tc.table_name = kcu.table_name
		WHERE tc.constraint_type = 'PRIMARY KEY'
		AND tc.table_schema = $1
		AND tc.table_name = $2
		GROUP BY tc.constraint_name
	`

	var pk PrimaryKey
	var columns pq.StringArray

	err := c.db.QueryRowContext(ctx, query, c.schema, table).Scan(&pk.Name, &columns)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query primary key: %w", err)
	}

	pk.Columns = []string(columns)
	return &pk, nil
}

func (c *postgresConnector) ForeignKeys(ctx context.Context, table string) ([]RawForeignKey, error) {
	query := `
		SELECT
			tc.constraint_name,
			array_agg(kcu.column_name ORDER BY kcu.ordinal_position) AS columns,
			ccu.table_name AS referenced_table,
			array_agg(ccu.column_name ORDER BY kcu.ordinal_position) AS referenced_columns,
			rc.delete_rule,
			rc.update_rule
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
			AND tc.table_name = kcu.table_name
		JOIN information_schema.constraint_column_usage ccu
			ON tc.constraint_name = ccu.constraint_name
			AND tc.table_schema = ccu.constraint_schema
		JOIN information_schema.referential_constraints rc
			ON tc.constraint_name = rc.constraint_name
			AND tc.table_schema = rc.constraint_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
		AND tc.table_schema = $1
		AND tc.table_name = $2
		GROUP BY tc.constraint_name, ccu.table_name, rc.delete_rule, rc.update_rule
		ORDER BY tc.constraint_name
	`

	rows, err := c.db.QueryContext(ctx, query, c.schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query foreign keys: %w", err)
	}
	defer rows.Close()

	var foreignKeys []RawForeignKey
	for rows.Next() {
		var fk RawForeignKey
		var columns, refColumns pq.StringArray

		err := rows.Scan(&fk.Name, &columns, &fk.ReferencedTable, &refColumns, &fk.OnDelete, &fk.OnUpdate)
		if err != nil {
			return nil, fmt.Errorf("failed to scan foreign key: %w", err)
		}

		fk.Columns = []string(columns)
		fk.ReferencedColumns = []string(refColumns)
		foreignKeys = append(foreignKeys, fk)
	}

	return foreignKeys, rows.Err()
}

func (c *postgresConnector) UniqueColumns(ctx context.Context, table string) ([]string, error) {
	query := `
		SELECT a.attname
		FROM pg_index ix
		JOIN pg_class t ON t.oid = ix.indrelid
		JOIN pg_namespace n ON n.oid = t.relnamespace
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
		WHERE n.nspname = $1
		AND t.relname = $2
		AND ix.indisunique
		AND NOT ix.indisprimary
		AND ix.indnkeyatts = 1
		ORDER BY a.attname
	`

	rows, err := c.db.QueryContext(ctx, query, c.schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query unique columns: %w", err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan unique column: %w", err)
		}
		columns = append(columns, name)
	}

	return columns, rows.Err()
}
