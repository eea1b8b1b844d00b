package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

func init() {
	Register("mysql", NewMySQLConnector)
}

type mysqlConnector struct {
	db     *sqlx.DB
	schema string
}

// NewMySQLConnector builds a Connector over MySQL's information_schema.
// The schema is the database name; empty means the connection's current
// database.
func NewMySQLConnector(db *sqlx.DB, schema string) Connector {
	return &mysqlConnector{db: db, schema: schema}
}

func (c *mysqlConnector) schemaPredicate() squirrel.Sqlizer {
	if c.schema == "" {
		return squirrel.Expr("TABLE_SCHEMA = DATABASE()")
	}
	return squirrel.Eq{"TABLE_SCHEMA": c.schema}
}

func (c *mysqlConnector) TableNames(ctx context.Context) ([]string, error) {
	query, args, err := squirrel.Select("TABLE_NAME").
		From("information_schema.TABLES").
		Where(c.schemaPredicate()).
		Where(squirrel.Eq{"TABLE_TYPE": "BASE TABLE"}).
		OrderBy("TABLE_NAME").
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

func (c *mysqlConnector) Columns(ctx context.Context, table string) ([]RawColumn, error) {
	query, args, err := squirrel.Select(
		"COLUMN_NAME",
		"ORDINAL_POSITION",
		"DATA_TYPE",
		"IS_NULLABLE",
		"COLUMN_DEFAULT",
		"EXTRA",
	).
		From("information_schema.COLUMNS").
		Where(c.schemaPredicate()).
		Where(squirrel.Eq{"TABLE_NAME": table}).
		OrderBy("ORDINAL_POSITION").
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
			nullable string
			def      sql.NullString
			extra    string
		)
		if err := rows.Scan(&col.Name, &col.Position, &col.NativeType, &nullable, &def, &extra); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}

		col.Nullable = strings.EqualFold(nullable, "YES")
		// auto_increment defaults are generator state, not values.
		if def.Valid && !strings.Contains(strings.ToLower(extra), "auto_increment") {
			col.Default = &def.String
		}

		columns = append(columns, col)
	}

	return columns, rows.Err()
}

func (c *mysqlConnector) PrimaryKey(ctx context.Context, table string) (*PrimaryKey, error) {
	query := `
		SELECT COLUMN_NAME
		FROM information_schema.KEY_COLUMN_USAGE
		WHERE TABLE_SCHEMA = COALESCE(NULLIF(?, ''), DATABASE())
		AND TABLE_NAME = ?
		AND CONSTRAINT_NAME = 'PRIMARY'
		ORDER BY ORDINAL_POSITION
	`

	rows, err := c.db.QueryContext(ctx, query, c.schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query primary key: %w", err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan primary key column: %w", err)
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(columns) == 0 {
		return nil, nil
	}
	return &PrimaryKey{Name: "PRIMARY", Columns: columns}, nil
}

func (c *mysqlConnector) ForeignKeys(ctx context.Context, table string) ([]RawForeignKey, error) {
	query := `
		SELECT
			kcu.CONSTRAINT_NAME,
			GROUP_CONCAT(kcu.COLUMN_NAME ORDER BY kcu.ORDINAL_POSITION) AS columns,
			kcu.REFERENCED_TABLE_NAME,
			GROUP_CONCAT(kcu.REFERENCED_COLUMN_NAME ORDER BY kcu.ORDINAL_POSITION) AS referenced_columns,
			rc.DELETE_RULE,
			rc.UPDATE_RULE
		FROM information_schema.KEY_COLUMN_USAGE kcu
		JOIN information_schema.REFERENTIAL_CONSTRAINTS rc
			ON rc.CONSTRAINT_NAME = kcu.CONSTRAINT_NAME
			AND rc.CONSTRAINT_SCHEMA = kcu.TABLE_SCHEMA
		WHERE kcu.TABLE_SCHEMA = COALESCE(NULLIF(?, ''), DATABASE())
		AND kcu.TABLE_NAME = ?
		AND kcu.REFERENCED_TABLE_NAME IS NOT NULL
		GROUP BY kcu.CONSTRAINT_NAME, kcu.REFERENCED_TABLE_NAME, rc.DELETE_RULE, rc.UPDATE_RULE
		ORDER BY kcu.CONSTRAINT_NAME
	`

	rows, err := c.db.QueryContext(ctx, query, c.schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query foreign keys: %w", err)
	}
	defer rows.Close()

	var foreignKeys []RawForeignKey
	for rows.Next() {
		var fk RawForeignKey
		var columns, refColumns string

		err := rows.Scan(&fk.Name, &columns, &fk.ReferencedTable, &refColumns, &fk.OnDelete, &fk.OnUpdate)
		if err != nil {
			return nil, fmt.Errorf("failed to scan foreign key: %w", err)
		}

		fk.Columns = strings.Split(columns, ",")
		fk.ReferencedColumns = strings.Split(refColumns, ",")
		foreignKeys = append(foreignKeys, fk)
	}

	return foreignKeys, rows.Err()
}

func (c *mysqlConnector) UniqueColumns(ctx context.Context, table string) ([]string, error) {
	query := `
		SELECT MIN(COLUMN_NAME) AS COLUMN_NAME
		FROM information_schema.STATISTICS
		WHERE TABLE_SCHEMA = COALESCE(NULLIF(?, ''), DATABASE())
		AND TABLE_NAME = ?
		AND NON_UNIQUE = 0
		AND INDEX_NAME <> 'PRIMARY'
		GROUP BY INDEX_NAME
		HAVING COUNT(*) = 1
		ORDER BY COLUMN_NAME
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
