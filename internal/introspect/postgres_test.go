package introspect

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestPostgresConnectorTableNames(t *testing.T) {
	db, mock := newMockDB(t)
	conn := NewPostgresConnector(db, "public")

	mock.ExpectQuery(regexp.QuoteMeta("FROM information_schema.tables")).
		WithArgs("public", "BASE TABLE").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).
			AddRow("post").
			AddRow("user"))

	names, err := conn.TableNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"post", "user"}, names)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresConnectorColumns(t *testing.T) {
	db, mock := newMockDB(t)
	conn := NewPostgresConnector(db, "public")

	mock.ExpectQuery(regexp.QuoteMeta("FROM information_schema.columns")).
		WithArgs("user", "public").
		WillReturnRows(sqlmock.NewRows([]string{
			"column_name", "ordinal_position", "data_type", "udt_name", "nullable", "column_default", "is_enum",
		}).
			AddRow("id", 1, "integer", "int4", false, "nextval('user_id_seq'::regclass)", false).
			AddRow("email", 2, "character varying", "varchar", true, nil, false).
			AddRow("tags", 3, "ARRAY", "_text", true, nil, false).
			AddRow("mood", 4, "USER-DEFINED", "mood_type", true, nil, true))

	columns, err := conn.Columns(context.Background(), "user")
	require.NoError(t, err)
	require.Len(t, columns, 4)

	assert.Equal(t, "int4", columns[0].NativeType)
	assert.False(t, columns[0].Nullable)
	require.NotNil(t, columns[0].Default)

	assert.True(t, columns[1].Nullable)
	assert.Nil(t, columns[1].Default)

	// Array columns report ARRAY with an underscore-prefixed element type.
	assert.True(t, columns[2].IsArray)
	assert.Equal(t, "text", columns[2].NativeType)

	// User-defined enums report the type name, flagged via pg_type.
	assert.True(t, columns[3].IsEnum)
	assert.Equal(t, "mood_type", columns[3].NativeType)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresConnectorPrimaryKey(t *testing.T) {
	db, mock := newMockDB(t)
	conn := NewPostgresConnector(db, "public")

	t.Run("composite key keeps column order", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("constraint_type = 'PRIMARY KEY'")).
			WithArgs("public", "order_item").
			WillReturnRows(sqlmock.NewRows([]string{"constraint_name", "columns"}).
				AddRow("order_item_pkey", "{order_id,item_id}"))

		pk, err := conn.PrimaryKey(context.Background(), "order_item")
		require.NoError(t, err)
		require.NotNil(t, pk)
		assert.Equal(t, "order_item_pkey", pk.Name)
		assert.Equal(t, []string{"order_id", "item_id"}, pk.Columns)
	})

	t.Run("missing key is nil", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("constraint_type = 'PRIMARY KEY'")).
			WithArgs("public", "audit_log").
			WillReturnRows(sqlmock.NewRows([]string{"constraint_name", "columns"}))

		pk, err := conn.PrimaryKey(context.Background(), "audit_log")
		require.NoError(t, err)
		assert.Nil(t, pk)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresConnectorForeignKeys(t *testing.T) {
	db, mock := newMockDB(t)
	conn := NewPostgresConnector(db, "public")

	mock.ExpectQuery(regexp.QuoteMeta("constraint_type = 'FOREIGN KEY'")).
		WithArgs("public", "bill_product").
		WillReturnRows(sqlmock.NewRows([]string{
			"constraint_name", "columns", "referenced_table", "referenced_columns", "delete_rule", "update_rule",
		}).
			AddRow("bp_bill_fk", "{bill_id}", "bill", "{id}", "CASCADE", "NO ACTION").
			AddRow("bp_product_fk", "{product_id}", "product", "{id}", "CASCADE", "NO ACTION"))

	fks, err := conn.ForeignKeys(context.Background(), "bill_product")
	require.NoError(t, err)
	require.Len(t, fks, 2)
	assert.Equal(t, []string{"bill_id"}, fks[0].Columns)
	assert.Equal(t, "bill", fks[0].ReferencedTable)
	assert.Equal(t, []string{"id"}, fks[0].ReferencedColumns)
	assert.Equal(t, "CASCADE", fks[0].OnDelete)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresIntrospectEndToEnd(t *testing.T) {
	db, mock := newMockDB(t)
	conn := NewPostgresConnector(db, "public")

	mock.ExpectQuery(regexp.QuoteMeta("FROM information_schema.tables")).
		WithArgs("public", "BASE TABLE").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("user"))

	mock.ExpectQuery(regexp.QuoteMeta("FROM information_schema.columns")).
		WithArgs("user", "public").
		WillReturnRows(sqlmock.NewRows([]string{
			"column_name", "ordinal_position", "data_type", "udt_name", "nullable", "column_default", "is_enum",
		}).
			AddRow("id", 1, "integer", "int4", false, "nextval('user_id_seq'::regclass)", false).
			AddRow("email", 2, "character varying", "varchar", true, nil, false))

	mock.ExpectQuery(regexp.QuoteMeta("constraint_type = 'PRIMARY KEY'")).
		WithArgs("public", "user").
		WillReturnRows(sqlmock.NewRows([]string{"constraint_name", "columns"}).
			AddRow("user_pkey", "{id}"))

	mock.ExpectQuery(regexp.QuoteMeta("constraint_type = 'FOREIGN KEY'")).
		WithArgs("public", "user").
		WillReturnRows(sqlmock.NewRows([]string{
			"constraint_name", "columns", "referenced_table", "referenced_columns", "delete_rule", "update_rule",
		}))

	mock.ExpectQuery(regexp.QuoteMeta("pg_index")).
		WithArgs("public", "user").
		WillReturnRows(sqlmock.NewRows([]string{"attname"}).AddRow("email"))

	result, err := NewIntrospector(conn).Introspect(context.Background())
	require.NoError(t, err)

	want := `type User @db(name: "user") {
  id: ID! @id
  email: String @unique
}
`
	assert.Equal(t, want, result.SDL)
	assert.Equal(t, 1, result.TableCount)
	assert.Empty(t, result.Warnings)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresConnectorDefaultSchema(t *testing.T) {
	db, _ := newMockDB(t)
	conn := NewPostgresConnector(db, "").(*postgresConnector)
	assert.Equal(t, "public", conn.schema)
}
