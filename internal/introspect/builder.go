package introspect

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/graphbase-io/graphbase/internal/logger"
)

// fetchConcurrency caps the number of in-flight metadata queries.
const fetchConcurrency = 8

type rawTable struct {
	name    string
	columns []RawColumn
	pk      *PrimaryKey
	fks     []RawForeignKey
	unique  []string
}

// BuildModel fetches metadata for every table in the target schema and
// assembles the relational model. Per-table queries are independent and run
// concurrently; the group is joined before assembly because classification
// needs the complete foreign-key graph.
func BuildModel(ctx context.Context, conn Connector) (*Model, error) {
	names, err := conn.TableNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	sort.Strings(names)

	raws := make([]rawTable, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			raw := rawTable{name: name}
			var err error
			if raw.columns, err = conn.Columns(gctx, name); err != nil {
				return fmt.Errorf("table %s: %w", name, err)
			}
			if raw.pk, err = conn.PrimaryKey(gctx, name); err != nil {
				return fmt.Errorf("table %s: %w", name, err)
			}
			if raw.fks, err = conn.ForeignKeys(gctx, name); err != nil {
				return fmt.Errorf("table %s: %w", name, err)
			}
			if raw.unique, err = conn.UniqueColumns(gctx, name); err != nil {
				return fmt.Errorf("table %s: %w", name, err)
			}
			raws[i] = raw
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return assemble(raws)
}

func assemble(raws []rawTable) (*Model, error) {
	model := &Model{
		Tables:   make(map[string]*Table, len(raws)),
		bySource: make(map[string][]*ForeignKey),
		byTarget: make(map[string][]*ForeignKey),
	}

	log := logger.Introspect()

	for _, raw := range raws {
		table := &Table{
			Name:       raw.name,
			PrimaryKey: raw.pk,
		}

		unique := make(map[string]bool, len(raw.unique))
		for _, col := range raw.unique {
			unique[col] = true
		}
		// A single-column primary key is a unique constraint too.
		if raw.pk != nil && len(raw.pk.Columns) == 1 {
			unique[raw.pk.Columns[0]] = true
		}
		pkCols := make(map[string]bool)
		if raw.pk != nil {
			for _, col := range raw.pk.Columns {
				pkCols[col] = true
			}
		}

		for _, rc := range raw.columns {
			scalar, supported := scalarTypeFor(rc.NativeType)
			if rc.IsEnum {
				scalar, supported = TypeEnum, true
			}
			if !supported {
				model.Warnings = append(model.Warnings, Warning{
					Kind:    WarningUnsupportedType,
					Table:   raw.name,
					Column:  rc.Name,
					Message: fmt.Sprintf("unsupported native type %q rendered as String", rc.NativeType),
				})
				log.Warn("unsupported native type %q on %s.%s, rendering as String", rc.NativeType, raw.name, rc.Name)
			}
			table.Columns = append(table.Columns, &Column{
				Name:         rc.Name,
				Position:     rc.Position,
				Type:         scalar,
				NativeType:   rc.NativeType,
				Nullable:     rc.Nullable,
				IsList:       rc.IsArray,
				Default:      normalizeDefault(rc.Default),
				InPrimaryKey: pkCols[rc.Name],
				Unique:       unique[rc.Name],
			})
		}

		model.Tables[raw.name] = table
		model.TableNames = append(model.TableNames, raw.name)
	}

	// Validate foreign keys against the assembled tables. Composite and
	// dangling keys are excluded from the relation graph with a warning;
	// a permissive source database must not abort the whole run.
	for _, raw := range raws {
		table := model.Tables[raw.name]
		for _, rfk := range raw.fks {
			if len(rfk.Columns) != 1 || len(rfk.ReferencedColumns) != 1 {
				model.Warnings = append(model.Warnings, Warning{
					Kind:    WarningCompositeKey,
					Table:   raw.name,
					Column:  strings.Join(rfk.Columns, ","),
					Message: fmt.Sprintf("composite foreign key %s excluded from relations", rfk.Name),
				})
				continue
			}

			column := rfk.Columns[0]
			target := model.Tables[rfk.ReferencedTable]
			if table.Column(column) == nil || target == nil || target.Column(rfk.ReferencedColumns[0]) == nil {
				model.Warnings = append(model.Warnings, Warning{
					Kind:    WarningDanglingForeignKey,
					Table:   raw.name,
					Column:  column,
					Message: fmt.Sprintf("foreign key %s references unknown %s.%s", rfk.Name, rfk.ReferencedTable, rfk.ReferencedColumns[0]),
				})
				log.Warn("dropping dangling foreign key %s on %s", rfk.Name, raw.name)
				continue
			}

			fk := &ForeignKey{
				Name:             rfk.Name,
				Table:            raw.name,
				Column:           column,
				ReferencedTable:  rfk.ReferencedTable,
				ReferencedColumn: rfk.ReferencedColumns[0],
				OnDelete:         normalizeAction(rfk.OnDelete),
				OnUpdate:         normalizeAction(rfk.OnUpdate),
			}
			table.ForeignKeys = append(table.ForeignKeys, fk)
		}

		// Classification and naming must not depend on declaration order.
		sort.Slice(table.ForeignKeys, func(i, j int) bool {
			a, b := table.ForeignKeys[i], table.ForeignKeys[j]
			if a.Column != b.Column {
				return a.Column < b.Column
			}
			return a.Name < b.Name
		})

		for _, fk := range table.ForeignKeys {
			model.bySource[fk.Table] = append(model.bySource[fk.Table], fk)
			model.byTarget[fk.ReferencedTable] = append(model.byTarget[fk.ReferencedTable], fk)
		}
	}

	return model, nil
}

// scalarTypeFor normalizes a native database type into the fixed scalar
// set. The second return is false for unknown types, which degrade to
// String.
func scalarTypeFor(native string) (ScalarType, bool) {
	switch strings.ToLower(native) {
	case "int2", "int4", "int8", "smallint", "int", "integer", "bigint", "mediumint", "tinyint", "serial", "bigserial", "year":
		return TypeInt, true
	case "float4", "float8", "numeric", "decimal", "real", "double", "double precision", "float", "money":
		return TypeFloat, true
	case "bool", "boolean", "bit":
		return TypeBoolean, true
	case "text", "varchar", "character varying", "char", "character", "bpchar", "citext", "tinytext", "mediumtext", "longtext":
		return TypeString, true
	case "uuid":
		return TypeID, true
	case "timestamp", "timestamptz", "timestamp without time zone", "timestamp with time zone", "date", "time", "timetz", "datetime":
		return TypeDateTime, true
	case "json", "jsonb":
		return TypeJSON, true
	case "enum", "set":
		return TypeEnum, true
	}
	return TypeString, false
}

func normalizeAction(rule string) ReferentialAction {
	switch strings.ToUpper(strings.TrimSpace(rule)) {
	case "CASCADE":
		return ActionCascade
	case "SET NULL":
		return ActionSetNull
	case "RESTRICT":
		return ActionRestrict
	default:
		return ActionNoAction
	}
}

// normalizeDefault strips dialect noise from a column default. Function
// defaults (nextval, now, uuid generators) are sequence/clock state rather
// than values and are dropped.
func normalizeDefault(def *string) *string {
	if def == nil {
		return nil
	}
	value := strings.TrimSpace(*def)
	if idx := strings.Index(value, "::"); idx >= 0 {
		value = strings.TrimSpace(value[:idx])
	}
	if value == "" || strings.Contains(value, "(") {
		return nil
	}
	switch strings.ToUpper(value) {
	case "NULL", "CURRENT_TIMESTAMP", "CURRENT_DATE", "CURRENT_TIME":
		return nil
	}
	value = strings.Trim(value, "'")
	return &value
}
