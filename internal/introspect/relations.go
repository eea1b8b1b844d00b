package introspect

import (
	"fmt"
	"sort"
)

// junction is an elided join table: exactly two validated single-column
// foreign keys, sides ordered by referenced table then column.
type junction struct {
	table string
	left  *ForeignKey
	right *ForeignKey
}

func (j *junction) selfJoin() bool {
	return j.left.ReferencedTable == j.right.ReferencedTable
}

// Classify resolves every foreign-key edge into its relation variant in a
// single pass and produces the typed model the emitter renders. The result
// depends only on table and column identifiers, never on discovery order.
func Classify(model *Model) (*ClassifiedModel, error) {
	junctions := detectJunctions(model)

	defs := make(map[string]*TypeDef)
	var order []string
	for _, name := range model.TableNames {
		if _, elided := junctions[name]; elided {
			continue
		}
		defs[name] = newTypeDef(model.Tables[name])
		order = append(order, name)
	}

	// Two tables must not normalize to the same type name; the emitted
	// document would carry duplicate type blocks.
	byTypeName := make(map[string]string, len(order))
	for _, name := range order {
		def := defs[name]
		if prev, ok := byTypeName[def.Name]; ok {
			return nil, fmt.Errorf("%w: tables %q and %q both generate type %s",
				ErrNameCollision, prev, name, def.Name)
		}
		byTypeName[def.Name] = name
	}

	// Count inline foreign keys per source/target pair so back-references
	// can tell whether the pluralized source table alone is unambiguous.
	fkCount := make(map[string]map[string]int)
	for _, name := range order {
		for _, fk := range model.ForeignKeysFrom(name) {
			if fkCount[name] == nil {
				fkCount[name] = make(map[string]int)
			}
			fkCount[name][fk.ReferencedTable]++
		}
	}

	// Inline relations: a field on the owning type plus a back-reference
	// on the referenced type.
	for _, name := range order {
		def := defs[name]
		table := model.Tables[name]
		for _, fk := range model.ForeignKeysFrom(name) {
			target, ok := defs[fk.ReferencedTable]
			if !ok {
				// Junction tables reject incoming foreign keys, so the
				// referenced type is always emitted.
				continue
			}

			column := table.Column(fk.Column)
			def.Fields = append(def.Fields, &Field{
				Name:     relationFieldName(fk.Column),
				Type:     typeName(fk.ReferencedTable),
				Required: !column.Nullable,
				Relation: &RelationRef{
					Kind:       InlineRelation,
					Column:     fk.Column,
					References: fk.ReferencedColumn,
					OnDelete:   fk.OnDelete,
					OnUpdate:   fk.OnUpdate,
				},
			})

			onlyFK := fkCount[name][fk.ReferencedTable] == 1
			back := &Field{
				Type: typeName(name),
				Relation: &RelationRef{
					Kind:       InlineRelation,
					Column:     fk.Column,
					References: fk.ReferencedColumn,
					BackRef:    true,
				},
			}
			if column.Unique {
				// A unique foreign key is one-to-one; the reverse side is
				// a single optional object.
				back.Name = backRefFieldName(name, fk.Column, onlyFK, true)
			} else {
				back.Name = backRefFieldName(name, fk.Column, onlyFK, false)
				back.List = true
				back.Required = true
			}
			target.Fields = append(target.Fields, back)
		}
	}

	// Table-based relations: list fields on both referenced types, the
	// junction itself stays hidden.
	junctionNames := make([]string, 0, len(junctions))
	for name := range junctions {
		junctionNames = append(junctionNames, name)
	}
	sort.Strings(junctionNames)

	// Parallel junctions over the same pair of types need the junction
	// table name in their field names to stay apart.
	pairCount := make(map[[2]string]int, len(junctionNames))
	for _, name := range junctionNames {
		j := junctions[name]
		pairCount[[2]string{j.left.ReferencedTable, j.right.ReferencedTable}]++
	}

	for _, name := range junctionNames {
		j := junctions[name]
		relName := typeName(name)
		self := j.selfJoin()
		shared := pairCount[[2]string{j.left.ReferencedTable, j.right.ReferencedTable}] > 1

		left := defs[j.left.ReferencedTable]
		right := defs[j.right.ReferencedTable]

		left.Fields = append(left.Fields, junctionField(relName, j.table, j.left, j.right, self, shared))
		right.Fields = append(right.Fields, junctionField(relName, j.table, j.right, j.left, self, shared))
	}

	types := make([]*TypeDef, 0, len(order))
	for _, name := range order {
		def := defs[name]
		if err := checkCollisions(def); err != nil {
			return nil, err
		}
		types = append(types, def)
	}

	return &ClassifiedModel{Model: model, Types: types}, nil
}

// junctionField builds the list field one referenced type gets for a
// table-based relation. own is the junction key pointing at this type,
// other the key pointing at the opposite type.
func junctionField(relName, table string, own, other *ForeignKey, selfJoin, shared bool) *Field {
	return &Field{
		Name:     junctionFieldName(table, other.ReferencedTable, other.Column, selfJoin, shared),
		Type:     typeName(other.ReferencedTable),
		List:     true,
		Required: true,
		Relation: &RelationRef{
			Kind:       TableRelation,
			Name:       relName,
			Table:      table,
			Column:     own.Column,
			References: other.Column,
			OnDelete:   own.OnDelete,
			OnUpdate:   own.OnUpdate,
		},
	}
}

// detectJunctions finds pure join tables: exactly two single-column NOT
// NULL foreign keys, no incoming foreign keys, and no columns beyond the
// key pair except primary-key identity columns. Anything else stays a
// first-class type.
func detectJunctions(model *Model) map[string]*junction {
	junctions := make(map[string]*junction)

	for _, name := range model.TableNames {
		fks := model.ForeignKeysFrom(name)
		if len(fks) != 2 || len(model.ForeignKeysInto(name)) != 0 {
			continue
		}
		if fks[0].Column == fks[1].Column {
			continue
		}

		table := model.Tables[name]
		eligible := true
		for _, fk := range fks {
			if col := table.Column(fk.Column); col.Nullable || col.IsList {
				eligible = false
				break
			}
		}
		if !eligible {
			continue
		}

		// Extra payload columns keep the table first-class; eliding them
		// would make the emitted document lossy.
		keyCols := map[string]bool{fks[0].Column: true, fks[1].Column: true}
		for _, col := range table.Columns {
			if keyCols[col.Name] || col.InPrimaryKey {
				continue
			}
			eligible = false
			break
		}
		if !eligible {
			continue
		}

		left, right := fks[0], fks[1]
		if right.ReferencedTable < left.ReferencedTable ||
			(right.ReferencedTable == left.ReferencedTable && right.Column < left.Column) {
			left, right = right, left
		}
		junctions[name] = &junction{table: name, left: left, right: right}
	}

	return junctions
}

// newTypeDef lays down the scalar fields of an emitted type in column
// order. Foreign-key columns are represented by their relation fields, not
// as scalars.
func newTypeDef(table *Table) *TypeDef {
	def := &TypeDef{
		Name:  typeName(table.Name),
		Table: table,
	}

	fkCols := make(map[string]bool, len(table.ForeignKeys))
	for _, fk := range table.ForeignKeys {
		fkCols[fk.Column] = true
	}

	singlePK := table.PrimaryKey != nil && len(table.PrimaryKey.Columns) == 1
	if table.PrimaryKey != nil && !singlePK {
		def.IDCols = table.PrimaryKey.Columns
	}

	for _, col := range table.Columns {
		if fkCols[col.Name] {
			continue
		}

		field := &Field{
			Name:     fieldName(col.Name),
			Type:     string(col.Type),
			List:     col.IsList,
			Required: !col.Nullable,
			IsUnique: col.Unique && !col.InPrimaryKey,
			Default:  col.Default,
		}
		if singlePK && col.InPrimaryKey {
			field.IsID = true
			field.Type = string(TypeID)
		}
		if field.Name != col.Name {
			field.DBName = col.Name
		}
		def.Fields = append(def.Fields, field)
	}

	return def
}

func checkCollisions(def *TypeDef) error {
	seen := make(map[string]bool, len(def.Fields))
	for _, f := range def.Fields {
		if seen[f.Name] {
			return fmt.Errorf("%w: field %q on type %s (table %s)",
				ErrNameCollision, f.Name, def.Name, def.Table.Name)
		}
		seen[f.Name] = true
	}
	return nil
}
