package introspect

// ScalarType is the fixed set of datamodel scalar types native database
// types are normalized into.
type ScalarType string

const (
	TypeID       ScalarType = "ID"
	TypeString   ScalarType = "String"
	TypeInt      ScalarType = "Int"
	TypeFloat    ScalarType = "Float"
	TypeBoolean  ScalarType = "Boolean"
	TypeDateTime ScalarType = "DateTime"
	TypeJSON     ScalarType = "Json"
	TypeEnum     ScalarType = "Enum"
)

// ReferentialAction is the normalized ON DELETE / ON UPDATE rule of a
// foreign key.
type ReferentialAction string

const (
	ActionCascade  ReferentialAction = "CASCADE"
	ActionSetNull  ReferentialAction = "SET NULL"
	ActionRestrict ReferentialAction = "RESTRICT"
	ActionNoAction ReferentialAction = "NO ACTION"
)

// Ident returns the action as an SDL enum identifier.
func (a ReferentialAction) Ident() string {
	switch a {
	case ActionSetNull:
		return "SET_NULL"
	case ActionNoAction:
		return "NO_ACTION"
	default:
		return string(a)
	}
}

// Column is a normalized table column.
type Column struct {
	Name         string
	Position     int
	Type         ScalarType
	NativeType   string
	Nullable     bool
	IsList       bool
	Default      *string
	InPrimaryKey bool
	Unique       bool
}

// PrimaryKey is a primary key constraint with its ordered column set.
type PrimaryKey struct {
	Name    string
	Columns []string
}

// ForeignKey is a validated single-column foreign key edge.
type ForeignKey struct {
	Name             string
	Table            string
	Column           string
	ReferencedTable  string
	ReferencedColumn string
	OnDelete         ReferentialAction
	OnUpdate         ReferentialAction
}

// Table is a normalized table with its columns in ordinal order.
type Table struct {
	Name        string
	Columns     []*Column
	PrimaryKey  *PrimaryKey
	ForeignKeys []*ForeignKey
}

// Column returns the named column, or nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// WarningKind classifies non-fatal structural findings.
type WarningKind string

const (
	WarningUnsupportedType    WarningKind = "unsupported_type"
	WarningDanglingForeignKey WarningKind = "dangling_foreign_key"
	WarningCompositeKey       WarningKind = "composite_foreign_key"
)

// Warning records a non-fatal structural finding. The affected element is
// excluded or degraded; the run still produces output.
type Warning struct {
	Kind    WarningKind
	Table   string
	Column  string
	Message string
}

// Model is the in-memory relational model assembled by the builder.
// Adjacency maps index foreign keys by owning and by referenced table so
// classification is a plain lookup.
type Model struct {
	Tables     map[string]*Table
	TableNames []string // sorted
	bySource   map[string][]*ForeignKey
	byTarget   map[string][]*ForeignKey
	Warnings   []Warning
}

// ForeignKeysFrom returns the validated foreign keys owned by table.
func (m *Model) ForeignKeysFrom(table string) []*ForeignKey {
	return m.bySource[table]
}

// ForeignKeysInto returns the validated foreign keys referencing table.
func (m *Model) ForeignKeysInto(table string) []*ForeignKey {
	return m.byTarget[table]
}

// RelationKind tags how a foreign-key edge is rendered.
type RelationKind int

const (
	// InlineRelation renders as an object field on the owning type plus a
	// back-reference on the referenced type.
	InlineRelation RelationKind = iota
	// TableRelation renders as list fields on both referenced types, with
	// the junction table elided from output.
	TableRelation
)

// RelationRef carries the physical-schema annotation of a relation field.
type RelationRef struct {
	Kind       RelationKind
	Name       string // relation identifier; empty for unnamed inline relations
	Table      string // junction table, table relations only
	Column     string // fk column (inline) or this side's junction column
	References string // referenced column (inline) or the opposite junction column
	OnDelete   ReferentialAction
	OnUpdate   ReferentialAction
	BackRef    bool // set on the non-owning side of an inline relation
}

// Field is an emitted SDL field, scalar or relation.
type Field struct {
	Name     string
	Type     string // scalar name or target type name
	List     bool
	Required bool
	IsID     bool
	IsUnique bool
	Default  *string
	DBName   string // underlying column when it differs from Name
	Relation *RelationRef
}

// TypeDef is an emitted SDL type: scalar fields in column order followed by
// relation fields in classification order.
type TypeDef struct {
	Name   string
	Table  *Table
	IDCols []string // composite primary key columns, if any
	Fields []*Field
}

// ClassifiedModel is the classifier output the emitter renders. Types are
// ordered by table name; junction tables are elided.
type ClassifiedModel struct {
	Model *Model
	Types []*TypeDef
}

// Result is the outcome of a successful introspection run.
type Result struct {
	SDL        string
	TableCount int
	Warnings   []Warning
}
