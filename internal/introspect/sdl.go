package introspect

import (
	"fmt"
	"strconv"
	"strings"
)

// Emit renders the classified model as SDL text. Output is a pure function
// of the model: repeated runs over an unchanged schema are byte-identical.
func Emit(cm *ClassifiedModel) string {
	var b strings.Builder

	for i, def := range cm.Types {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("type " + def.Name)
		if def.Table.Name != def.Name {
			fmt.Fprintf(&b, " @db(name: %q)", def.Table.Name)
		}
		b.WriteString(" {\n")

		for _, f := range def.Fields {
			writeField(&b, f)
		}
		if len(def.IDCols) > 0 {
			fmt.Fprintf(&b, "  @@id(columns: [%s])\n", quotedList(def.IDCols))
		}

		b.WriteString("}\n")
	}

	return b.String()
}

func writeField(b *strings.Builder, f *Field) {
	b.WriteString("  " + f.Name + ": " + typeRef(f))

	if f.IsID {
		b.WriteString(" @id")
	}
	if f.IsUnique {
		b.WriteString(" @unique")
	}
	if f.Default != nil {
		b.WriteString(" @default(value: " + defaultLiteral(f) + ")")
	}
	// Inline back-references carry no annotation; the owning side fully
	// describes the underlying key.
	if f.Relation != nil && !f.Relation.BackRef {
		b.WriteString(" " + relationDirective(f.Relation))
	}
	if f.DBName != "" {
		fmt.Fprintf(b, " @db(name: %q)", f.DBName)
	}

	b.WriteString("\n")
}

func typeRef(f *Field) string {
	if f.List {
		ref := "[" + f.Type + "!]"
		if f.Required {
			ref += "!"
		}
		return ref
	}
	if f.Required {
		return f.Type + "!"
	}
	return f.Type
}

func relationDirective(r *RelationRef) string {
	var args []string
	if r.Name != "" {
		args = append(args, fmt.Sprintf("name: %q", r.Name))
	}
	if r.Table != "" {
		args = append(args, fmt.Sprintf("table: %q", r.Table))
	}
	args = append(args,
		fmt.Sprintf("column: %q", r.Column),
		fmt.Sprintf("references: %q", r.References),
	)
	if r.OnDelete != ActionNoAction {
		args = append(args, "onDelete: "+r.OnDelete.Ident())
	}
	if r.OnUpdate != ActionNoAction {
		args = append(args, "onUpdate: "+r.OnUpdate.Ident())
	}
	return "@relation(" + strings.Join(args, ", ") + ")"
}

func defaultLiteral(f *Field) string {
	v := *f.Default
	switch ScalarType(f.Type) {
	case TypeInt:
		if _, err := strconv.ParseInt(v, 10, 64); err == nil {
			return v
		}
	case TypeFloat:
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			return v
		}
	case TypeBoolean:
		switch strings.ToLower(v) {
		case "true", "t", "1":
			return "true"
		case "false", "f", "0":
			return "false"
		}
	}
	return strconv.Quote(v)
}

func quotedList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = strconv.Quote(s)
	}
	return strings.Join(quoted, ", ")
}
