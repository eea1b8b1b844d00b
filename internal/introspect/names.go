package introspect

import (
	"strings"

	"github.com/jinzhu/inflection"
)

// typeName maps a table name to its generated SDL type name.
func typeName(table string) string {
	return pascalCase(table)
}

// fieldName maps a column name to its generated SDL field name.
func fieldName(column string) string {
	return camelCase(column)
}

// relationFieldName maps a foreign-key column to the name of its inline
// relation field, dropping the conventional _id suffix.
func relationFieldName(column string) string {
	return camelCase(columnBase(column))
}

// backRefFieldName names the reverse field a target type gets for an
// inline relation. With a single foreign key from source into the target
// the pluralized source table is unambiguous; several keys into the same
// target are disambiguated with the column base (authorPosts, editorPosts).
func backRefFieldName(sourceTable, column string, onlyFK, singular bool) string {
	base := sourceTable
	if !singular {
		base = inflection.Plural(sourceTable)
	}
	if onlyFK {
		return camelCase(base)
	}
	return camelCase(columnBase(column) + "_" + base)
}

// junctionFieldName names one side of a table-based relation. Both sides
// of a self-join reference the same table, so the opposite junction column
// is the only stable distinguisher. When several junction tables join the
// same pair of types the junction table name prefixes the field
// (likesPosts, bookmarksPosts).
func junctionFieldName(junctionTable, otherTable, otherColumn string, selfJoin, shared bool) string {
	base := otherTable
	if selfJoin {
		base = columnBase(otherColumn)
	}
	name := inflection.Plural(base)
	if shared {
		name = junctionTable + "_" + name
	}
	return camelCase(name)
}

// columnBase strips the foreign-key suffix from a column name.
func columnBase(column string) string {
	base := strings.TrimSuffix(column, "_id")
	base = strings.TrimSuffix(base, "Id")
	if base == "" {
		return column
	}
	return base
}

func pascalCase(name string) string {
	var b strings.Builder
	for _, p := range splitWords(name) {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

func camelCase(name string) string {
	pascal := pascalCase(name)
	if pascal == "" {
		return pascal
	}
	return strings.ToLower(pascal[:1]) + pascal[1:]
}

func splitWords(name string) []string {
	var parts []string
	for _, p := range strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == ' ' || r == '.'
	}) {
		parts = append(parts, p)
	}
	if len(parts) == 0 {
		return []string{name}
	}
	return parts
}
