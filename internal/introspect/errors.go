package introspect

import "errors"

var (
	// ErrEmptySchema reports that the target schema holds no tables.
	// Callers distinguish this from introspection failure.
	ErrEmptySchema = errors.New("schema contains no tables")

	// ErrNameCollision reports a generated field name clash the
	// disambiguation rules could not resolve. The run aborts rather
	// than emit an ambiguous document.
	ErrNameCollision = errors.New("field name collision")
)
