package table

import "errors"

var (
	// ErrNoField is returned when a field index or name does not exist.
	ErrNoField = errors.New("table: no such field")

	// ErrIndex is returned for a row index outside [0, RowCount()).
	ErrIndex = errors.New("table: row index out of range")

	// ErrFieldName is returned for an empty or over-long field name.
	ErrFieldName = errors.New("table: invalid field name")

	// ErrDuplicateField is returned when a field name is already in use.
	ErrDuplicateField = errors.New("table: duplicate field name")

	// ErrPrimaryKey is returned when a second primary key is declared.
	ErrPrimaryKey = errors.New("table: primary key already defined")

	// ErrBadType is returned for an unknown field type.
	ErrBadType = errors.New("table: unknown field type")

	// ErrBadKey is returned for an unknown key kind.
	ErrBadKey = errors.New("table: unknown key kind")

	// ErrBadLiteral is returned when a literal does not parse as its field type.
	ErrBadLiteral = errors.New("table: malformed literal")

	// ErrFieldCount is returned when a record has more literals than fields.
	ErrFieldCount = errors.New("table: too many literals")

	// ErrNoFields is returned when a record is added to a table without fields.
	ErrNoFields = errors.New("table: table has no fields")

	// ErrSchemaMismatch is returned by Join when field types differ.
	ErrSchemaMismatch = errors.New("table: schema mismatch")
)
