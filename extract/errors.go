package extract

import "errors"

var (
	// ErrNotFound means the template path does not exist or is not a readable archive.
	ErrNotFound = errors.New("template not found")

	// ErrSchemaNotFound means the archive opened but holds no schema entry.
	ErrSchemaNotFound = errors.New("DataModelSchema not found inside template")

	// ErrSchemaParse means the schema entry could not be decoded or parsed.
	ErrSchemaParse = errors.New("failed to parse DataModelSchema")
)
