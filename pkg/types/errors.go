package types

import (
	"errors"
	"fmt"
)

// ErrSchemaDefinition is matched (errors.Is) by every SchemaDefinitionError.
var ErrSchemaDefinition = errors.New("types: schema definition error")

// SchemaDefinitionError reports structural misuse while building a tree, such as
// defining the same property twice or referencing one that does not exist.
// Logical invalidity is not an error; it is carried by Property.Invalid.
type SchemaDefinitionError struct {
	Path   string
	Reason string
}

func (e *SchemaDefinitionError) Error() string {
	if e.Path == "" {
		return "types: " + e.Reason
	}
	return fmt.Sprintf("types: property %q: %s", e.Path, e.Reason)
}

// Is lets callers match any definition error with ErrSchemaDefinition.
func (e *SchemaDefinitionError) Is(target error) bool {
	return target == ErrSchemaDefinition
}

func definitionError(path, format string, args ...any) error {
	return &SchemaDefinitionError{
		Path:   path,
		Reason: fmt.Sprintf(format, args...),
	}
}

// atPath attaches path to a definition error raised while building a type
// node, keeping its reason.
func atPath(path string, err error) error {
	var defErr *SchemaDefinitionError
	if errors.As(err, &defErr) && defErr.Path == "" {
		return &SchemaDefinitionError{Path: path, Reason: defErr.Reason}
	}
	return fmt.Errorf("types: property %q: %w", path, err)
}
