package schema

import (
	"embed"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

const (
	InputSchema  = "input.schema.json"
	RecordSchema = "record.schema.json"
)

//go:embed schemas/*.schema.json
var builtin embed.FS

// ValidateBuiltin checks doc against one of the schemas shipped with the binary.
func ValidateBuiltin(name string, doc any) ([]string, error) {
	raw, err := builtin.ReadFile("schemas/" + name)
	if err != nil {
		return nil, fmt.Errorf("load schema %s: %w", name, err)
	}
	return validate(name, gojsonschema.NewBytesLoader(raw), doc)
}

func validate(name string, schemaLoader gojsonschema.JSONLoader, doc any) ([]string, error) {
	docLoader := gojsonschema.NewGoLoader(doc)
	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return nil, fmt.Errorf("validate %s: %w", name, err)
	}
	if result.Valid() {
		return nil, nil
	}

	errs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, e.String())
	}
	return errs, nil
}
