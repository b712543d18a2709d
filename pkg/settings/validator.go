package settings

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Validate validates a settings blob against the JSON schema
func Validate(data []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(Schema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("failed to validate schema: %w", err)
	}

	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return fmt.Errorf("settings file is not valid: %s", strings.Join(problems, "; "))
	}

	return nil
}
