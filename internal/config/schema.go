package config

import (
	"encoding/json"
	"fmt"

	pkgconfig "github.com/goran-ethernal/GnosisPayIndexor/pkg/config"
	"github.com/invopop/jsonschema"
)

// JSONSchema returns the JSON schema of the configuration file, indented for printing.
func JSONSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		FieldNameTag:               "json",
		RequiredFromJSONSchemaTags: true,
	}

	schema := r.Reflect(&pkgconfig.Config{})
	schema.Title = "Gnosis Pay indexer configuration"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config schema: %w", err)
	}

	return data, nil
}
