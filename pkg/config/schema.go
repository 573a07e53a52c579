package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var configSchema []byte

// ErrSchemaViolation indicates the config document does not match the
// embedded JSON schema.
var ErrSchemaViolation = errors.New("config schema violation")

// validateSchema checks the raw config document against the embedded
// schema before unmarshalling, so typos surface as config errors rather
// than silently ignored keys.
func validateSchema(settings map[string]any) error {
	document, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode config for validation: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(configSchema),
		gojsonschema.NewBytesLoader(document),
	)
	if err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, issue := range result.Errors() {
		details = append(details, issue.String())
	}

	return fmt.Errorf("%w: %s", ErrSchemaViolation, strings.Join(details, "; "))
}
