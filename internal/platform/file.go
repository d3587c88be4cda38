package platform

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"sigs.k8s.io/yaml"

	oerrors "github.com/azp-tools/matrix/internal/errors"
)

//go:embed schema/registry.schema.json
var registrySchemaJSON []byte

//go:embed schema/platforms.yaml
var defaultRegistryYAML []byte

// DefaultLocation is the location reported for the embedded registry.
const DefaultLocation = "<embedded>"

const schemaURL = "registry.schema.json"

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(registrySchemaJSON)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
})

// Default returns the embedded registry.
func Default() (*Registry, error) {
	return Parse(defaultRegistryYAML, DefaultLocation)
}

// DefaultYAML returns the embedded registry source, for `registry show --raw`
// and as a starting point for operators writing their own file.
func DefaultYAML() []byte {
	return bytes.Clone(defaultRegistryYAML)
}

// Load reads and validates a registry file. An empty path loads the embedded
// registry.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, oerrors.NewNotFoundError("registry file does not exist", path,
				"Set registryFile in the config or pass --registry-file")
		}
		return nil, fmt.Errorf("reading registry file: %w", err)
	}

	return Parse(data, path)
}

// Parse validates data against the registry schema, then builds a Registry.
// location is only used in error messages.
func Parse(data []byte, location string) (*Registry, error) {
	spec, err := ParseSpec(data, location)
	if err != nil {
		return nil, err
	}

	reg, err := NewRegistry(*spec)
	if err != nil {
		return nil, &oerrors.DetailError{
			Type:     "invalid platform registry",
			Message:  err.Error(),
			Location: location,
			Hint:     "Each platform may appear in only one table, and a replacement must be an expected platform",
			Cause:    err,
		}
	}
	return reg, nil
}

// ParseSpec decodes and schema-validates registry content without checking
// the cross-table invariants.
func ParseSpec(data []byte, location string) (*Spec, error) {
	raw, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, oerrors.NewValidationError(fmt.Sprintf("registry is not valid YAML: %v", err), location, "", "")
	}

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decoding registry: %w", err)
	}

	schema, err := compiledSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(payload); err != nil {
		return nil, oerrors.NewValidationError(err.Error(), location, "",
			"Entries need an id and a group; deprecated entries may add a replacement")
	}

	var spec Spec
	if err := json.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("decoding registry: %w", err)
	}
	return &spec, nil
}
