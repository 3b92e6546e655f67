package registry

import (
	"os"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	"gopkg.in/yaml.v3"

	apperrors "github.com/standardbeagle/tmplctl/internal/errors"
)

// manifestSchema declares the required shape of a template.yaml /
// brick.yaml manifest: {name, version, author, description, type,
// platform, framework, complexity, maturity, tags[],
// dependencies[{name, version}]}.
var manifestSchema = &jsonschema.Schema{
	Type: "object",
	Properties: map[string]*jsonschema.Schema{
		"name":        {Type: "string"},
		"version":     {Type: "string"},
		"author":      {Type: "string"},
		"description": {Type: "string"},
		"type":        {Type: "string"},
		"platform":    {Type: "string"},
		"framework":   {Type: "string"},
		"complexity":  {Type: "string"},
		"maturity":    {Type: "string"},
		"license":     {Type: "string"},
		"tags": {
			Type:  "array",
			Items: &jsonschema.Schema{Type: "string"},
		},
		"dependencies": {
			Type: "array",
			Items: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"name":    {Type: "string"},
					"version": {Type: "string"},
				},
				Required: []string{"name"},
			},
		},
	},
	Required: []string{"name", "version"},
}

var (
	resolvedOnce   sync.Once
	resolvedSchema *jsonschema.Resolved
	resolveErr     error
)

func resolved() (*jsonschema.Resolved, error) {
	resolvedOnce.Do(func() {
		resolvedSchema, resolveErr = manifestSchema.Resolve(nil)
	})
	return resolvedSchema, resolveErr
}

// ValidateManifestFile decodes path into a generic document and
// validates it against manifestSchema, independently of the typed
// Manifest decode in manifest.go (which tolerates missing/extra
// fields YAML-style; this enforces the required fields and the
// declared field types, and accepts undeclared fields).
func ValidateManifestFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return apperrors.NewResolverError(apperrors.KindMetadataUnavailable, path, "manifest decode failed: "+err.Error(), err)
	}

	r, err := resolved()
	if err != nil {
		return err
	}
	if err := r.Validate(doc); err != nil {
		return apperrors.NewResolverError(apperrors.KindMetadataUnavailable, path, "manifest schema validation failed: "+err.Error(), err)
	}
	return nil
}
