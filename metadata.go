package ngff

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/blang/semver"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// AttrsKey is the store key of a group's attribute document, which holds
// the multiscale descriptor for a pyramid group.
const AttrsKey = ".zattrs"

// Dataset is one entry of the multiscale descriptor's dataset list,
// exposed exactly as declared. Beyond the required "path", producers
// attach arbitrary provenance keys, which pass through unmodified.
type Dataset map[string]any

// Path returns the dataset's storage path token.
func (d Dataset) Path() string {
	p, _ := d["path"].(string)
	return p
}

// multiscale is the parsed pyramid descriptor. The dataset order is
// authoritative for mapping level indices to storage locations; entry 0
// is the full-resolution array.
type multiscale struct {
	Version  string
	Datasets []Dataset
}

// multiscalesSchema is the structural contract enforced on descriptors at
// open time. It is deliberately permissive about extra keys: provenance
// metadata must survive untouched.
const multiscalesSchema = `{
    "$schema": "https://json-schema.org/draft/2020-12/schema",
    "type": "object",
    "required": ["multiscales"],
    "properties": {
        "multiscales": {
            "type": "array",
            "minItems": 1,
            "items": {
                "type": "object",
                "required": ["datasets"],
                "properties": {
                    "version": {"type": "string"},
                    "datasets": {
                        "type": "array",
                        "minItems": 1,
                        "items": {
                            "type": "object",
                            "required": ["path"],
                            "properties": {
                                "path": {"type": "string", "minLength": 1}
                            }
                        }
                    }
                }
            }
        }
    }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource("multiscales.schema.json",
			strings.NewReader(multiscalesSchema)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile("multiscales.schema.json")
	})
	return schema, schemaErr
}

// parseMultiscales validates and parses a pyramid group's attribute
// document. Only the first multiscale entry is consumed; converters write
// exactly one.
func parseMultiscales(raw []byte) (*multiscale, error) {
	sch, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("multiscales schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("attribute document: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return nil, fmt.Errorf("multiscale descriptor: %w", err)
	}

	var attrs struct {
		Multiscales []struct {
			Version  string    `json:"version"`
			Datasets []Dataset `json:"datasets"`
		} `json:"multiscales"`
	}
	if err := json.Unmarshal(raw, &attrs); err != nil {
		return nil, fmt.Errorf("attribute document: %w", err)
	}
	entry := attrs.Multiscales[0]

	if entry.Version != "" {
		v, err := semver.ParseTolerant(entry.Version)
		if err != nil {
			return nil, fmt.Errorf("multiscale version %q: %w", entry.Version, err)
		}
		if v.Major > 0 {
			return nil, fmt.Errorf("unsupported multiscale version %q", entry.Version)
		}
	}
	return &multiscale{Version: entry.Version, Datasets: entry.Datasets}, nil
}
