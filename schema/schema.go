// Package schema embeds the committed Draft 2020-12 JSON-Schema documents
// for the wire types this module exchanges over HTTP, and compiles them
// once at package initialization so a malformed committed document fails
// fast at process startup rather than at the first request.
package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed work_order.schema.json
var workOrderJSON []byte

//go:embed receipt.schema.json
var receiptJSON []byte

// Name identifies one of the two schema documents this package serves.
type Name string

const (
	WorkOrder Name = "work_order"
	Receipt   Name = "receipt"
)

var documents = map[Name][]byte{
	WorkOrder: workOrderJSON,
	Receipt:   receiptJSON,
}

var compiled map[Name]*jsonschema.Schema

func init() {
	compiled = make(map[Name]*jsonschema.Schema, len(documents))
	for name, raw := range documents {
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			panic(fmt.Sprintf("schema: committed document %q does not parse as JSON: %v", name, err))
		}
		url := string(name) + ".schema.json"
		c := jsonschema.NewCompiler()
		if err := c.AddResource(url, doc); err != nil {
			panic(fmt.Sprintf("schema: committed document %q is not a valid resource: %v", name, err))
		}
		sch, err := c.Compile(url)
		if err != nil {
			panic(fmt.Sprintf("schema: committed document %q does not compile: %v", name, err))
		}
		compiled[name] = sch
	}
}

// Document returns the raw, byte-identical committed JSON Schema document
// for name, and whether name is recognized.
func Document(name Name) ([]byte, bool) {
	raw, ok := documents[name]
	return raw, ok
}

// Validate checks instance (already decoded into Go values via
// encoding/json, e.g. map[string]any) against the named schema.
func Validate(name Name, instance any) error {
	sch, ok := compiled[name]
	if !ok {
		return fmt.Errorf("schema: unknown document %q", name)
	}
	return sch.Validate(instance)
}
