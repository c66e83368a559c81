package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// CompileSchema compiles a schema document built in code under the given resource name.
func CompileSchema(name string, doc map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// validateAgainst checks data against schema. Violations are flattened to
// "<instance path>: <message>" pairs so a single log line names every bad field.
func validateAgainst(schema *jsonschema.Schema, data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	err := schema.Validate(v)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	var leaves []string
	collectViolations(verr, &leaves)
	return fmt.Errorf("json does not match schema: %s", strings.Join(leaves, "; "))
}

func collectViolations(e *jsonschema.ValidationError, out *[]string) {
	if len(e.Causes) == 0 {
		loc := e.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		*out = append(*out, loc+": "+e.Message)
		return
	}
	for _, c := range e.Causes {
		collectViolations(c, out)
	}
}
