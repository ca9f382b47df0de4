package repo

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const taskFileSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"properties": {
			"task_id": {"type": "string"},
			"title": {"type": "string"},
			"description": {"type": "string"},
			"status": {"type": "string"}
		}
	}
}`

var taskFile = jsonschema.MustCompileString("tasks.schema.json", taskFileSchema)

// validateTaskFile checks raw file contents before they are decoded into tasks.
func validateTaskFile(data []byte) error {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: could not decode: %v", ErrorInvalidFormat, err)
	}
	if _, ok := doc.([]interface{}); !ok {
		return fmt.Errorf("%w: expected list at top level", ErrorInvalidFormat)
	}
	if err := taskFile.Validate(doc); err != nil {
		return fmt.Errorf("%w: %s", ErrorInvalidFormat, schemaMessage(err))
	}
	return nil
}

func schemaMessage(err error) string {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err.Error()
	}
	var msgs []string
	collectSchemaMessages(ve, &msgs)
	return strings.Join(msgs, "; ")
}

func collectSchemaMessages(ve *jsonschema.ValidationError, out *[]string) {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		*out = append(*out, fmt.Sprintf("%s: %s", loc, ve.Message))
		return
	}
	for _, cause := range ve.Causes {
		collectSchemaMessages(cause, out)
	}
}
