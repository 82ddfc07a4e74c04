package ipc

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xeipuuv/gojsonschema"

	"github.com/pithecene-io/ccshost/types"
)

// requestSchemaJSON describes every accepted request shape.
// Unknown fields are ignored; missing or mistyped required fields are not.
const requestSchemaJSON = `{
  "type": "object",
  "required": ["action"],
  "properties": {
    "action": {"type": "string", "enum": ["save", "ping"]}
  },
  "oneOf": [
    {
      "properties": {
        "action": {"enum": ["save"]},
        "path": {"type": "string"},
        "content": {"type": "string"}
      },
      "required": ["action", "path", "content"]
    },
    {
      "properties": {
        "action": {"enum": ["ping"]}
      },
      "required": ["action"]
    }
  ]
}`

var requestSchema = mustCompileSchema(requestSchemaJSON)

func mustCompileSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic("ipc: invalid request schema: " + err.Error())
	}
	return schema
}

// SchemaError lists the reasons a payload failed request validation.
type SchemaError struct {
	Details []string
}

func (e *SchemaError) Error() string {
	return "request schema validation failed: " + strings.Join(e.Details, "; ")
}

// ValidateRequest checks payload against the request schema.
func ValidateRequest(payload []byte) error {
	result, err := requestSchema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return &SchemaError{Details: details}
}

// actionProbe peeks at the discriminator without a full decode.
type actionProbe struct {
	Action types.Action `json:"action"`
}

// DecodeRequest decodes a frame payload into a typed request.
// Discriminates on the "action" field. Any failure is a FrameErrorDecode.
func DecodeRequest(payload []byte) (types.Request, error) {
	if !utf8.Valid(payload) {
		return nil, &FrameError{Kind: FrameErrorDecode, Msg: "payload is not valid UTF-8"}
	}

	if err := ValidateRequest(payload); err != nil {
		return nil, &FrameError{Kind: FrameErrorDecode, Msg: "failed to validate request", Err: err}
	}

	var probe actionProbe
	if err := json.Unmarshal(payload, &probe); err != nil {
		return nil, &FrameError{Kind: FrameErrorDecode, Msg: "failed to decode request action", Err: err}
	}

	switch probe.Action {
	case types.ActionSave:
		var req types.SaveRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, &FrameError{Kind: FrameErrorDecode, Msg: "failed to decode save request", Err: err}
		}
		return &req, nil
	case types.ActionPing:
		return &types.PingRequest{}, nil
	default:
		return nil, &FrameError{
			Kind: FrameErrorDecode,
			Msg:  fmt.Sprintf("unknown action %q", probe.Action),
		}
	}
}
