package normalizer

import (
	"bytes"
	"encoding/json"
)

type placeholder struct {
	Error string `json:"error"`
	Raw   string `json:"raw"`
}

// JSON returns the unwrapped document. Invalid payloads are replaced by
// {"error":"Invalid format","raw":...} so the view always has something to show.
func (d Document) JSON() json.RawMessage {
	if d.Kind == KindInvalid {
		b, err := json.Marshal(placeholder{Error: invalidField, Raw: d.Original})
		if err != nil {
			return json.RawMessage(`{"error":"Invalid format"}`)
		}
		return b
	}
	if d.Raw == "" {
		return json.RawMessage("{}")
	}
	return json.RawMessage(d.Raw)
}

// Pretty is JSON indented by two spaces with key order untouched.
func (d Document) Pretty() ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, d.JSON(), "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
