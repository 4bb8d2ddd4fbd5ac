package zkresidency

import (
	"bytes"
	"encoding/json"
	"errors"
)

// compactJSON re-encodes an opaque JSON value without insignificant
// whitespace
func compactJSON(data json.RawMessage) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("empty JSON value")
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
