package display

import (
	"encoding/json"
)

// MarshalJSON indents for humans. Set Compact for one-line output, e.g.
// when piping many documents into jq -c.
func MarshalJSON(v interface{}) ([]byte, error) {
	if Compact {
		return json.Marshal(v)
	}
	return json.MarshalIndent(v, "", "  ")
}

// Compact switches MarshalJSON to single-line output
var Compact bool
