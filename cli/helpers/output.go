package helpers

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/tidwall/pretty"
)

// PrettyJSON indents raw JSON, optionally with terminal colors
func PrettyJSON(data []byte, color bool) []byte {
	out := pretty.PrettyOptions(data, &pretty.Options{Width: 80, Indent: "  "})
	if color {
		out = pretty.Color(out, nil)
	}
	return out
}

// WriteJSON encodes v as indented JSON on w
func WriteJSON(w io.Writer, v any, color bool) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	if _, err := w.Write(PrettyJSON(data, color)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
