package archive

import (
	"encoding/json"
	"fmt"
	"os"
)

// WriteSidecar persists v as pretty-printed JSON at path. Non-ASCII
// text is written verbatim, not escaped.
func WriteSidecar(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create sidecar: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode sidecar: %w", err)
	}
	return nil
}
