package render

import (
	"encoding/json"
	"io"

	"github.com/revelaction/squadprep/pipeline"
)

// JSONRenderer writes run reports as JSON to a writer.
type JSONRenderer struct {
	W io.Writer
}

// NewJSONRenderer creates a JSONRenderer writing to w.
func NewJSONRenderer(w io.Writer) *JSONRenderer {
	return &JSONRenderer{W: w}
}

// Render serializes the reports as a JSON array.
func (r *JSONRenderer) Render(reports []pipeline.Report) {
	if reports == nil {
		reports = []pipeline.Report{}
	}
	enc := json.NewEncoder(r.W)
	enc.SetIndent("", "  ")
	enc.Encode(reports)
}

// compile-time interface check
var _ Renderer = (*JSONRenderer)(nil)
