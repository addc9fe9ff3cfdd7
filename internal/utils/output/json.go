package output

import (
	"encoding/json"
	"io"

	"github.com/law-makers/rasff/pkg/models"
)

// WriteJSON writes the run summary as indented JSON, for scripting against
// the CLI with --json.
func WriteJSON(w io.Writer, summary *models.RunSummary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
