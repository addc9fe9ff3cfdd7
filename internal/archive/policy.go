package archive

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/law-makers/rasff/pkg/models"
)

// DefaultExt is appended to destinations given without an extension
const DefaultExt = ".csv"

// ResolvePath returns the file a run for date is persisted to.
//
// PolicyMerge always uses base. PolicyDated stamps the date before the
// extension: "alerts.csv" becomes "alerts_2025-03-19.csv".
func ResolvePath(policy models.Policy, base string, date time.Time) (string, error) {
	if base == "" {
		return "", fmt.Errorf("destination path is required")
	}
	if filepath.Ext(base) == "" {
		base += DefaultExt
	}

	switch policy {
	case models.PolicyMerge, "":
		return base, nil
	case models.PolicyDated:
		ext := filepath.Ext(base)
		return strings.TrimSuffix(base, ext) + "_" + date.Format("2006-01-02") + ext, nil
	default:
		return "", fmt.Errorf("unknown persistence policy %q (must be merge or dated)", policy)
	}
}
