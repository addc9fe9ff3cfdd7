package archive

import (
	"fmt"
	"sort"
	"strings"

	"github.com/law-makers/rasff/internal/engine"
)

// SchemaPolicy decides what happens when an archive's columns differ from
// the columns of the rows being merged into it.
type SchemaPolicy string

const (
	// SchemaReject fails the merge and leaves the archive untouched.
	SchemaReject SchemaPolicy = "reject"
	// SchemaUnion keeps the archive's columns, appends new ones and
	// backfills missing cells with empty strings.
	SchemaUnion SchemaPolicy = "union"
)

// ParseSchemaPolicy validates a policy name. Empty selects SchemaReject.
func ParseSchemaPolicy(s string) (SchemaPolicy, error) {
	switch p := SchemaPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return SchemaReject, nil
	case SchemaReject, SchemaUnion:
		return p, nil
	default:
		return "", engine.NewEngineError(engine.ErrCodeValidation,
			fmt.Sprintf("unknown schema policy %q (must be reject or union)", s), nil)
	}
}

// schemaDiff lists the columns present on only one side
type schemaDiff struct {
	missing []string // in the archive, not in the incoming rows
	extra   []string // in the incoming rows, not in the archive
}

func (d schemaDiff) empty() bool {
	return len(d.missing) == 0 && len(d.extra) == 0
}

func diffColumns(existing, incoming []string) schemaDiff {
	var d schemaDiff
	in := toSet(incoming)
	ex := toSet(existing)
	for _, c := range existing {
		if !in[c] {
			d.missing = append(d.missing, c)
		}
	}
	for _, c := range incoming {
		if !ex[c] {
			d.extra = append(d.extra, c)
		}
	}
	return d
}

// reconcile returns the column order for the merged archive and the columns
// that had to be backfilled for some rows. Column order follows the archive;
// the same set in a different order is not a mismatch.
func reconcile(policy SchemaPolicy, existing, incoming []string) ([]string, []string, error) {
	d := diffColumns(existing, incoming)
	if d.empty() {
		return existing, nil, nil
	}

	if policy != SchemaUnion {
		return nil, nil, engine.NewEngineError(engine.ErrCodeSchemaMismatch,
			fmt.Sprintf("archive columns %v, scraped columns %v", existing, incoming), nil).
			WithDetail("missing", d.missing).
			WithDetail("extra", d.extra)
	}

	columns := make([]string, 0, len(existing)+len(d.extra))
	columns = append(columns, existing...)
	columns = append(columns, d.extra...)

	backfilled := append(append([]string{}, d.missing...), d.extra...)
	sort.Strings(backfilled)
	return columns, backfilled, nil
}

func toSet(cols []string) map[string]bool {
	set := make(map[string]bool, len(cols))
	for _, c := range cols {
		set[c] = true
	}
	return set
}
