package checker

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/lifei6671/cliloc"
)

type Result struct {
	Path       string
	Entries    int
	Outcome    cliloc.Outcome
	ReadError  error
	Duplicates int

	// Templates counts entries with at least one placeholder.
	Templates int
	// MaxPlaceholders is the largest placeholder count of any entry.
	MaxPlaceholders int
	// UnpairedMarkers holds entries with an unmatched '~', id -> err.
	UnpairedMarkers map[int32]error
}

// HasIssues reports whether the file is anything other than a clean,
// complete decode.
func (r *Result) HasIssues() bool {
	return r.Outcome != cliloc.OutcomeComplete || r.Duplicates > 0 || len(r.UnpairedMarkers) > 0
}

// UnpairedIDs returns the IDs in UnpairedMarkers in ascending order.
func (r *Result) UnpairedIDs() []int32 {
	ids := make([]int32, 0, len(r.UnpairedMarkers))
	for id := range r.UnpairedMarkers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Check inspects a decoded table:
//  1. decode outcome and duplicate IDs
//  2. placeholder pairing of every template via cliloc.ValidateTemplate()
func Check(path string, table *cliloc.Table) *Result {
	res := &Result{
		Path:            path,
		Entries:         table.Len(),
		Outcome:         table.Outcome(),
		ReadError:       table.Err(),
		Duplicates:      table.Duplicates(),
		UnpairedMarkers: make(map[int32]error),
	}

	for _, e := range table.Entries() {
		if err := cliloc.ValidateTemplate(e.Text); err != nil {
			res.UnpairedMarkers[e.ID] = err
		}
		if n := len(cliloc.Placeholders(e.Text)); n > 0 {
			res.Templates++
			if n > res.MaxPlaceholders {
				res.MaxPlaceholders = n
			}
		}
	}
	return res
}

// Formats accepted by Export.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
	FormatCBOR = "cbor"
)

type exportFile struct {
	Entries []cliloc.Entry `json:"entries" yaml:"entries" cbor:"1,keyasint"`
}

// Export writes every entry of table to w, ordered by ID.
func Export(w io.Writer, table *cliloc.Table, format string) error {
	doc := exportFile{Entries: table.Entries()}

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("yaml encode: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("json encode: %w", err)
		}
		return nil
	case FormatCBOR:
		mode, err := cbor.CoreDetEncOptions().EncMode()
		if err != nil {
			return fmt.Errorf("cbor mode: %w", err)
		}
		if err := mode.NewEncoder(w).Encode(doc); err != nil {
			return fmt.Errorf("cbor encode: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}
