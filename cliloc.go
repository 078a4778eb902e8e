// Package cliloc reads client localization resource files and renders the
// templates they contain.
//
// A resource file maps integer IDs to template strings. Templates carry
// ~name~ placeholders that are filled from a tab-delimited argument list;
// an argument of the form #<id> is replaced by the text of another entry.
package cliloc

import (
	"errors"
	"unicode/utf8"
)

const (
	// MaxEntry is the highest entry ID known to ship with the client.
	MaxEntry = 3011032

	// PixelsPerCharacter is the average glyph width used to estimate how
	// much horizontal space a rendered string needs.
	PixelsPerCharacter = 7

	// NotLoadedText is returned in place of any text when the resource
	// file could not be loaded.
	NotLoadedText = "CliLoc not loaded!"

	// DefaultFileName is the English resource file.
	DefaultFileName = "cliloc.enu"
)

var (
	// ErrUnavailable reports that the resource file does not exist.
	ErrUnavailable = errors.New("cliloc: resource file unavailable")
	// ErrNotFound reports that an ID has no entry.
	ErrNotFound = errors.New("cliloc: entry not found")
	// ErrUnpairedMarker reports a '~' without a closing partner.
	ErrUnpairedMarker = errors.New("cliloc: unpaired placeholder marker")
)

// Entry is one decoded record.
type Entry struct {
	ID   int32  `json:"id"   yaml:"id"   cbor:"1,keyasint"`
	Text string `json:"text" yaml:"text" cbor:"2,keyasint"`
}

// Status tells a caller why a lookup produced the text it did.
type Status uint8

const (
	StatusFound Status = iota
	StatusNotFound
	StatusNotLoaded
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusNotFound:
		return "not found"
	case StatusNotLoaded:
		return "not loaded"
	default:
		return "unknown"
	}
}

// MaxDisplayWidth returns the character count of the longest string.
// Empty strings stand for absent values and count as zero.
func MaxDisplayWidth(strs []string) int {
	longest := 0
	for _, s := range strs {
		if n := utf8.RuneCountInString(s); n > longest {
			longest = n
		}
	}
	return longest
}
