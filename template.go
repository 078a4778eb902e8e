package cliloc

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// marker opens and closes a placeholder span.
	marker = '~'
	// argSeparator delimits arguments.
	argSeparator = "\t"
	// refPrefix marks an argument that names another entry.
	refPrefix = "#"

	// maxSubstitutions bounds the substitution loop for arguments that
	// reintroduce markers into the text.
	maxSubstitutions = 1024
)

// LookupFunc returns the stored text for id.
type LookupFunc func(id int32) (string, bool)

///////////////////////////////////////////////////////////////////////////////
// PLACEHOLDER SCANNING
///////////////////////////////////////////////////////////////////////////////

// nextSpan returns the first placeholder token in s, markers included, and
// the offset just past it. ok is false when s has no complete span.
func nextSpan(s string) (token string, next int, ok bool) {
	start := strings.IndexByte(s, marker)
	if start < 0 {
		return "", 0, false
	}
	end := strings.IndexByte(s[start+1:], marker)
	if end < 0 {
		return "", 0, false
	}
	next = start + end + 2
	return s[start:next], next, true
}

// Placeholders returns the distinct placeholder tokens of tpl in order of
// first appearance. Scanning stops at an unpaired marker.
func Placeholders(tpl string) []string {
	var out []string
	seen := make(map[string]struct{})
	rest := tpl
	for {
		token, next, ok := nextSpan(rest)
		if !ok {
			return out
		}
		if _, dup := seen[token]; !dup {
			seen[token] = struct{}{}
			out = append(out, token)
		}
		rest = rest[next:]
	}
}

// ValidateTemplate reports an unpaired marker in tpl.
func ValidateTemplate(tpl string) error {
	open := -1
	for i := 0; i < len(tpl); i++ {
		if tpl[i] != marker {
			continue
		}
		if open < 0 {
			open = i
		} else {
			open = -1
		}
	}
	if open >= 0 {
		return fmt.Errorf("%w at position %d", ErrUnpairedMarker, open)
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// SUBSTITUTION
///////////////////////////////////////////////////////////////////////////////

// Substitute fills the placeholders of tpl from the tab-delimited args.
//
// Each pass takes the first ~...~ span of the current text and the next
// argument, then replaces every occurrence of that span. Once the
// arguments run out the last one is used for any remaining spans. An
// argument of the form #<id> is replaced by the unsubstituted lookup(id);
// an id that does not parse or has no entry yields the empty string.
// Substitution stops at an unpaired marker, and once the arguments are
// exhausted it stops when the last value contains the token it replaced.
func Substitute(tpl, args string, lookup LookupFunc) string {
	if args == "" {
		return tpl
	}

	text := tpl
	for pass := 0; pass < maxSubstitutions; pass++ {
		token, _, ok := nextSpan(text)
		if !ok {
			break
		}

		arg, rest, more := strings.Cut(args, argSeparator)
		value := expandArgument(arg, lookup)
		text = strings.ReplaceAll(text, token, value)
		if !more && strings.Contains(value, token) {
			// The same value would replace the same token again.
			break
		}
		if more {
			args = rest
		}
	}
	return text
}

// expandArgument resolves a #<id> reference; any other argument is
// returned unchanged.
func expandArgument(arg string, lookup LookupFunc) string {
	ref, isRef := strings.CutPrefix(arg, refPrefix)
	if !isRef {
		return arg
	}
	id, err := ParseID(ref)
	if err != nil || lookup == nil {
		return ""
	}
	text, ok := lookup(id)
	if !ok {
		return ""
	}
	return text
}

// ParseID parses a decimal entry ID, ignoring surrounding spaces.
func ParseID(s string) (int32, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid entry id %q: %w", s, err)
	}
	return int32(n), nil
}
