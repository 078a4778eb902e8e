package cliloc

import "golang.org/x/text/language"

// Locale is a lookup entry point bound to a language fallback chain.
type Locale struct {
	catalog *Catalog
	chain   []language.Tag // fallback chain, default language last
}

// Tags returns the fallback chain.
func (l *Locale) Tags() []language.Tag {
	return append([]language.Tag(nil), l.chain...)
}

// Resolve returns the text for id from the first language in the chain that
// has it. The status is StatusNotLoaded only when no file in the chain
// could be loaded.
func (l *Locale) Resolve(id int32) (string, Status) {
	text, _, status := l.find(id)
	if status != StatusFound {
		return missing(status)
	}
	return text, status
}

// ResolveArgs is Resolve followed by substitution. Cross-references are
// resolved in the language that supplied the template.
func (l *Locale) ResolveArgs(id int32, args string) (string, Status) {
	text, s, status := l.find(id)
	if status != StatusFound {
		return missing(status)
	}
	if args == "" {
		return text, status
	}
	return Substitute(text, args, s.lookup), status
}

// Text is ResolveArgs for display.
func (l *Locale) Text(id int32, args string) string {
	text, _ := l.ResolveArgs(id, args)
	return text
}

// find returns the text for id from the first store in the chain holding
// it, together with that store.
func (l *Locale) find(id int32) (string, *Store, Status) {
	status := StatusNotLoaded
	if l.catalog == nil {
		return "", nil, status
	}
	for _, tag := range l.chain {
		s := l.catalog.Store(tag)
		text, st := s.Resolve(id)
		switch st {
		case StatusFound:
			return text, s, st
		case StatusNotFound:
			status = StatusNotFound
		}
	}
	return "", nil, status
}

func missing(status Status) (string, Status) {
	if status == StatusNotLoaded {
		return NotLoadedText, status
	}
	return "", status
}
