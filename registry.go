package cliloc

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"golang.org/x/text/language"
)

///////////////////////////////////////////////////////////////////////////////
// FILE LOCATION
///////////////////////////////////////////////////////////////////////////////

// Locator maps a resource file name such as "cliloc.enu" to a path.
type Locator func(filename string) (string, error)

// DirLocator searches dirs in order for filename, also accepting a
// zstd-compressed copy. When no candidate exists it returns the path in the
// first directory so that loading reports the file as unavailable.
func DirLocator(dirs ...string) Locator {
	return func(filename string) (string, error) {
		for _, dir := range dirs {
			candidate := filepath.Join(dir, filename)
			for _, path := range []string{candidate, candidate + zstdSuffix} {
				if info, err := os.Stat(path); err == nil && !info.IsDir() {
					return path, nil
				}
			}
		}
		if len(dirs) == 0 {
			return filename, nil
		}
		return filepath.Join(dirs[0], filename), nil
	}
}

var (
	mustBase = language.MustParseBase

	fileSuffixes = map[language.Base]string{
		mustBase("en"): "enu",
		mustBase("de"): "deu",
		mustBase("fr"): "fra",
		mustBase("es"): "esp",
		mustBase("it"): "ita",
		mustBase("ja"): "jpn",
		mustBase("ko"): "kor",
		mustBase("ru"): "rus",
		mustBase("pt"): "ptb",
	}

	hant = language.MustParseScript("Hant")
)

// FileName returns the resource file name the client uses for tag.
// Languages without a file of their own map to DefaultFileName.
func FileName(tag language.Tag) string {
	b, _ := tag.Base()
	if b == mustBase("zh") {
		if script, _ := tag.Script(); script == hant {
			return "cliloc.cht"
		}
		return "cliloc.chs"
	}
	if suffix, ok := fileSuffixes[b]; ok {
		return "cliloc." + suffix
	}
	return DefaultFileName
}

///////////////////////////////////////////////////////////////////////////////
// CATALOG
///////////////////////////////////////////////////////////////////////////////

// Catalog holds one Store per supported language. Stores are created on
// first use and, like any Store, decode their file on first lookup.
type Catalog struct {
	mu        sync.Mutex
	stores    map[language.Tag]*Store
	supported []language.Tag
	matcher   language.Matcher
	locate    Locator
	opts      []Option
}

// NewCatalog returns a catalog for def plus the other languages. def is the
// last entry of every fallback chain.
func NewCatalog(locate Locator, def language.Tag, others []language.Tag, opts ...Option) *Catalog {
	if locate == nil {
		locate = DirLocator(".")
	}
	supported := []language.Tag{def}
	for _, tag := range others {
		if !slices.Contains(supported, tag) {
			supported = append(supported, tag)
		}
	}
	return &Catalog{
		stores:    make(map[language.Tag]*Store),
		supported: supported,
		matcher:   language.NewMatcher(supported),
		locate:    locate,
		opts:      opts,
	}
}

// Languages returns the supported languages, default first.
func (c *Catalog) Languages() []language.Tag {
	return append([]language.Tag(nil), c.supported...)
}

// Store returns the store for tag, creating it on first use.
func (c *Catalog) Store(tag language.Tag) *Store {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.stores[tag]; ok {
		return s
	}

	opts := c.opts
	path, err := c.locate(FileName(tag))
	if err != nil {
		opts = append(append([]Option(nil), c.opts...), WithOpener(func(string) (io.ReadCloser, error) {
			return nil, err
		}))
	}
	s := NewStore(path, opts...)
	c.stores[tag] = s
	return s
}

// Locale returns a Locale for the best supported match of accept, which
// holds language tags or Accept-Language header values.
func (c *Catalog) Locale(accept ...string) *Locale {
	var wanted []language.Tag
	for _, a := range accept {
		tags, _, err := language.ParseAcceptLanguage(a)
		if err != nil {
			continue
		}
		wanted = append(wanted, tags...)
	}

	def := c.supported[0]
	chain := []language.Tag{def}
	if len(wanted) > 0 {
		_, index, confidence := c.matcher.Match(wanted...)
		if confidence != language.No && c.supported[index] != def {
			chain = []language.Tag{c.supported[index], def}
		}
	}
	return &Locale{catalog: c, chain: chain}
}
