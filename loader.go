package cliloc

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

const (
	// headerSize bytes at the start of a file belong to the tool that
	// produced it and are skipped.
	headerSize = 6
	// recordHeaderSize covers id (int32), flag (byte) and length (int16).
	recordHeaderSize = 7

	// zstdSuffix marks resource files shipped zstd-compressed.
	zstdSuffix = ".zst"
)

// Outcome describes how a decode pass ended.
type Outcome uint8

const (
	// OutcomeComplete means the stream ended on a record boundary.
	OutcomeComplete Outcome = iota
	// OutcomeTruncated means the stream ended inside the header or a record.
	OutcomeTruncated
	// OutcomeMalformed means a record could not be read for another reason.
	OutcomeMalformed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeComplete:
		return "complete"
	case OutcomeTruncated:
		return "truncated"
	case OutcomeMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Table is an immutable ID -> entry mapping. It is safe for concurrent
// readers once Decode has returned it.
type Table struct {
	entries    map[int32]Entry
	outcome    Outcome
	duplicates int
	err        error
}

// NewTable builds a table from entries. Later entries replace earlier ones
// with the same ID.
func NewTable(entries ...Entry) *Table {
	t := &Table{entries: make(map[int32]Entry, len(entries))}
	for _, e := range entries {
		t.insert(e)
	}
	return t
}

func (t *Table) insert(e Entry) {
	if _, ok := t.entries[e.ID]; ok {
		t.duplicates++
	}
	t.entries[e.ID] = e
}

// Lookup returns the entry stored under id.
func (t *Table) Lookup(id int32) (Entry, bool) {
	if t == nil {
		return Entry{}, false
	}
	e, ok := t.entries[id]
	return e, ok
}

// Len returns the number of distinct IDs.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Outcome reports how the decode pass that built t ended.
func (t *Table) Outcome() Outcome {
	if t == nil {
		return OutcomeComplete
	}
	return t.outcome
}

// Duplicates is the number of records that replaced an earlier record with
// the same ID.
func (t *Table) Duplicates() int {
	if t == nil {
		return 0
	}
	return t.duplicates
}

// Err returns the read error that stopped the scan, if any.
func (t *Table) Err() error {
	if t == nil {
		return nil
	}
	return t.err
}

// IDs returns every ID in ascending order.
func (t *Table) IDs() []int32 {
	if t == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(t.entries))
}

// Entries returns every entry ordered by ID.
func (t *Table) Entries() []Entry {
	ids := t.IDs()
	out := make([]Entry, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.entries[id])
	}
	return out
}

// Decode reads a resource stream in a single forward pass. It never fails:
// a stream that ends early or cannot be read yields the entries parsed up
// to that point, with Outcome and Err describing where it stopped.
func Decode(r io.Reader) *Table {
	t := &Table{entries: make(map[int32]Entry)}
	br := bufio.NewReader(r)
	dec := unicode.UTF8.NewDecoder()

	if _, err := io.CopyN(io.Discard, br, headerSize); err != nil {
		t.stop(err)
		return t
	}

	var hdr [recordHeaderSize]byte
	var buf []byte
	for {
		_, err := io.ReadFull(br, hdr[:])
		if err == io.EOF {
			return t
		}
		if err != nil {
			t.stop(err)
			return t
		}

		id := int32(binary.LittleEndian.Uint32(hdr[0:4]))
		// hdr[4] is an unused flag byte.
		length := int16(binary.LittleEndian.Uint16(hdr[5:7]))
		if length < 0 {
			t.outcome = OutcomeMalformed
			t.err = fmt.Errorf("record %d: negative text length %d", id, length)
			return t
		}

		buf = slices.Grow(buf[:0], int(length))[:length]
		if _, err := io.ReadFull(br, buf); err != nil {
			t.stop(fmt.Errorf("record %d: %w", id, err))
			return t
		}

		t.insert(Entry{ID: id, Text: decodeText(dec, buf)})
	}
}

func (t *Table) stop(err error) {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		t.outcome = OutcomeTruncated
	} else {
		t.outcome = OutcomeMalformed
	}
	t.err = err
}

// decodeText replaces invalid UTF-8 sequences with U+FFFD.
func decodeText(dec *encoding.Decoder, b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	out, err := dec.Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), string(utf8.RuneError))
	}
	return string(out)
}

// Load opens the resource file at path read-only and decodes it. A missing
// file yields ErrUnavailable; other failures to open the file are returned
// as is. Problems inside the file never produce an error, see Decode.
func Load(path string) (*Table, error) {
	rc, err := openResource(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return Decode(rc), nil
}

// OpenFunc opens a resource for reading.
type OpenFunc func(path string) (io.ReadCloser, error)

func openResource(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("open %s: is a directory", path)
	}

	if !strings.HasSuffix(path, zstdSuffix) {
		return f, nil
	}

	zr, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(1))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("zstd reader %s: %w", path, err)
	}

	// The frame header is only read on first use; check it here so a broken
	// frame fails the load instead of decoding as an empty table.
	br := bufio.NewReader(zr)
	if _, err := br.Peek(1); err != nil && err != io.EOF {
		zr.Close()
		f.Close()
		return nil, fmt.Errorf("zstd frame %s: %w", path, err)
	}
	return &zstdFile{Reader: br, dec: zr, file: f}, nil
}

type zstdFile struct {
	*bufio.Reader
	dec  *zstd.Decoder
	file *os.File
}

func (z *zstdFile) Close() error {
	z.dec.Close()
	return z.file.Close()
}
