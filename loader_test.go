package cliloc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"io/fs"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = []record{
	{500000, "Hello"},
	{1042971, "~1_NOTHING~"},
	{1060658, "~1_val~: ~2_val~"},
	{3011032, "Größe – サイズ"},
	{7, ""},
}

func TestDecode(t *testing.T) {
	t.Run("Decode_AllRecords", func(t *testing.T) {
		table := Decode(bytes.NewReader(encodeResource(sample...)))

		assert.Equal(t, OutcomeComplete, table.Outcome())
		assert.NoError(t, table.Err())
		require.Equal(t, len(sample), table.Len())
		for _, r := range sample {
			e, ok := table.Lookup(r.id)
			require.True(t, ok, "id %d", r.id)
			assert.Equal(t, Entry{ID: r.id, Text: r.text}, e)
		}
	})

	t.Run("Decode_HeaderOnly", func(t *testing.T) {
		table := Decode(bytes.NewReader(testHeader))
		assert.Equal(t, OutcomeComplete, table.Outcome())
		assert.Zero(t, table.Len())
	})

	t.Run("Decode_ShortHeader", func(t *testing.T) {
		table := Decode(bytes.NewReader(testHeader[:3]))
		assert.Equal(t, OutcomeTruncated, table.Outcome())
		assert.Zero(t, table.Len())
	})

	t.Run("Decode_TruncatedText", func(t *testing.T) {
		data := encodeResource(sample[:3]...)
		table := Decode(bytes.NewReader(data[:len(data)-2]))

		assert.Equal(t, OutcomeTruncated, table.Outcome())
		assert.ErrorIs(t, table.Err(), io.ErrUnexpectedEOF)
		assert.Equal(t, 2, table.Len())
		_, ok := table.Lookup(sample[2].id)
		assert.False(t, ok)
	})

	t.Run("Decode_TruncatedRecordHeader", func(t *testing.T) {
		full := encodeResource(sample[:2]...)
		next := encodeResource(sample[2])[len(testHeader):]
		data := append(append([]byte(nil), full...), next[:3]...)

		table := Decode(bytes.NewReader(data))
		assert.Equal(t, OutcomeTruncated, table.Outcome())
		assert.Equal(t, 2, table.Len())
	})

	t.Run("Decode_NegativeLength", func(t *testing.T) {
		var buf bytes.Buffer
		buf.Write(encodeResource(sample[0]))
		_ = binary.Write(&buf, binary.LittleEndian, int32(9))
		buf.WriteByte(0)
		_ = binary.Write(&buf, binary.LittleEndian, int16(-4))
		buf.WriteString("junk")

		table := Decode(&buf)
		assert.Equal(t, OutcomeMalformed, table.Outcome())
		assert.Error(t, table.Err())
		assert.Equal(t, 1, table.Len())
	})

	t.Run("Decode_ReadError", func(t *testing.T) {
		boom := errors.New("boom")
		r := io.MultiReader(bytes.NewReader(encodeResource(sample[0])), &failingReader{err: boom})

		table := Decode(r)
		assert.Equal(t, OutcomeMalformed, table.Outcome())
		assert.ErrorIs(t, table.Err(), boom)
		assert.Equal(t, 1, table.Len())
	})

	t.Run("Decode_DuplicateLastWins", func(t *testing.T) {
		table := Decode(bytes.NewReader(encodeResource(
			record{1, "first"},
			record{2, "other"},
			record{1, "second"},
		)))

		assert.Equal(t, 2, table.Len())
		assert.Equal(t, 1, table.Duplicates())
		e, _ := table.Lookup(1)
		assert.Equal(t, "second", e.Text)
	})

	t.Run("Decode_InvalidUTF8", func(t *testing.T) {
		table := Decode(bytes.NewReader(encodeResource(record{1, "a\xffb"})))
		e, ok := table.Lookup(1)
		require.True(t, ok)
		assert.Equal(t, "a\uFFFDb", e.Text)
	})

	t.Run("Decode_MarkersKept", func(t *testing.T) {
		table := Decode(bytes.NewReader(encodeResource(sample[2])))
		e, _ := table.Lookup(sample[2].id)
		assert.Equal(t, "~1_val~: ~2_val~", e.Text)
	})
}

type failingReader struct {
	err error
}

func (f *failingReader) Read([]byte) (int, error) {
	return 0, f.err
}

func TestTable(t *testing.T) {
	table := NewTable(Entry{ID: 3, Text: "c"}, Entry{ID: 1, Text: "a"}, Entry{ID: 2, Text: "b"})

	assert.Equal(t, []int32{1, 2, 3}, table.IDs())
	assert.Equal(t, []Entry{{1, "a"}, {2, "b"}, {3, "c"}}, table.Entries())

	var empty *Table
	_, ok := empty.Lookup(1)
	assert.False(t, ok)
	assert.Zero(t, empty.Len())
	assert.Nil(t, empty.IDs())
	assert.Empty(t, empty.Entries())
	assert.Equal(t, OutcomeComplete, empty.Outcome())
	assert.Zero(t, empty.Duplicates())
	assert.NoError(t, empty.Err())
}

func TestLoad(t *testing.T) {
	t.Run("Load_Success", func(t *testing.T) {
		table, err := Load(writeResource(t, sample...))
		require.NoError(t, err)
		assert.Equal(t, len(sample), table.Len())
	})

	t.Run("Load_Missing", func(t *testing.T) {
		table, err := Load(t.TempDir() + "/cliloc.xyz")
		assert.Nil(t, table)
		assert.ErrorIs(t, err, ErrUnavailable)
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("Load_Directory", func(t *testing.T) {
		table, err := Load(t.TempDir())
		assert.Nil(t, table)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnavailable)
	})

	t.Run("Load_Zstd", func(t *testing.T) {
		enc, err := zstd.NewWriter(nil)
		require.NoError(t, err)
		compressed := enc.EncodeAll(encodeResource(sample...), nil)
		require.NoError(t, enc.Close())

		path := writeFile(t, t.TempDir(), DefaultFileName+zstdSuffix, compressed)
		table, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, OutcomeComplete, table.Outcome())
		assert.Equal(t, len(sample), table.Len())
	})

	t.Run("Load_ZstdCorrupt", func(t *testing.T) {
		for name, data := range map[string][]byte{
			"not a frame": []byte("not a zstd frame at all"),
			"short":       []byte("x"),
		} {
			path := writeFile(t, t.TempDir(), DefaultFileName+zstdSuffix, data)
			table, err := Load(path)
			assert.Nil(t, table, name)
			require.Error(t, err, name)
			assert.NotErrorIs(t, err, ErrUnavailable, name)
		}
	})
}
