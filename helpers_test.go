package cliloc

import (
	"bytes"
	"encoding/binary"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type record struct {
	id   int32
	text string
}

var testHeader = []byte{2, 0, 0, 0, 1, 0}

// encodeResource builds a resource file image holding records.
func encodeResource(records ...record) []byte {
	var buf bytes.Buffer
	buf.Write(testHeader)
	for _, r := range records {
		_ = binary.Write(&buf, binary.LittleEndian, r.id)
		buf.WriteByte(0)
		_ = binary.Write(&buf, binary.LittleEndian, int16(len(r.text)))
		buf.WriteString(r.text)
	}
	return buf.Bytes()
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func writeResource(t *testing.T, records ...record) string {
	t.Helper()
	return writeFile(t, t.TempDir(), DefaultFileName, encodeResource(records...))
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
