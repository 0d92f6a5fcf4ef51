package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	enc "github.com/mowbraylabs/retailpulse/internal/encoding"
)

const sample = "date,Café Marylebone\n2026-02-01,5000\n"

func decode(t *testing.T, r io.Reader) string {
	t.Helper()

	utf8r, err := enc.NewUTF8Reader(r)
	require.NoError(t, err)

	out, err := io.ReadAll(utf8r)
	require.NoError(t, err)

	return string(out)
}

func TestNewUTF8Reader_PlainUTF8(t *testing.T) {
	assert.Equal(t, sample, decode(t, strings.NewReader(sample)))
}

func TestNewUTF8Reader_StripsUTF8BOM(t *testing.T) {
	in := append([]byte{0xEF, 0xBB, 0xBF}, sample...)
	assert.Equal(t, sample, decode(t, bytes.NewReader(in)))
}

func TestNewUTF8Reader_UTF16LE(t *testing.T) {
	encoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	in, err := encoder.Bytes([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, sample, decode(t, bytes.NewReader(in)))
}

func TestNewUTF8Reader_Windows1252(t *testing.T) {
	encoder := charmap.Windows1252.NewEncoder()
	in, err := encoder.Bytes([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, sample, decode(t, bytes.NewReader(in)))
}

func TestNewUTF8Reader_Empty(t *testing.T) {
	assert.Equal(t, "", decode(t, strings.NewReader("")))
}
