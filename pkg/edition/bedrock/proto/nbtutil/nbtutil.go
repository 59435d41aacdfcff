// Package nbtutil decodes and encodes the NBT blobs bundled for each protocol
// version, whose framing differs between versions and resource categories.
package nbtutil

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/klauspost/compress/gzip"
	"github.com/sandertv/gophertunnel/minecraft/nbt"

	"github.com/JukeboxMC/JBackwards/pkg/edition/bedrock/proto/version"
)

// Decode reads a single compound tag framed with the given encoding.
func Decode(r io.Reader, enc version.Encoding) (map[string]any, error) {
	var m map[string]any
	switch enc {
	case version.Compressed:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("error opening gzip stream: %w", err)
		}
		defer zr.Close()
		if err = nbt.NewDecoderWithEncoding(zr, nbt.BigEndian).Decode(&m); err != nil {
			return nil, fmt.Errorf("error decoding compressed nbt: %w", err)
		}
	case version.Network:
		if err := nbt.NewDecoderWithEncoding(r, nbt.NetworkLittleEndian).Decode(&m); err != nil {
			return nil, fmt.Errorf("error decoding network nbt: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown nbt encoding %s", enc)
	}
	return m, nil
}

// Encode writes m as a compound tag framed with the given encoding.
func Encode(w io.Writer, m map[string]any, enc version.Encoding) error {
	switch enc {
	case version.Compressed:
		zw := gzip.NewWriter(w)
		if err := nbt.NewEncoderWithEncoding(zw, nbt.BigEndian).Encode(m); err != nil {
			_ = zw.Close()
			return fmt.Errorf("error encoding compressed nbt: %w", err)
		}
		return zw.Close()
	case version.Network:
		return nbt.NewEncoderWithEncoding(w, nbt.NetworkLittleEndian).Encode(m)
	}
	return fmt.Errorf("unknown nbt encoding %s", enc)
}

// EncodeBytes is like Encode but returns the encoded bytes.
func EncodeBytes(m map[string]any, enc version.Encoding) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, m, enc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeBase64 decodes a base64 string holding a little endian compound tag,
// the format of block states and item tags embedded in creative item tables.
func DecodeBase64(s string) (map[string]any, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("error decoding base64: %w", err)
	}
	var m map[string]any
	if err = nbt.UnmarshalEncoding(b, &m, nbt.LittleEndian); err != nil {
		return nil, fmt.Errorf("error decoding little endian nbt: %w", err)
	}
	return m, nil
}

// EncodeBase64 is the inverse of DecodeBase64.
func EncodeBase64(m map[string]any) (string, error) {
	b, err := nbt.MarshalEncoding(m, nbt.LittleEndian)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

var equateEmpty = cmpopts.EquateEmpty()

// StatesEqual reports whether two block state compounds are structurally
// equal. Key order never matters; nil and empty compounds are equal.
func StatesEqual(a, b map[string]any) bool {
	return cmp.Equal(a, b, equateEmpty)
}

// Compound returns the compound stored under key, or nil.
func Compound(m map[string]any, key string) map[string]any {
	c, _ := m[key].(map[string]any)
	return c
}

// String returns the string stored under key, or "".
func String(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// Int returns the integer stored under key regardless of its NBT width.
func Int(m map[string]any, key string) (int64, bool) {
	switch v := m[key].(type) {
	case byte:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	}
	return 0, false
}

// List returns the compounds of the list stored under key.
// Entries that are not compounds are skipped.
func List(m map[string]any, key string) []map[string]any {
	switch raw := m[key].(type) {
	case []map[string]any:
		return raw
	case []any:
		out := make([]map[string]any, 0, len(raw))
		for _, e := range raw {
			if c, ok := e.(map[string]any); ok {
				out = append(out, c)
			}
		}
		return out
	}
	return nil
}
