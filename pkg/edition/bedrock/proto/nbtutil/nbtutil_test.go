package nbtutil

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JukeboxMC/JBackwards/pkg/edition/bedrock/proto/version"
)

func TestEncodeDecodeEncodings(t *testing.T) {
	tree := map[string]any{
		"plains": map[string]any{
			"temperature": float32(0.8),
			"downfall":    float32(0.4),
		},
		"name": "overworld",
	}
	for _, enc := range []version.Encoding{version.Compressed, version.Network} {
		t.Run(enc.String(), func(t *testing.T) {
			b, err := EncodeBytes(tree, enc)
			require.NoError(t, err)
			got, err := Decode(bytes.NewReader(b), enc)
			require.NoError(t, err)
			assert.Equal(t, tree, got)
		})
	}
}

func TestDecodeWrongEncodingFails(t *testing.T) {
	b, err := EncodeBytes(map[string]any{"a": int32(1)}, version.Network)
	require.NoError(t, err)
	_, err = Decode(bytes.NewReader(b), version.Compressed)
	assert.Error(t, err)

	_, err = Decode(bytes.NewReader(b), version.Encoding(42))
	assert.Error(t, err)
}

func TestBase64(t *testing.T) {
	state := map[string]any{
		"name":   "minecraft:wool",
		"states": map[string]any{"color": "red"},
	}
	s, err := EncodeBase64(state)
	require.NoError(t, err)
	got, err := DecodeBase64(s)
	require.NoError(t, err)
	assert.Equal(t, state, got)

	_, err = DecodeBase64("%%%")
	assert.Error(t, err)
}

func TestStatesEqual(t *testing.T) {
	a := map[string]any{"facing_direction": int32(2), "open_bit": byte(1)}
	b := map[string]any{"open_bit": byte(1), "facing_direction": int32(2)}
	assert.True(t, StatesEqual(a, b), "key order must not matter")

	c := map[string]any{"open_bit": byte(0), "facing_direction": int32(2)}
	assert.False(t, StatesEqual(a, c), "a differing value must not match")

	d := map[string]any{"open_bit": byte(1)}
	assert.False(t, StatesEqual(a, d), "a missing key must not match")

	assert.True(t, StatesEqual(nil, map[string]any{}))
}

func TestAccessors(t *testing.T) {
	m := map[string]any{
		"name":       "minecraft:stone",
		"network_id": int32(7),
		"version":    int64(1),
		"states":     map[string]any{"x": byte(1)},
		"blocks":     []any{map[string]any{"name": "a"}, "skipped"},
	}
	assert.Equal(t, "minecraft:stone", String(m, "name"))
	assert.Equal(t, "", String(m, "missing"))
	id, ok := Int(m, "network_id")
	assert.True(t, ok)
	assert.Equal(t, int64(7), id)
	_, ok = Int(m, "name")
	assert.False(t, ok)
	assert.Equal(t, map[string]any{"x": byte(1)}, Compound(m, "states"))
	assert.Len(t, List(m, "blocks"), 1)
	assert.Len(t, List(map[string]any{"blocks": []map[string]any{{}, {}}}, "blocks"), 2)
	assert.Nil(t, List(m, "name"))
}
