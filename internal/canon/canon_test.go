package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_Scalars(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want string
	}{
		{"string", "hi", `"hi"`},
		{"true", true, `true`},
		{"int", -3, `-3`},
		{"int64", int64(1) << 40, `1099511627776`},
		{"uint32", uint32(4), `4`},
		{"uint64", uint64(18446744073709551615), `18446744073709551615`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Marshal(tt.v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestMarshal_SortsKeysWithoutWhitespace(t *testing.T) {
	got, err := Marshal(map[string]any{
		"seq":  1,
		"op":   "attach",
		"args": map[string]any{"parent": "1@1", "child": "2@1"},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"args":{"child":"2@1","parent":"1@1"},"op":"attach","seq":1}`, string(got))
}

func TestMarshal_UTF16KeyOrder(t *testing.T) {
	// U+1F600 encodes as surrogates 0xD83D..., which sort below U+FF61
	// in UTF-16 but above it in UTF-8.
	got, err := Marshal(map[string]any{"｡": 1, "\U0001F600": 2})
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001F600\":2,\"｡\":1}", string(got))
}

func TestMarshal_StringEscaping(t *testing.T) {
	got, err := Marshal("a\"b\\c\n<&> \x01")
	require.NoError(t, err)
	assert.Equal(t, "\"a\\\"b\\\\c\\n<&> \\u0001\"", string(got))
}

func TestMarshal_NFC(t *testing.T) {
	decomposed := "e\u0301"
	composed := "\u00e9"

	a, err := Marshal(decomposed)
	require.NoError(t, err)
	b, err := Marshal(composed)
	require.NoError(t, err)
	assert.Equal(t, b, a)
}

func TestMarshal_Rejects(t *testing.T) {
	_, err := Marshal(nil)
	assert.Error(t, err)

	_, err = Marshal(1.5)
	assert.Error(t, err)

	_, err = Marshal(map[string]any{"nested": []any{"ok", 2.5}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"nested": [1]`)

	_, err = Marshal(struct{}{})
	assert.Error(t, err)
}

func TestMarshal_MapSlice(t *testing.T) {
	got, err := Marshal([]map[string]any{{"b": 1, "a": 2}, {}})
	require.NoError(t, err)
	assert.Equal(t, `[{"a":2,"b":1},{}]`, string(got))
}

func TestDigest_DomainSeparated(t *testing.T) {
	v := map[string]any{"op": "create"}

	a, err := Digest(DomainTrace, v)
	require.NoError(t, err)
	b, err := Digest(DomainRun, v)
	require.NoError(t, err)
	again, err := Digest(DomainTrace, map[string]any{"op": "create"})
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, again)
}

func TestDigest_PropagatesError(t *testing.T) {
	_, err := Digest(DomainRun, 0.1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), DomainRun)
}
