package address

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashFormat(t *testing.T) {
	addr := Hash([]byte(`{"a":1}`))

	require.True(t, strings.HasPrefix(addr, Prefix))
	assert.Len(t, addr, len(Prefix)+64)
	assert.True(t, IsValid(addr))
}

func TestHashKnownVector(t *testing.T) {
	// SHA-256 of the empty input is a fixed constant.
	assert.Equal(t,
		"sha256:e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		Hash(nil))
}

func TestHashIsDeterministic(t *testing.T) {
	data := []byte(`{"action":"CREATE","version":1}`)
	assert.Equal(t, Hash(data), Hash(data))
	assert.NotEqual(t, Hash(data), Hash([]byte(`{"action":"CREATE","version":2}`)))
}

func TestIsValid(t *testing.T) {
	valid := Hash([]byte("x"))

	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"valid address", valid, true},
		{"empty", "", false},
		{"missing prefix", valid[len(Prefix):], false},
		{"wrong algorithm", "sha512:" + valid[len(Prefix):], false},
		{"uppercase hex", Prefix + strings.ToUpper(valid[len(Prefix):]), false},
		{"too short", valid[:len(valid)-1], false},
		{"too long", valid + "0", false},
		{"non-hex character", valid[:len(valid)-1] + "g", false},
		{"prefix only", Prefix, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValid(tt.in))
		})
	}
}

func TestIsLowerHex(t *testing.T) {
	assert.True(t, IsLowerHex("0123456789abcdef"))
	assert.False(t, IsLowerHex(""))
	assert.False(t, IsLowerHex("ABCDEF"))
	assert.False(t, IsLowerHex("abc xyz"))
}
