package changelog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlmalone/redo/internal/canonical"
)

func TestAddressIsStable(t *testing.T) {
	e := validEntry(t)

	a1, err := e.Address()
	require.NoError(t, err)
	a2, err := e.Address()
	require.NoError(t, err)

	assert.Equal(t, a1, a2)
	assert.Equal(t, e.ID, a1)
}

func TestAddressIndependentOfDataInsertionOrder(t *testing.T) {
	build := func(keys []string) Entry {
		e := validEntry(t)
		data := canonical.Object{}
		for _, k := range keys {
			data[k] = e.Data[k]
		}
		e.Data = data
		return e
	}

	forward := build([]string{KeyTitle, KeyDescription, KeyPriority, KeyFrequencyDays, KeyStoryPoints})
	backward := build([]string{KeyStoryPoints, KeyFrequencyDays, KeyPriority, KeyDescription, KeyTitle})

	a1, err := forward.Address()
	require.NoError(t, err)
	a2, err := backward.Address()
	require.NoError(t, err)

	assert.Equal(t, a1, a2, "address depends on content, not construction order")
}

func TestAddressCoversSignature(t *testing.T) {
	e := validEntry(t)

	a1, err := e.Address()
	require.NoError(t, err)

	e.Signature = strings.Repeat("cd", 64)
	a2, err := e.Address()
	require.NoError(t, err)

	assert.NotEqual(t, a1, a2, "changing the signature changes the address")
}

func TestSigningPreimageExcludesSignature(t *testing.T) {
	e := validEntry(t)

	p1, err := e.CanonicalForSigning()
	require.NoError(t, err)

	e.Signature = strings.Repeat("cd", 64)
	p2, err := e.CanonicalForSigning()
	require.NoError(t, err)

	assert.Equal(t, p1, p2, "the signature never covers itself")
	assert.NotContains(t, string(p1), `"signature"`)
	assert.NotContains(t, string(p1), `"id"`)
}

func TestCanonicalWithoutIDExcludesID(t *testing.T) {
	e := validEntry(t)

	data, err := e.CanonicalWithoutID()
	require.NoError(t, err)

	assert.NotContains(t, string(data), `"id"`)
	assert.Contains(t, string(data), `"signature"`)
	assert.True(t, canonical.IsCanonical(data))
}

func TestOptionalFieldsAbsentFromPreimage(t *testing.T) {
	e := validEntry(t)
	e.TaskID = ""
	e.Author.Name = ""
	e.Author.PublicKey = ""
	e.Signature = ""

	data, err := e.CanonicalWithoutID()
	require.NoError(t, err)

	// Empty optional fields are omitted entirely, never serialized as "".
	assert.NotContains(t, string(data), `"taskId"`)
	assert.NotContains(t, string(data), `"name"`)
	assert.NotContains(t, string(data), `"publicKey"`)
	assert.NotContains(t, string(data), `"signature"`)
}

func TestVerifyID(t *testing.T) {
	e := validEntry(t)

	ok, err := e.VerifyID()
	require.NoError(t, err)
	assert.True(t, ok)

	e.Data[KeyTitle] = canonical.String("tampered")
	ok, err = e.VerifyID()
	require.NoError(t, err)
	assert.False(t, ok, "content drift must be detected")
}

func TestNilDataSerializesAsEmptyObject(t *testing.T) {
	e := validEntry(t)
	e.Data = nil

	data, err := e.CanonicalWithoutID()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"data":{}`)
}
