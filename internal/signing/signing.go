// Package signing implements the Ed25519 authenticity layer over
// canonical bytes.
//
// Keys and signatures travel as lowercase hex only, with the same
// strictness rationale as content addresses: a permissive decoder would
// let two clients disagree silently. The user identity is the first 32
// hex characters of the 64-hex public key - a plain truncation, not a
// hash; the collision risk of two keys sharing a 16-byte prefix is
// accepted and not mitigated here.
package signing

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/jlmalone/redo/internal/address"
	"github.com/jlmalone/redo/internal/changelog"
)

const (
	// UserIDLen is the hex length of a user identity.
	UserIDLen = 32

	publicKeyHexLen = 64
	signatureHexLen = 128
	seedHexLen      = 64
)

// Keypair holds a generated identity. The private key stays local; the
// public key's hex form is what travels on entries.
type Keypair struct {
	PublicHex string
	Private   ed25519.PrivateKey
}

// Generate mints a fresh Ed25519 identity.
func Generate() (Keypair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return Keypair{}, fmt.Errorf("generate keypair: %w", err)
	}
	return Keypair{
		PublicHex: hex.EncodeToString(pub),
		Private:   priv,
	}, nil
}

// FromSeedHex reconstructs a keypair from a 64-hex-character seed, the
// on-disk key file format.
func FromSeedHex(seedHex string) (Keypair, error) {
	if len(seedHex) != seedHexLen || !address.IsLowerHex(seedHex) {
		return Keypair{}, fmt.Errorf("seed must be %d lowercase hex characters", seedHexLen)
	}
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return Keypair{}, fmt.Errorf("decode seed: %w", err)
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return Keypair{
		PublicHex: hex.EncodeToString(pub),
		Private:   priv,
	}, nil
}

// SeedHex returns the keypair's seed in the on-disk hex format.
func (k Keypair) SeedHex() string {
	return hex.EncodeToString(k.Private.Seed())
}

// UserID returns the identity derived from the keypair's public key.
func (k Keypair) UserID() string {
	return UserID(k.PublicHex)
}

// UserID derives a user identity from a 64-hex public key: its first 32
// hex characters.
func UserID(publicHex string) string {
	if len(publicHex) < UserIDLen {
		return ""
	}
	return publicHex[:UserIDLen]
}

// Sign produces the 128-lowercase-hex Ed25519 signature over canonical
// bytes. Ed25519 is deterministic per message, so signing the same bytes
// twice yields the same signature.
func Sign(data []byte, priv ed25519.PrivateKey) string {
	return hex.EncodeToString(ed25519.Sign(priv, data))
}

// Verify checks a hex signature over canonical bytes against a hex public
// key. Uppercase or malformed hex fails verification; nothing is
// normalized.
func Verify(data []byte, sigHex, publicHex string) bool {
	if len(sigHex) != signatureHexLen || !address.IsLowerHex(sigHex) {
		return false
	}
	if len(publicHex) != publicKeyHexLen || !address.IsLowerHex(publicHex) {
		return false
	}
	sig, err := hex.DecodeString(sigHex)
	if err != nil {
		return false
	}
	pub, err := hex.DecodeString(publicHex)
	if err != nil {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub), data, sig)
}

// SignEntry computes the entry's signature over its signing bytes
// (canonical form minus id and signature).
func SignEntry(e changelog.Entry, priv ed25519.PrivateKey) (string, error) {
	data, err := e.CanonicalForSigning()
	if err != nil {
		return "", fmt.Errorf("sign entry: %w", err)
	}
	return Sign(data, priv), nil
}

// VerifyEntry checks an entry's signature against its author's public
// key. Entries without both a signature and a public key do not verify.
func VerifyEntry(e changelog.Entry) bool {
	if e.Signature == "" || e.Author.PublicKey == "" {
		return false
	}
	data, err := e.CanonicalForSigning()
	if err != nil {
		return false
	}
	return Verify(data, e.Signature, e.Author.PublicKey)
}
