package changelog

import (
	"fmt"

	"github.com/jlmalone/redo/internal/address"
	"github.com/jlmalone/redo/internal/canonical"
)

// Version is the wire contract version. Entries with any other value are
// rejected outright.
const Version = 1

// Timestamp carries the entry's logical and wall clocks. Ordering during
// replay uses only the Lamport counter; the wall time feeds the
// reconstructed aggregates (created/completed/deadline fields).
type Timestamp struct {
	Lamport int64
	Wall    string // ISO-8601, kept verbatim - reformatting would change the hash
}

// Author identifies who wrote an entry and from which device.
// UserID is the first 32 hex characters of the author's Ed25519 public
// key. Name and PublicKey are optional; empty means absent on the wire.
type Author struct {
	UserID    string
	DeviceID  string
	Name      string
	PublicKey string
}

// Entry is a single immutable change log event. Aggregates are never
// stored; they exist only as the output of replaying entries.
//
// Parents records the author's view of the log heads at write time. It is
// format-validated and persisted for audit, but replay never traverses
// it - only the Lamport counter drives ordering.
type Entry struct {
	ID        string
	Version   int
	Parents   []string
	Timestamp Timestamp
	Author    Author
	Action    Action
	TaskID    string // optional; empty means absent
	Data      canonical.Object
	Signature string // optional 128-hex Ed25519 signature; empty means absent
}

// canonicalObject builds the entry's canonical value tree. The id field is
// never part of it (it is derived from these bytes); the signature is
// included only when requested, so the same builder serves both the
// signing preimage and the address preimage.
func (e Entry) canonicalObject(withSignature bool) canonical.Object {
	author := canonical.Object{
		"userId":   canonical.String(e.Author.UserID),
		"deviceId": canonical.String(e.Author.DeviceID),
	}
	if e.Author.Name != "" {
		author["name"] = canonical.String(e.Author.Name)
	}
	if e.Author.PublicKey != "" {
		author["publicKey"] = canonical.String(e.Author.PublicKey)
	}

	parents := make(canonical.Array, len(e.Parents))
	for i, p := range e.Parents {
		parents[i] = canonical.String(p)
	}

	data := e.Data
	if data == nil {
		data = canonical.Object{}
	}

	obj := canonical.Object{
		"version": canonical.Int(e.Version),
		"parents": parents,
		"timestamp": canonical.Object{
			"lamport": canonical.Int(e.Timestamp.Lamport),
			"wall":    canonical.String(e.Timestamp.Wall),
		},
		"author": author,
		"action": canonical.String(string(e.Action)),
		"data":   data,
	}
	if e.TaskID != "" {
		obj["taskId"] = canonical.String(e.TaskID)
	}
	if withSignature && e.Signature != "" {
		obj["signature"] = canonical.String(e.Signature)
	}
	return obj
}

// CanonicalWithoutID returns the canonical bytes the entry's address is
// computed over: everything but the id, signature included when present.
// Authors therefore sign first and mint the address second.
func (e Entry) CanonicalWithoutID() ([]byte, error) {
	return canonical.Marshal(e.canonicalObject(true))
}

// CanonicalForSigning returns the canonical bytes the Ed25519 signature
// covers: everything but the id and the signature itself.
func (e Entry) CanonicalForSigning() ([]byte, error) {
	return canonical.Marshal(e.canonicalObject(false))
}

// Address mints the entry's content address from its canonical bytes.
func (e Entry) Address() (string, error) {
	data, err := e.CanonicalWithoutID()
	if err != nil {
		return "", fmt.Errorf("address entry: %w", err)
	}
	return address.Hash(data), nil
}

// VerifyID recomputes the entry's address and reports whether it matches
// the presented ID. Used when re-verifying untrusted input.
func (e Entry) VerifyID() (bool, error) {
	want, err := e.Address()
	if err != nil {
		return false, err
	}
	return e.ID == want, nil
}
