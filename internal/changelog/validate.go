package changelog

import (
	"fmt"
	"strings"
	"time"

	"github.com/jlmalone/redo/internal/address"
)

const (
	userIDHexLen    = 32
	publicKeyHexLen = 64
	signatureHexLen = 128
)

// Violation describes one failed structural check with the field path
// that failed. The validator returns all violations, not just the first.
type Violation struct {
	Field   string
	Message string
}

func (v Violation) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// Validate applies the v1 structural gate to a single entry. An entry is
// acceptable only if every check passes; there is no partial acceptance
// and no normalization. Business semantics (payload shapes, aggregate
// existence) are not checked here.
func Validate(e Entry) []Violation {
	var errs []Violation

	if e.Version != Version {
		errs = append(errs, Violation{
			Field:   "version",
			Message: fmt.Sprintf("must be %d, got %d", Version, e.Version),
		})
	}

	if !address.IsValid(e.ID) {
		errs = append(errs, Violation{
			Field:   "id",
			Message: "must be \"sha256:\" followed by 64 lowercase hex characters",
		})
	}

	for i, p := range e.Parents {
		if !address.IsValid(p) {
			errs = append(errs, Violation{
				Field:   fmt.Sprintf("parents[%d]", i),
				Message: "must be \"sha256:\" followed by 64 lowercase hex characters",
			})
		}
	}

	if e.Timestamp.Lamport <= 0 {
		errs = append(errs, Violation{
			Field:   "timestamp.lamport",
			Message: fmt.Sprintf("must be > 0, got %d", e.Timestamp.Lamport),
		})
	}
	if _, err := ParseWall(e.Timestamp.Wall); err != nil {
		errs = append(errs, Violation{
			Field:   "timestamp.wall",
			Message: "must be a valid ISO-8601 timestamp",
		})
	}

	if len(e.Author.UserID) != userIDHexLen || !address.IsLowerHex(e.Author.UserID) {
		errs = append(errs, Violation{
			Field:   "author.userId",
			Message: "must be exactly 32 lowercase hex characters",
		})
	}
	if e.Author.DeviceID == "" {
		errs = append(errs, Violation{
			Field:   "author.deviceId",
			Message: "must be non-empty",
		})
	}
	if e.Author.PublicKey != "" {
		if len(e.Author.PublicKey) != publicKeyHexLen || !address.IsLowerHex(e.Author.PublicKey) {
			errs = append(errs, Violation{
				Field:   "author.publicKey",
				Message: "must be exactly 64 lowercase hex characters",
			})
		} else if !strings.HasPrefix(e.Author.PublicKey, e.Author.UserID) {
			// Cross-field consistency: the user identity is the public
			// key's first 32 hex characters.
			errs = append(errs, Violation{
				Field:   "author.userId",
				Message: "must equal the first 32 characters of author.publicKey",
			})
		}
	}

	if !e.Action.IsValid() {
		errs = append(errs, Violation{
			Field:   "action",
			Message: fmt.Sprintf("unknown action %q", string(e.Action)),
		})
	}

	if e.Signature != "" {
		if len(e.Signature) != signatureHexLen || !address.IsLowerHex(e.Signature) {
			errs = append(errs, Violation{
				Field:   "signature",
				Message: "must be exactly 128 lowercase hex characters",
			})
		}
	}

	return errs
}

// IsValid reports whether the entry passes the full structural gate.
func IsValid(e Entry) bool {
	return len(Validate(e)) == 0
}

// wallFormats are the accepted ISO-8601 renderings. Other clients emit
// RFC 3339 with or without fractional seconds.
var wallFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
}

// ParseWall parses an ISO-8601 wall timestamp.
func ParseWall(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range wallFormats {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("parse wall time %q: %w", s, lastErr)
}

// FormatWall renders a wall timestamp the way this client authors it.
// Parsing accepts more than this; formatting is fixed so locally minted
// entries hash predictably.
func FormatWall(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
