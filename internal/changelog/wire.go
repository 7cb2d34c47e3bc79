package changelog

import (
	"fmt"

	"github.com/jlmalone/redo/internal/canonical"
)

// MarshalJSON renders the entry in the v1 wire format. The encoding is
// the canonical one with the id field added, so exported bytes are
// deterministic for a given entry.
func (e Entry) MarshalJSON() ([]byte, error) {
	obj := e.canonicalObject(true)
	obj["id"] = canonical.String(e.ID)
	return canonical.Marshal(obj)
}

// UnmarshalEntry parses a single wire-format event.
//
// Parsing is deliberately lenient about field contents: a wrong-typed or
// missing field leaves the zero value in place and the structural
// validator rejects the entry afterwards. Only malformed JSON itself is an
// error here - the replay pipeline needs to see foreign or damaged
// entries so it can exclude them with a diagnostic rather than abort.
func UnmarshalEntry(data []byte) (Entry, error) {
	obj, err := canonical.ObjectFromJSON(data)
	if err != nil {
		return Entry{}, fmt.Errorf("unmarshal entry: %w", err)
	}
	return entryFromObject(obj), nil
}

// UnmarshalEntries parses a wire-format JSON array of events.
func UnmarshalEntries(data []byte) ([]Entry, error) {
	v, err := canonical.FromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("unmarshal entries: %w", err)
	}
	arr, ok := v.(canonical.Array)
	if !ok {
		return nil, fmt.Errorf("unmarshal entries: expected JSON array, got %T", v)
	}

	entries := make([]Entry, 0, len(arr))
	for i, elem := range arr {
		obj, ok := elem.(canonical.Object)
		if !ok {
			return nil, fmt.Errorf("unmarshal entries: element %d is not an object", i)
		}
		entries = append(entries, entryFromObject(obj))
	}
	return entries, nil
}

// MarshalEntries renders a collection of entries as a wire-format JSON
// array. Export order is preserved as given; consumers re-sort by Lamport
// counter, not by array position.
func MarshalEntries(entries []Entry) ([]byte, error) {
	arr := make(canonical.Array, len(entries))
	for i, e := range entries {
		obj := e.canonicalObject(true)
		obj["id"] = canonical.String(e.ID)
		arr[i] = obj
	}
	return canonical.Marshal(arr)
}

func entryFromObject(obj canonical.Object) Entry {
	var e Entry

	if s, ok := canonical.AsString(obj["id"]); ok {
		e.ID = s
	}
	if n, ok := canonical.AsInt(obj["version"]); ok {
		e.Version = int(n)
	}
	if arr, ok := canonical.AsArray(obj["parents"]); ok {
		e.Parents = make([]string, 0, len(arr))
		for _, p := range arr {
			s, _ := canonical.AsString(p)
			e.Parents = append(e.Parents, s)
		}
	}
	if ts, ok := canonical.AsObject(obj["timestamp"]); ok {
		if n, ok := canonical.AsInt(ts["lamport"]); ok {
			e.Timestamp.Lamport = n
		}
		if s, ok := canonical.AsString(ts["wall"]); ok {
			e.Timestamp.Wall = s
		}
	}
	if author, ok := canonical.AsObject(obj["author"]); ok {
		e.Author.UserID, _ = canonical.AsString(author["userId"])
		e.Author.DeviceID, _ = canonical.AsString(author["deviceId"])
		e.Author.Name, _ = canonical.AsString(author["name"])
		e.Author.PublicKey, _ = canonical.AsString(author["publicKey"])
	}
	if s, ok := canonical.AsString(obj["action"]); ok {
		e.Action = Action(s)
	}
	if s, ok := canonical.AsString(obj["taskId"]); ok {
		e.TaskID = s
	}
	if data, ok := canonical.AsObject(obj["data"]); ok {
		e.Data = data
	}
	if s, ok := canonical.AsString(obj["signature"]); ok {
		e.Signature = s
	}

	return e
}
