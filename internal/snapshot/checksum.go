// Package snapshot holds the canonical checksum shared by the client and
// the sync server. Both sides must produce identical digests for the same
// alarm set regardless of field order or whitespace in transit.
package snapshot

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// ChecksumRaw computes the hex sha256 digest of the canonical form of the
// given alarm objects: each object compacted, the set sorted by its "id"
// field and serialized as a JSON array. An object without an id field is
// rejected.
func ChecksumRaw(items []json.RawMessage) (string, error) {
	type keyed struct {
		id  string
		raw []byte
	}

	list := make([]keyed, 0, len(items))
	for _, item := range items {
		var probe struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(item, &probe); err != nil {
			return "", fmt.Errorf("parsing alarm object: %w", err)
		}
		if probe.ID == "" {
			return "", fmt.Errorf("alarm object has no id")
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, item); err != nil {
			return "", fmt.Errorf("compacting alarm object: %w", err)
		}
		list = append(list, keyed{id: probe.ID, raw: buf.Bytes()})
	}

	sort.Slice(list, func(i, j int) bool { return list[i].id < list[j].id })

	var canon bytes.Buffer
	canon.WriteByte('[')
	for i, k := range list {
		if i > 0 {
			canon.WriteByte(',')
		}
		canon.Write(k.raw)
	}
	canon.WriteByte(']')

	sum := sha256.Sum256(canon.Bytes())
	return hex.EncodeToString(sum[:]), nil
}

// Checksum marshals each value and delegates to ChecksumRaw.
func Checksum[T any](items []T) (string, error) {
	raws := make([]json.RawMessage, 0, len(items))
	for _, it := range items {
		b, err := json.Marshal(it)
		if err != nil {
			return "", fmt.Errorf("marshaling alarm: %w", err)
		}
		raws = append(raws, b)
	}
	return ChecksumRaw(raws)
}
