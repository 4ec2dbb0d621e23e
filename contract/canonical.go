package contract

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// CanonicalJSON serializes v into a deterministic JSON byte form: object
// keys sorted byte-lexicographically at every depth, no insignificant
// whitespace, array order preserved, numbers carried through without
// reformatting. It fails only when v (or a nested value) cannot be
// represented in JSON at all — in particular NaN and infinite floats,
// which Go's encoder already refuses to marshal.
//
// The implementation relies on a documented property of encoding/json:
// marshaling a map[string]any always emits its keys in sorted order with no
// extra whitespace. Re-decoding the first-pass marshal into `any` collapses
// every struct into nested map[string]any (using json.Number so integers and
// floats keep their original digit sequence), so the second marshal pass
// yields keys sorted at every depth, not just the top level.
func CanonicalJSON(v any) ([]byte, error) {
	primary, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("contract: canonical json: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(primary))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("contract: canonical json: %w", err)
	}
	canon, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("contract: canonical json: %w", err)
	}
	return canon, nil
}

// SHA256Hex returns the lowercase hex-encoded SHA-256 digest of data.
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
