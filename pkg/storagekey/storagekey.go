// Package storagekey derives namespaced storage keys for keyed backends.
// Keys follow the ledger convention of prefixing the raw key with its
// blake2b-128 digest: lookups stay cheap and evenly distributed while the
// raw key remains recoverable for debugging.
package storagekey

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
)

const digestLen = 16

// Concat returns "<namespace>:<hex(blake2b128(part0||...))>:<part0>[:...]".
func Concat(namespace string, parts ...string) string {
	h, err := blake2b.New(digestLen, nil)
	if err != nil {
		// blake2b.New only fails on bad key/size arguments, both fixed here.
		panic(err)
	}
	for _, p := range parts {
		h.Write([]byte(p))
	}
	var b strings.Builder
	b.WriteString(namespace)
	b.WriteByte(':')
	b.WriteString(hex.EncodeToString(h.Sum(nil)))
	for _, p := range parts {
		b.WriteByte(':')
		b.WriteString(p)
	}
	return b.String()
}
