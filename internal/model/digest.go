package model

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// DigestBytes computes the content digest of an object state.
func DigestBytes(contents []byte) ObjectDigest {
	sum := blake2b.Sum256(contents)
	return ObjectDigest("0x" + hex.EncodeToString(sum[:]))
}
