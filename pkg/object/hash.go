package object

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// HashBytes computes the raw SHA-1 hash of data and returns it as a
// lowercase hex-encoded Hash.
func HashBytes(data []byte) Hash {
	sum := sha1.Sum(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// HashObject computes the SHA-1 of the frame "type len\0payload" without
// materializing the frame.
func HashObject(objType ObjectType, payload []byte) Hash {
	h := sha1.New()
	fmt.Fprintf(h, "%s %d\x00", objType, len(payload))
	h.Write(payload)
	return Hash(hex.EncodeToString(h.Sum(nil)))
}

// HashFrame computes the SHA-1 of an already-framed object.
func HashFrame(frame []byte) Hash {
	return HashBytes(frame)
}

// Valid reports whether h is a well-formed 40-character lowercase hex hash.
func (h Hash) Valid() bool {
	if len(h) != 2*RawHashLen {
		return false
	}
	for _, c := range []byte(h) {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// Raw returns the 20 raw digest bytes for binary encodings (tree entries,
// pack ref-deltas).
func (h Hash) Raw() ([]byte, error) {
	if !h.Valid() {
		return nil, fmt.Errorf("invalid hash %q", string(h))
	}
	return hex.DecodeString(string(h))
}

// HashFromRaw converts 20 raw digest bytes into hex form.
func HashFromRaw(raw []byte) (Hash, error) {
	if len(raw) != RawHashLen {
		return "", fmt.Errorf("raw hash length %d, want %d", len(raw), RawHashLen)
	}
	return Hash(hex.EncodeToString(raw)), nil
}
