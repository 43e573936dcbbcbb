package object

import (
	"bytes"
	"fmt"
	"strconv"
)

// Frame builds the canonical object frame "type len\0payload". The hash of
// an object is always computed over this frame, never over the compressed
// on-disk bytes.
func Frame(objType ObjectType, payload []byte) []byte {
	header := fmt.Sprintf("%s %d\x00", objType, len(payload))
	frame := make([]byte, 0, len(header)+len(payload))
	frame = append(frame, header...)
	frame = append(frame, payload...)
	return frame
}

// ParseFrame splits a frame into object type and payload. The header must
// be exactly "word SP digits NUL" and the declared length must match the
// remaining byte count.
func ParseFrame(raw []byte) (ObjectType, []byte, error) {
	nul := bytes.IndexByte(raw, 0)
	if nul < 0 {
		return "", nil, fmt.Errorf("%w: header has no NUL terminator", ErrMalformedObject)
	}
	header := raw[:nul]
	payload := raw[nul+1:]

	sp := bytes.IndexByte(header, ' ')
	if sp <= 0 || sp == len(header)-1 {
		return "", nil, fmt.Errorf("%w: invalid header %q", ErrMalformedObject, header)
	}
	typ := header[:sp]
	lenField := header[sp+1:]
	for _, c := range lenField {
		if c < '0' || c > '9' {
			return "", nil, fmt.Errorf("%w: non-numeric length %q", ErrMalformedObject, lenField)
		}
	}
	size, err := strconv.Atoi(string(lenField))
	if err != nil {
		return "", nil, fmt.Errorf("%w: length %q: %v", ErrMalformedObject, lenField, err)
	}
	if size != len(payload) {
		return "", nil, fmt.Errorf("%w: length mismatch (header=%d, actual=%d)", ErrMalformedObject, size, len(payload))
	}
	return ObjectType(typ), payload, nil
}
