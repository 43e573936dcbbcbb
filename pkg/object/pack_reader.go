package object

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"io"
)

// decodedEntry is one fully-resolved object from a pack stream, kept in an
// append-only arena in stream order so ofs-deltas can resolve by index.
type decodedEntry struct {
	Type ObjectType
	Data []byte
}

// Unpack verifies and decodes a complete pack stream, persisting every
// decoded object into store. It returns the number of objects decoded.
//
// The trailer checksum is verified before any entry is decoded, and store
// writes happen only after the whole stream has decoded and every delta
// has resolved, so a bad pack leaves the store untouched.
func Unpack(data []byte, store *Store) (int, error) {
	if len(data) < packHeaderSize+RawHashLen {
		return 0, fmt.Errorf("%w: pack too short (%d bytes)", ErrUnsupportedPackFormat, len(data))
	}

	payload := data[:len(data)-RawHashLen]
	trailer := data[len(data)-RawHashLen:]

	sum := sha1.Sum(payload)
	if !bytes.Equal(sum[:], trailer) {
		return 0, ErrPackChecksumMismatch
	}

	header, err := UnmarshalPackHeader(payload[:packHeaderSize])
	if err != nil {
		return 0, err
	}

	arena := make([]decodedEntry, 0, header.NumObjects)
	byOffset := make(map[int]int, header.NumObjects)
	byHash := make(map[Hash]int, header.NumObjects)

	offset := packHeaderSize
	for i := uint32(0); i < header.NumObjects; i++ {
		entryStart := offset

		kind, size, n, err := decodePackEntryHeader(payload[offset:])
		if err != nil {
			return 0, fmt.Errorf("entry %d: %w", i, err)
		}
		offset += n

		var (
			baseType ObjectType
			baseData []byte
			isDelta  bool
		)
		switch kind {
		case PackOfsDelta:
			isDelta = true
			dist, n, err := decodeOfsDeltaDistance(payload[offset:])
			if err != nil {
				return 0, fmt.Errorf("entry %d: %w", i, err)
			}
			offset += n

			baseOffset := entryStart - int(dist)
			idx, ok := byOffset[baseOffset]
			if !ok {
				return 0, fmt.Errorf("%w: entry %d: no base at offset %d", ErrUnresolvedDelta, i, baseOffset)
			}
			baseType = arena[idx].Type
			baseData = arena[idx].Data

		case PackRefDelta:
			isDelta = true
			if len(payload[offset:]) < RawHashLen {
				return 0, fmt.Errorf("%w: entry %d: truncated base hash", ErrCorruptObject, i)
			}
			baseHash, err := HashFromRaw(payload[offset : offset+RawHashLen])
			if err != nil {
				return 0, fmt.Errorf("entry %d: %w", i, err)
			}
			offset += RawHashLen

			if idx, ok := byHash[baseHash]; ok {
				baseType = arena[idx].Type
				baseData = arena[idx].Data
			} else {
				// The base may have been sent out-of-band or exist from an
				// earlier fetch; fall back to the store.
				objType, objData, err := store.Read(baseHash)
				if err != nil {
					return 0, fmt.Errorf("%w: entry %d: base %s: %v", ErrUnresolvedDelta, i, baseHash, err)
				}
				baseType = objType
				baseData = objData
			}
		}

		raw, consumed, err := inflateExact(payload[offset:], size)
		if err != nil {
			return 0, fmt.Errorf("entry %d: %w", i, err)
		}
		offset += consumed

		var entry decodedEntry
		if isDelta {
			result, err := applyDelta(baseData, raw)
			if err != nil {
				return 0, fmt.Errorf("entry %d: %w", i, err)
			}
			entry = decodedEntry{Type: baseType, Data: result}
		} else {
			objType, ok := kind.objectType()
			if !ok {
				return 0, fmt.Errorf("%w: entry %d: object kind %d", ErrUnsupportedPackFormat, i, kind)
			}
			entry = decodedEntry{Type: objType, Data: raw}
		}

		arena = append(arena, entry)
		byOffset[entryStart] = len(arena) - 1
		byHash[HashObject(entry.Type, entry.Data)] = len(arena) - 1
	}

	if offset != len(payload) {
		return 0, fmt.Errorf("%w: %d undecoded trailing bytes", ErrCorruptObject, len(payload)-offset)
	}

	for i, e := range arena {
		if _, err := store.Write(e.Type, e.Data); err != nil {
			return 0, fmt.Errorf("persist entry %d: %w", i, err)
		}
	}
	return len(arena), nil
}

// UnpackFromReader reads a complete pack stream from r and delegates to
// Unpack for decode and verification.
func UnpackFromReader(r io.Reader, store *Store) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("read pack stream: %w", err)
	}
	return Unpack(data, store)
}
