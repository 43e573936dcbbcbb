package object

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// countStoredObjects walks the store's fan-out tree.
func countStoredObjects(t *testing.T, s *Store) int {
	t.Helper()
	count := 0
	root := filepath.Join(s.root, "objects")
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() {
			count++
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		t.Fatalf("walk objects: %v", err)
	}
	return count
}

func TestPackHeaderRoundTrip(t *testing.T) {
	h := PackHeader{Version: 2, NumObjects: 7}
	got, err := UnmarshalPackHeader(h.Marshal())
	if err != nil {
		t.Fatalf("UnmarshalPackHeader: %v", err)
	}
	if got.Version != 2 || got.NumObjects != 7 {
		t.Errorf("Header: got %+v", got)
	}
}

func TestPackHeaderBadMagic(t *testing.T) {
	data := PackHeader{Version: 2, NumObjects: 1}.Marshal()
	data[0] = 'J'
	if _, err := UnmarshalPackHeader(data); !errors.Is(err, ErrUnsupportedPackFormat) {
		t.Errorf("Bad magic: got %v, want ErrUnsupportedPackFormat", err)
	}
}

func TestPackHeaderBadVersion(t *testing.T) {
	data := PackHeader{Version: 3, NumObjects: 1}.Marshal()
	if _, err := UnmarshalPackHeader(data); !errors.Is(err, ErrUnsupportedPackFormat) {
		t.Errorf("Version 3: got %v, want ErrUnsupportedPackFormat", err)
	}
}

func TestPackEntryHeaderRoundTrip(t *testing.T) {
	sizes := []uint64{0, 1, 15, 16, 127, 128, 300, 65536, 1 << 30}
	for _, size := range sizes {
		enc := encodePackEntryHeader(PackBlob, size)
		kind, gotSize, consumed, err := decodePackEntryHeader(enc)
		if err != nil {
			t.Fatalf("size %d: decode: %v", size, err)
		}
		if kind != PackBlob {
			t.Errorf("size %d: kind %d, want %d", size, kind, PackBlob)
		}
		if gotSize != size {
			t.Errorf("size %d: decoded %d", size, gotSize)
		}
		if consumed != len(enc) {
			t.Errorf("size %d: consumed %d of %d bytes", size, consumed, len(enc))
		}
	}
}

func TestPackEntryHeaderTruncated(t *testing.T) {
	enc := encodePackEntryHeader(PackCommit, 1<<20)
	if _, _, _, err := decodePackEntryHeader(enc[:1]); !errors.Is(err, ErrCorruptObject) {
		t.Errorf("Truncated header: got %v, want ErrCorruptObject", err)
	}
	if _, _, _, err := decodePackEntryHeader(nil); !errors.Is(err, ErrCorruptObject) {
		t.Errorf("Empty header: got %v, want ErrCorruptObject", err)
	}
}

func TestOfsDeltaDistanceRoundTrip(t *testing.T) {
	for _, d := range []uint64{0, 1, 127, 128, 129, 16383, 16384, 1 << 20} {
		enc := encodeOfsDeltaDistance(d)
		got, consumed, err := decodeOfsDeltaDistance(enc)
		if err != nil {
			t.Fatalf("distance %d: %v", d, err)
		}
		if got != d {
			t.Errorf("distance %d: decoded %d", d, got)
		}
		if consumed != len(enc) {
			t.Errorf("distance %d: consumed %d of %d", d, consumed, len(enc))
		}
	}
}

func TestApplyInsertOnlyDelta(t *testing.T) {
	base := []byte("base object content")
	target := bytes.Repeat([]byte("payload "), 40) // forces multiple insert chunks

	got, err := applyDelta(base, buildInsertOnlyDelta(base, target))
	if err != nil {
		t.Fatalf("applyDelta: %v", err)
	}
	if !bytes.Equal(got, target) {
		t.Errorf("Delta result mismatch")
	}
}

func TestApplyDeltaCopyCommand(t *testing.T) {
	base := []byte("0123456789abcdef")

	// copy(offset=4, size=8): cmd 0x80|0x01|0x10, offset byte, size byte
	var delta bytes.Buffer
	delta.Write(encodeDeltaVarint(uint64(len(base))))
	delta.Write(encodeDeltaVarint(8))
	delta.Write([]byte{0x80 | 0x01 | 0x10, 4, 8})

	got, err := applyDelta(base, delta.Bytes())
	if err != nil {
		t.Fatalf("applyDelta: %v", err)
	}
	if string(got) != "456789ab" {
		t.Errorf("Copy result: got %q, want %q", got, "456789ab")
	}
}

func TestApplyDeltaCorrupt(t *testing.T) {
	base := []byte("short base")

	wrongBase := buildInsertOnlyDelta([]byte("different length"), []byte("t"))
	if _, err := applyDelta(base, wrongBase); !errors.Is(err, ErrCorruptObject) {
		t.Errorf("Base size mismatch: got %v, want ErrCorruptObject", err)
	}

	// copy beyond the end of base
	var delta bytes.Buffer
	delta.Write(encodeDeltaVarint(uint64(len(base))))
	delta.Write(encodeDeltaVarint(4))
	delta.Write([]byte{0x80 | 0x01 | 0x10, 8, 4})
	if _, err := applyDelta(base, delta.Bytes()); !errors.Is(err, ErrCorruptObject) {
		t.Errorf("Out-of-bounds copy: got %v, want ErrCorruptObject", err)
	}

	// zero command byte is reserved
	var zero bytes.Buffer
	zero.Write(encodeDeltaVarint(uint64(len(base))))
	zero.Write(encodeDeltaVarint(1))
	zero.WriteByte(0)
	if _, err := applyDelta(base, zero.Bytes()); !errors.Is(err, ErrCorruptObject) {
		t.Errorf("Zero command: got %v, want ErrCorruptObject", err)
	}
}

func TestUnpackBaseObjects(t *testing.T) {
	s := tempStore(t)

	payloads := [][]byte{
		[]byte("first blob"),
		[]byte("second blob"),
		[]byte("100644 f\x00" + string(bytes.Repeat([]byte{0xaa}, RawHashLen))),
	}
	types := []ObjectType{TypeBlob, TypeBlob, TypeTree}

	b := NewPackBuilder()
	for i := range payloads {
		if _, err := b.AddObject(types[i], payloads[i]); err != nil {
			t.Fatalf("AddObject %d: %v", i, err)
		}
	}

	n, err := Unpack(b.Finish(), s)
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if n != 3 {
		t.Errorf("Objects decoded: got %d, want 3", n)
	}
	for i := range payloads {
		h := HashObject(types[i], payloads[i])
		typ, data, err := s.Read(h)
		if err != nil {
			t.Fatalf("Read %s: %v", h, err)
		}
		if typ != types[i] || !bytes.Equal(data, payloads[i]) {
			t.Errorf("Object %d round-trip mismatch", i)
		}
	}
}

func TestUnpackOfsDelta(t *testing.T) {
	s := tempStore(t)
	base := []byte("the base blob body")
	target := []byte("a fully different target")

	b := NewPackBuilder()
	baseOff, err := b.AddObject(TypeBlob, base)
	if err != nil {
		t.Fatalf("AddObject: %v", err)
	}
	if _, err := b.AddOfsDelta(baseOff, InsertDelta(base, target)); err != nil {
		t.Fatalf("AddOfsDelta: %v", err)
	}

	n, err := Unpack(b.Finish(), s)
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if n != 2 {
		t.Errorf("Objects decoded: got %d, want 2", n)
	}

	got, err := s.ReadBlob(HashObject(TypeBlob, target))
	if err != nil {
		t.Fatalf("ReadBlob(target): %v", err)
	}
	if !bytes.Equal(got.Data, target) {
		t.Errorf("Delta target: got %q, want %q", got.Data, target)
	}
}

func TestUnpackRefDeltaInPack(t *testing.T) {
	s := tempStore(t)
	base := []byte("ref delta base")
	target := []byte("ref delta target")

	b := NewPackBuilder()
	if _, err := b.AddObject(TypeBlob, base); err != nil {
		t.Fatalf("AddObject: %v", err)
	}
	if _, err := b.AddRefDelta(HashObject(TypeBlob, base), InsertDelta(base, target)); err != nil {
		t.Fatalf("AddRefDelta: %v", err)
	}

	if _, err := Unpack(b.Finish(), s); err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if !s.Has(HashObject(TypeBlob, target)) {
		t.Error("Delta target missing from store")
	}
}

func TestUnpackRefDeltaAgainstStore(t *testing.T) {
	// The base is already in the store from an earlier fetch; the pack
	// carries only the delta.
	s := tempStore(t)
	base := []byte("previously fetched base")
	target := []byte("new revision")

	baseHash, err := s.Write(TypeBlob, base)
	if err != nil {
		t.Fatalf("Write base: %v", err)
	}

	b := NewPackBuilder()
	if _, err := b.AddRefDelta(baseHash, InsertDelta(base, target)); err != nil {
		t.Fatalf("AddRefDelta: %v", err)
	}

	n, err := Unpack(b.Finish(), s)
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if n != 1 {
		t.Errorf("Objects decoded: got %d, want 1", n)
	}
	if !s.Has(HashObject(TypeBlob, target)) {
		t.Error("Delta target missing from store")
	}
}

func TestUnpackRefDeltaUnresolved(t *testing.T) {
	s := tempStore(t)
	base := []byte("base nobody has")
	target := []byte("unreachable target")

	b := NewPackBuilder()
	if _, err := b.AddRefDelta(HashObject(TypeBlob, base), InsertDelta(base, target)); err != nil {
		t.Fatalf("AddRefDelta: %v", err)
	}

	_, err := Unpack(b.Finish(), s)
	if !errors.Is(err, ErrUnresolvedDelta) {
		t.Errorf("Unpack: got %v, want ErrUnresolvedDelta", err)
	}
	if countStoredObjects(t, s) != 0 {
		t.Error("Failed unpack left objects in the store")
	}
}

func TestUnpackChecksumMismatch(t *testing.T) {
	s := tempStore(t)
	b := NewPackBuilder()
	if _, err := b.AddObject(TypeBlob, []byte("will not survive")); err != nil {
		t.Fatalf("AddObject: %v", err)
	}
	pack := b.Finish()
	pack[len(pack)-1] ^= 0xff

	_, err := Unpack(pack, s)
	if !errors.Is(err, ErrPackChecksumMismatch) {
		t.Errorf("Unpack: got %v, want ErrPackChecksumMismatch", err)
	}
	if countStoredObjects(t, s) != 0 {
		t.Error("Corrupt pack left objects in the store")
	}
}

func TestUnpackTruncatedTrailer(t *testing.T) {
	s := tempStore(t)
	b := NewPackBuilder()
	if _, err := b.AddObject(TypeBlob, []byte("truncated stream")); err != nil {
		t.Fatalf("AddObject: %v", err)
	}
	pack := b.Finish()

	_, err := Unpack(pack[:len(pack)-1], s)
	if !errors.Is(err, ErrPackChecksumMismatch) {
		t.Errorf("Unpack: got %v, want ErrPackChecksumMismatch", err)
	}
	if countStoredObjects(t, s) != 0 {
		t.Error("Truncated pack left objects in the store")
	}
}

func TestUnpackTooShort(t *testing.T) {
	s := tempStore(t)
	if _, err := Unpack([]byte("PACK"), s); !errors.Is(err, ErrUnsupportedPackFormat) {
		t.Errorf("Unpack(short): got %v, want ErrUnsupportedPackFormat", err)
	}
}

func TestUnpackFromReader(t *testing.T) {
	s := tempStore(t)
	b := NewPackBuilder()
	payload := []byte("streamed object")
	if _, err := b.AddObject(TypeBlob, payload); err != nil {
		t.Fatalf("AddObject: %v", err)
	}

	n, err := UnpackFromReader(bytes.NewReader(b.Finish()), s)
	if err != nil {
		t.Fatalf("UnpackFromReader: %v", err)
	}
	if n != 1 {
		t.Errorf("Objects decoded: got %d, want 1", n)
	}
	if !s.Has(HashObject(TypeBlob, payload)) {
		t.Error("Object missing from store")
	}
}
