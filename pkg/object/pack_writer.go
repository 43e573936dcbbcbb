package object

import (
	"bytes"
	"crypto/sha1"
	"fmt"

	"github.com/klauspost/compress/zlib"
)

// PackBuilder assembles a version-2 pack stream. It exists for the test
// fixtures and the local fixture remote; entry offsets are exposed so
// callers can construct ofs-delta entries.
type PackBuilder struct {
	body  bytes.Buffer
	count uint32
}

// NewPackBuilder returns an empty builder.
func NewPackBuilder() *PackBuilder {
	return &PackBuilder{}
}

func (b *PackBuilder) deflate(data []byte) {
	zw := zlib.NewWriter(&b.body)
	zw.Write(data)
	zw.Close()
}

// nextOffset is the stream offset the next entry will occupy, counting the
// 12-byte header that Finish prepends.
func (b *PackBuilder) nextOffset() int {
	return packHeaderSize + b.body.Len()
}

// AddObject appends a non-delta entry and returns its stream offset.
func (b *PackBuilder) AddObject(objType ObjectType, data []byte) (int, error) {
	kind, ok := packType(objType)
	if !ok {
		return 0, fmt.Errorf("%w: object type %q", ErrUnsupportedPackFormat, objType)
	}
	off := b.nextOffset()
	b.body.Write(encodePackEntryHeader(kind, uint64(len(data))))
	b.deflate(data)
	b.count++
	return off, nil
}

// AddOfsDelta appends an offset-delta entry whose base is the entry at
// baseOffset (as returned by AddObject), and returns its stream offset.
func (b *PackBuilder) AddOfsDelta(baseOffset int, delta []byte) (int, error) {
	off := b.nextOffset()
	if baseOffset <= 0 || baseOffset >= off {
		return 0, fmt.Errorf("%w: ofs-delta base offset %d", ErrUnresolvedDelta, baseOffset)
	}
	b.body.Write(encodePackEntryHeader(PackOfsDelta, uint64(len(delta))))
	b.body.Write(encodeOfsDeltaDistance(uint64(off - baseOffset)))
	b.deflate(delta)
	b.count++
	return off, nil
}

// AddRefDelta appends a reference-delta entry against the given base hash.
func (b *PackBuilder) AddRefDelta(base Hash, delta []byte) (int, error) {
	raw, err := base.Raw()
	if err != nil {
		return 0, fmt.Errorf("ref-delta base: %w", err)
	}
	off := b.nextOffset()
	b.body.Write(encodePackEntryHeader(PackRefDelta, uint64(len(delta))))
	b.body.Write(raw)
	b.deflate(delta)
	b.count++
	return off, nil
}

// InsertDelta builds a literal-insert delta stream encoding target against
// base, suitable for AddOfsDelta/AddRefDelta.
func InsertDelta(base, target []byte) []byte {
	return buildInsertOnlyDelta(base, target)
}

// Finish prepends the header, appends the SHA-1 trailer, and returns the
// complete pack stream.
func (b *PackBuilder) Finish() []byte {
	header := PackHeader{Version: supportedPackVersion, NumObjects: b.count}.Marshal()
	out := make([]byte, 0, len(header)+b.body.Len()+RawHashLen)
	out = append(out, header...)
	out = append(out, b.body.Bytes()...)
	sum := sha1.Sum(out)
	return append(out, sum[:]...)
}
