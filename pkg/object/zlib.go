package object

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Compress deflates an object frame for on-disk storage.
func Compress(data []byte) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	zw.Write(data) // writes to bytes.Buffer cannot fail
	zw.Close()
	return buf.Bytes()
}

// Decompress inflates a stored object back to its frame bytes. Truncated or
// invalid streams fail with ErrCorruptObject.
func Decompress(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptObject, err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptObject, err)
	}
	return out, nil
}

// inflateExact inflates one zlib stream from the front of data, requiring
// exactly size logical bytes, and reports how many compressed bytes were
// consumed so the caller can continue at the next pack entry boundary.
// bytes.Reader implements io.ByteReader, so the decompressor never reads
// past the end of its own stream.
func inflateExact(data []byte, size uint64) ([]byte, int, error) {
	br := bytes.NewReader(data)
	zr, err := zlib.NewReader(br)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrCorruptObject, err)
	}

	out, err := io.ReadAll(zr)
	if err != nil {
		zr.Close()
		return nil, 0, fmt.Errorf("%w: %v", ErrCorruptObject, err)
	}
	if err := zr.Close(); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrCorruptObject, err)
	}
	if uint64(len(out)) != size {
		return nil, 0, fmt.Errorf("%w: inflated %d bytes, header declared %d", ErrCorruptObject, len(out), size)
	}
	return out, len(data) - br.Len(), nil
}
