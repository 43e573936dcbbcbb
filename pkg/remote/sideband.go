package remote

import (
	"fmt"
	"io"

	"github.com/graybiralo/mingit/pkg/pktline"
)

// Sideband channel identifiers used by the multiplexed pack stream.
const (
	bandData     byte = 1
	bandProgress byte = 2
	bandError    byte = 3
)

// bandReader presents the data band of a sideband-multiplexed response as
// a sequential io.Reader. Progress frames are forwarded to a callback; an
// error frame aborts the stream with ErrRemote. A flush marker or EOF ends
// the stream.
type bandReader struct {
	pr         *pktline.Reader
	onProgress func(string)
	buf        []byte
	done       bool
}

func newBandReader(pr *pktline.Reader, onProgress func(string)) *bandReader {
	return &bandReader{pr: pr, onProgress: onProgress}
}

func (br *bandReader) Read(p []byte) (int, error) {
	for len(br.buf) == 0 {
		if br.done {
			return 0, io.EOF
		}
		line, err := br.pr.ReadLine()
		if err == io.EOF {
			br.done = true
			return 0, io.EOF
		}
		if err != nil {
			return 0, err
		}
		if line == nil {
			br.done = true
			return 0, io.EOF
		}
		if len(line) == 0 {
			continue
		}

		payload := line[1:]
		switch line[0] {
		case bandData:
			br.buf = payload
		case bandProgress:
			if br.onProgress != nil {
				br.onProgress(string(payload))
			}
		case bandError:
			return 0, fmt.Errorf("%w: %s", ErrRemote, trimEOL(string(payload)))
		default:
			return 0, fmt.Errorf("%w: unknown sideband channel %d", ErrProtocol, line[0])
		}
	}

	n := copy(p, br.buf)
	br.buf = br.buf[n:]
	return n, nil
}

func trimEOL(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
