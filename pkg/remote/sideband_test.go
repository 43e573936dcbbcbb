package remote

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graybiralo/mingit/pkg/pktline"
)

func sidebandFrame(t *testing.T, w *pktline.Writer, channel byte, payload string) {
	t.Helper()
	require.NoError(t, w.WriteLine(append([]byte{channel}, payload...)))
}

func TestBandReaderDemux(t *testing.T) {
	var buf bytes.Buffer
	w := pktline.NewWriter(&buf)
	sidebandFrame(t, w, bandData, "PACK....")
	sidebandFrame(t, w, bandProgress, "Counting objects: 4\r")
	sidebandFrame(t, w, bandData, "rest of the stream")
	sidebandFrame(t, w, bandProgress, "done.\n")
	require.NoError(t, w.Flush())

	var progress []string
	br := newBandReader(pktline.NewReader(&buf), func(msg string) {
		progress = append(progress, msg)
	})

	data, err := io.ReadAll(br)
	require.NoError(t, err)
	assert.Equal(t, "PACK....rest of the stream", string(data))
	assert.Equal(t, []string{"Counting objects: 4\r", "done.\n"}, progress)
}

func TestBandReaderErrorChannel(t *testing.T) {
	var buf bytes.Buffer
	w := pktline.NewWriter(&buf)
	sidebandFrame(t, w, bandData, "partial")
	sidebandFrame(t, w, bandError, "fatal: repository vanished\n")

	br := newBandReader(pktline.NewReader(&buf), nil)
	_, err := io.ReadAll(br)
	require.ErrorIs(t, err, ErrRemote)
	assert.Contains(t, err.Error(), "repository vanished")
}

func TestBandReaderUnknownChannel(t *testing.T) {
	var buf bytes.Buffer
	w := pktline.NewWriter(&buf)
	sidebandFrame(t, w, 9, "mystery")

	br := newBandReader(pktline.NewReader(&buf), nil)
	_, err := io.ReadAll(br)
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestBandReaderEndsAtEOF(t *testing.T) {
	var buf bytes.Buffer
	w := pktline.NewWriter(&buf)
	sidebandFrame(t, w, bandData, "only frame")
	// stream ends without a flush marker

	br := newBandReader(pktline.NewReader(&buf), nil)
	data, err := io.ReadAll(br)
	require.NoError(t, err)
	assert.Equal(t, "only frame", string(data))
}

func TestTrimEOL(t *testing.T) {
	assert.Equal(t, "msg", trimEOL("msg\r\n"))
	assert.Equal(t, "msg", trimEOL("msg\n"))
	assert.Equal(t, "msg", trimEOL("msg"))
	assert.Equal(t, "", trimEOL("\n"))
}
