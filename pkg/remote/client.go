// Package remote implements the client side of the Smart HTTP transfer
// protocol: anonymous ref discovery, pack negotiation, and sideband
// demultiplexing of the returned pack stream.
package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/graybiralo/mingit/pkg/object"
	"github.com/graybiralo/mingit/pkg/pktline"
)

const (
	uploadPackService = "git-upload-pack"

	advertisementContentType = "application/x-git-upload-pack-advertisement"
	requestContentType       = "application/x-git-upload-pack-request"
	resultContentType        = "application/x-git-upload-pack-result"

	// wantCapabilities is sent on the first want line. side-band-64k asks
	// the server to multiplex the pack with progress/error bands.
	wantCapabilities = "side-band-64k"
)

// Options configures the transfer client.
type Options struct {
	Timeout  time.Duration // HTTP client timeout (default 60s)
	Progress func(string)  // receives sideband progress messages
}

// Client is an anonymous Smart HTTP transfer client for one remote.
type Client struct {
	baseURL    string
	httpClient *http.Client
	progress   func(string)
}

// NewClient creates a client for the given remote URL. The URL must carry
// a scheme and host; a trailing slash or ".git" suffix is tolerated.
func NewClient(remoteURL string, opts Options) (*Client, error) {
	remoteURL = strings.TrimRight(strings.TrimSpace(remoteURL), "/")
	if remoteURL == "" {
		return nil, fmt.Errorf("remote URL is required")
	}
	u, err := url.Parse(remoteURL)
	if err != nil {
		return nil, fmt.Errorf("parse remote URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("remote URL %q must include scheme and host", remoteURL)
	}

	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	progress := opts.Progress
	if progress == nil {
		progress = func(msg string) {
			logrus.WithField("remote", u.Host).Debug(strings.TrimSpace(msg))
		}
	}

	return &Client{
		baseURL:    remoteURL,
		httpClient: &http.Client{Timeout: opts.Timeout},
		progress:   progress,
	}, nil
}

// BaseURL returns the normalized remote URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// DiscoverRefs performs the ref discovery phase: GET info/refs for the
// upload-pack service and parse the advertisement.
func (c *Client) DiscoverRefs(ctx context.Context) (*Advertisement, error) {
	endpoint := c.baseURL + "/info/refs?service=" + uploadPackService
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: discovery request: %v", ErrProtocol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: discovery returned %s", ErrProtocol, resp.Status)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, advertisementContentType) {
		return nil, fmt.Errorf("%w: unexpected discovery content type %q", ErrProtocol, ct)
	}

	adv, err := parseAdvertisement(resp.Body, uploadPackService)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"remote": c.baseURL,
		"refs":   len(adv.Refs),
	}).Debug("ref discovery complete")
	return adv, nil
}

// FetchPack performs the negotiation phase for a full clone of want and
// returns the raw pack stream. The request carries a single want, no
// haves, and a done line; the response's leading NAK and any sideband
// framing are stripped.
func (c *Client) FetchPack(ctx context.Context, want object.Hash) ([]byte, error) {
	if !want.Valid() {
		return nil, fmt.Errorf("%w: invalid want hash %q", ErrProtocol, string(want))
	}

	var body bytes.Buffer
	pw := pktline.NewWriter(&body)
	if err := pw.WriteLineString(fmt.Sprintf("want %s %s\n", want, wantCapabilities)); err != nil {
		return nil, err
	}
	if err := pw.Flush(); err != nil {
		return nil, err
	}
	if err := pw.WriteLineString("done\n"); err != nil {
		return nil, err
	}

	endpoint := c.baseURL + "/" + uploadPackService
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", requestContentType)
	req.Header.Set("Accept", resultContentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: negotiation request: %v", ErrProtocol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: negotiation returned %s", ErrProtocol, resp.Status)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, resultContentType) {
		return nil, fmt.Errorf("%w: unexpected negotiation content type %q", ErrProtocol, ct)
	}

	return c.readPackResponse(resp.Body)
}

// readPackResponse consumes the negotiation response: the acknowledgment
// pkt-line, then the pack stream, sideband-framed when the server granted
// the capability and unframed otherwise.
func (c *Client) readPackResponse(r io.Reader) ([]byte, error) {
	pr := pktline.NewReader(r)

	ack, err := pr.ReadLineString()
	if err != nil {
		return nil, fmt.Errorf("read acknowledgment: %w", err)
	}
	if strings.TrimSpace(ack) != "NAK" {
		return nil, fmt.Errorf("%w: expected NAK, got %q", ErrProtocol, strings.TrimSpace(ack))
	}

	// A pack signature directly after NAK means the server ignored the
	// sideband request and sent the stream unframed.
	raw := pr.Raw()
	sig, err := raw.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("%w: truncated pack response: %v", ErrProtocol, err)
	}

	var src io.Reader
	if string(sig) == "PACK" {
		src = raw
	} else {
		src = newBandReader(pr, c.progress)
	}

	pack, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	return pack, nil
}
