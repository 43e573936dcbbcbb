package remote

import (
	"fmt"
	"io"
	"strings"

	"github.com/graybiralo/mingit/pkg/object"
	"github.com/graybiralo/mingit/pkg/pktline"
)

// Ref is one reference advertised by the remote.
type Ref struct {
	Name string
	Hash object.Hash
}

// Advertisement is the parsed result of ref discovery.
type Advertisement struct {
	Refs         []Ref
	Capabilities map[string]string // flag capabilities have an empty value
	// HeadSymref is the target of the remote's HEAD (from the
	// "symref=HEAD:refs/heads/x" capability), or "" if not advertised.
	HeadSymref string
}

// Capability returns the value of a capability and whether it was
// advertised.
func (a *Advertisement) Capability(name string) (string, bool) {
	v, ok := a.Capabilities[name]
	return v, ok
}

// zeroID is advertised by empty repositories alongside "capabilities^{}".
const zeroID = object.Hash("0000000000000000000000000000000000000000")

// parseAdvertisement decodes the info/refs response: a service
// announcement pkt-line, a flush, then "<hash> <refname>" lines (the first
// carrying NUL-separated capabilities) until the terminating flush.
func parseAdvertisement(r io.Reader, service string) (*Advertisement, error) {
	pr := pktline.NewReader(r)

	announce, err := pr.ReadLineString()
	if err != nil {
		return nil, fmt.Errorf("read service announcement: %w", err)
	}
	if strings.TrimSpace(announce) != "# service="+service {
		return nil, fmt.Errorf("%w: unexpected service announcement %q", ErrProtocol, strings.TrimSpace(announce))
	}
	// The announcement is followed by its own flush marker.
	if line, err := pr.ReadLine(); err != nil {
		return nil, fmt.Errorf("read announcement flush: %w", err)
	} else if line != nil {
		return nil, fmt.Errorf("%w: missing flush after service announcement", ErrProtocol)
	}

	adv := &Advertisement{Capabilities: make(map[string]string)}
	first := true
	for {
		line, err := pr.ReadLine()
		if err != nil {
			if err == io.EOF {
				return nil, fmt.Errorf("%w: advertisement not terminated by flush", ErrProtocol)
			}
			return nil, fmt.Errorf("read ref line: %w", err)
		}
		if line == nil {
			break // terminating flush
		}

		text := strings.TrimSuffix(string(line), "\n")
		if first {
			var caps string
			text, caps, _ = strings.Cut(text, "\x00")
			parseCapabilities(caps, adv)
			first = false
		}

		hashStr, name, ok := strings.Cut(text, " ")
		if !ok {
			return nil, fmt.Errorf("%w: malformed ref line %q", ErrProtocol, text)
		}
		h := object.Hash(hashStr)
		if !h.Valid() {
			return nil, fmt.Errorf("%w: bad hash in ref line %q", ErrProtocol, text)
		}
		if h == zeroID && name == "capabilities^{}" {
			continue // empty repository placeholder
		}
		adv.Refs = append(adv.Refs, Ref{Name: name, Hash: h})
	}

	return adv, nil
}

func parseCapabilities(raw string, adv *Advertisement) {
	for _, cap := range strings.Fields(raw) {
		name, value, _ := strings.Cut(cap, "=")
		adv.Capabilities[name] = value
		if name == "symref" {
			if src, dst, ok := strings.Cut(value, ":"); ok && src == "HEAD" {
				adv.HeadSymref = dst
			}
		}
	}
}

// CloneTarget selects the commit a full clone should fetch and the local
// branch ref to create for it.
//
// Preference order: the advertised HEAD ref (branch name resolved through
// the symref capability or a branch with the same hash), then
// refs/heads/master, then refs/heads/main. ErrRefNotFound if none apply.
func (a *Advertisement) CloneTarget() (object.Hash, string, error) {
	byName := make(map[string]object.Hash, len(a.Refs))
	for _, ref := range a.Refs {
		byName[ref.Name] = ref.Hash
	}

	if head, ok := byName["HEAD"]; ok {
		if a.HeadSymref != "" {
			return head, a.HeadSymref, nil
		}
		for _, ref := range a.Refs {
			if ref.Hash == head && strings.HasPrefix(ref.Name, "refs/heads/") {
				return head, ref.Name, nil
			}
		}
		// Detached remote HEAD with no matching branch.
		return head, "refs/heads/master", nil
	}

	for _, name := range []string{"refs/heads/master", "refs/heads/main"} {
		if h, ok := byName[name]; ok {
			return h, name, nil
		}
	}
	return "", "", fmt.Errorf("%w: remote advertised no HEAD or default branch", ErrRefNotFound)
}
