package object

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// MarshalBlob serializes a Blob to raw bytes (identity).
func MarshalBlob(b *Blob) []byte {
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out
}

// UnmarshalBlob deserializes raw bytes into a Blob.
func UnmarshalBlob(data []byte) (*Blob, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return &Blob{Data: out}, nil
}

// treeSortKey implements Git's entry ordering: directory names compare as
// if a trailing slash were appended, so "lib.c" sorts before the directory
// "lib" even though "lib" < "lib.c" byte-wise.
func treeSortKey(e TreeEntry) string {
	if e.IsDir() {
		return e.Name + "/"
	}
	return e.Name
}

// SortTreeEntries sorts entries into canonical tree order in place.
func SortTreeEntries(entries []TreeEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return treeSortKey(entries[i]) < treeSortKey(entries[j])
	})
}

// MarshalTree serializes a TreeObj to the canonical binary layout: for each
// entry "<mode> <name>\0" followed by the 20 raw hash bytes. Entries are
// sorted before encoding so identical trees always hash identically.
func MarshalTree(tr *TreeObj) ([]byte, error) {
	sorted := make([]TreeEntry, len(tr.Entries))
	copy(sorted, tr.Entries)
	SortTreeEntries(sorted)

	var buf bytes.Buffer
	for _, e := range sorted {
		if e.Name == "" || strings.ContainsAny(e.Name, "/\x00") {
			return nil, fmt.Errorf("%w: invalid entry name %q", ErrMalformedTree, e.Name)
		}
		raw, err := e.Target.Raw()
		if err != nil {
			return nil, fmt.Errorf("%w: entry %q: %v", ErrMalformedTree, e.Name, err)
		}
		fmt.Fprintf(&buf, "%s %s\x00", e.Mode, e.Name)
		buf.Write(raw)
	}
	return buf.Bytes(), nil
}

// UnmarshalTree parses a TreeObj from its binary form. A truncated
// mode/name/hash triplet fails with ErrMalformedTree. Entry order is not
// validated on read; MarshalTree re-sorts.
func UnmarshalTree(data []byte) (*TreeObj, error) {
	tr := &TreeObj{}
	for len(data) > 0 {
		sp := bytes.IndexByte(data, ' ')
		if sp <= 0 {
			return nil, fmt.Errorf("%w: entry missing mode", ErrMalformedTree)
		}
		mode := string(data[:sp])
		rest := data[sp+1:]

		nul := bytes.IndexByte(rest, 0)
		if nul <= 0 {
			return nil, fmt.Errorf("%w: entry missing name terminator", ErrMalformedTree)
		}
		name := string(rest[:nul])
		rest = rest[nul+1:]

		if len(rest) < RawHashLen {
			return nil, fmt.Errorf("%w: entry %q: truncated hash", ErrMalformedTree, name)
		}
		target, err := HashFromRaw(rest[:RawHashLen])
		if err != nil {
			return nil, fmt.Errorf("%w: entry %q: %v", ErrMalformedTree, name, err)
		}

		tr.Entries = append(tr.Entries, TreeEntry{Mode: mode, Name: name, Target: target})
		data = rest[RawHashLen:]
	}
	return tr, nil
}

// String formats a signature as a Git ident line fragment:
// "Name <email> timestamp tz".
func (s Signature) String() string {
	return fmt.Sprintf("%s <%s> %d %s", s.Name, s.Email, s.When, s.TZ)
}

func parseSignature(val string) (Signature, error) {
	lt := strings.IndexByte(val, '<')
	gt := strings.IndexByte(val, '>')
	if lt < 0 || gt < lt {
		return Signature{}, fmt.Errorf("ident %q missing <email>", val)
	}
	rest := strings.TrimSpace(val[gt+1:])
	fields := strings.Fields(rest)
	if len(fields) != 2 {
		return Signature{}, fmt.Errorf("ident %q missing timestamp/timezone", val)
	}
	when, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Signature{}, fmt.Errorf("ident %q: bad timestamp: %v", val, err)
	}
	return Signature{
		Name:  strings.TrimSpace(val[:lt]),
		Email: val[lt+1 : gt],
		When:  when,
		TZ:    fields[1],
	}, nil
}

// MarshalCommit serializes a CommitObj to the canonical text layout:
//
//	tree H
//	parent H     (zero or more)
//	author Name <email> timestamp tz
//	committer Name <email> timestamp tz
//
//	message
func MarshalCommit(c *CommitObj) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", string(c.TreeHash))
	for _, p := range c.Parents {
		fmt.Fprintf(&buf, "parent %s\n", string(p))
	}
	fmt.Fprintf(&buf, "author %s\n", c.Author)
	fmt.Fprintf(&buf, "committer %s\n", c.Committer)
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}

// UnmarshalCommit parses a CommitObj from its serialized form. A missing
// tree header or a header line that does not match the expected shape
// fails with ErrMalformedCommit.
func UnmarshalCommit(data []byte) (*CommitObj, error) {
	idx := bytes.Index(data, []byte("\n\n"))
	if idx < 0 {
		return nil, fmt.Errorf("%w: missing header/message separator", ErrMalformedCommit)
	}
	header := string(data[:idx])
	message := string(data[idx+2:])

	c := &CommitObj{Message: message}
	for _, line := range strings.Split(header, "\n") {
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("%w: malformed header line %q", ErrMalformedCommit, line)
		}
		switch key {
		case "tree":
			if !Hash(val).Valid() {
				return nil, fmt.Errorf("%w: bad tree hash %q", ErrMalformedCommit, val)
			}
			c.TreeHash = Hash(val)
		case "parent":
			if !Hash(val).Valid() {
				return nil, fmt.Errorf("%w: bad parent hash %q", ErrMalformedCommit, val)
			}
			c.Parents = append(c.Parents, Hash(val))
		case "author":
			sig, err := parseSignature(val)
			if err != nil {
				return nil, fmt.Errorf("%w: author: %v", ErrMalformedCommit, err)
			}
			c.Author = sig
		case "committer":
			sig, err := parseSignature(val)
			if err != nil {
				return nil, fmt.Errorf("%w: committer: %v", ErrMalformedCommit, err)
			}
			c.Committer = sig
		default:
			return nil, fmt.Errorf("%w: unknown header key %q", ErrMalformedCommit, key)
		}
	}
	if c.TreeHash == "" {
		return nil, fmt.Errorf("%w: missing tree header", ErrMalformedCommit)
	}
	return c, nil
}
