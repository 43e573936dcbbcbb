package object

import "errors"

// Error kinds surfaced by the object store and pack parser. Callers match
// with errors.Is; every failure is wrapped with context via fmt.Errorf.
var (
	ErrMalformedObject       = errors.New("malformed object")
	ErrCorruptObject         = errors.New("corrupt object")
	ErrObjectNotFound        = errors.New("object not found")
	ErrMalformedTree         = errors.New("malformed tree")
	ErrMalformedCommit       = errors.New("malformed commit")
	ErrUnsupportedPackFormat = errors.New("unsupported pack format")
	ErrUnresolvedDelta       = errors.New("unresolved delta")
	ErrPackChecksumMismatch  = errors.New("pack checksum mismatch")
)
