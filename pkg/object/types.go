package object

// Hash is a 40-character hex-encoded SHA-1 digest.
type Hash string

// RawHashLen is the length of a raw (binary) hash.
const RawHashLen = 20

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
	TypeTag    ObjectType = "tag"
)

const (
	// Tree mode constants matching Git's canonical mode strings.
	TreeModeDir        = "40000"
	TreeModeFile       = "100644"
	TreeModeExecutable = "100755"
	TreeModeSymlink    = "120000"
)

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

// TreeEntry is one entry in a tree object: a mode string, a path segment,
// and the hash of the entry's blob or subtree.
type TreeEntry struct {
	Mode   string
	Name   string
	Target Hash
}

// IsDir reports whether the entry points at a subtree.
func (e TreeEntry) IsDir() bool {
	return e.Mode == TreeModeDir
}

// TreeObj holds the entries of one directory level. MarshalTree sorts
// entries into canonical order, so callers may append freely.
type TreeObj struct {
	Entries []TreeEntry
}

// Signature is a commit author/committer identity with timestamp.
type Signature struct {
	Name  string
	Email string
	When  int64  // seconds since epoch
	TZ    string // e.g. "+0000"
}

// CommitObj represents a commit pointing to a tree with metadata.
type CommitObj struct {
	TreeHash  Hash
	Parents   []Hash
	Author    Signature
	Committer Signature
	Message   string
}
