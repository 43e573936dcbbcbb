// Package repo provides repository plumbing over the object store:
// init/open, references, configuration, tree building and listing,
// checkout, and the clone pipeline.
package repo

import (
	"github.com/graybiralo/mingit/pkg/object"
)

// Repo represents an opened repository.
type Repo struct {
	RootDir string        // working directory root
	GitDir  string        // .git/ directory
	Store   *object.Store // content-addressed object store
}
