package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/graybiralo/mingit/pkg/object"
	"github.com/graybiralo/mingit/pkg/remote"
)

// Clone fetches remoteURL into dest over Smart HTTP and materializes the
// default branch: init, ref discovery, pack negotiation, unpack into the
// object store, ref + HEAD update, checkout. It returns the set of refs
// written. No phase is retried; the first error aborts the clone.
func Clone(ctx context.Context, remoteURL, dest string) (map[string]object.Hash, error) {
	r, err := Init(dest)
	if err != nil {
		return nil, err
	}
	if err := r.SetRemote("origin", remoteURL); err != nil {
		return nil, err
	}

	client, err := remote.NewClient(remoteURL, remote.Options{})
	if err != nil {
		return nil, err
	}

	adv, err := client.DiscoverRefs(ctx)
	if err != nil {
		return nil, err
	}
	want, branchRef, err := adv.CloneTarget()
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"want":   want,
		"branch": branchRef,
	}).Debug("selected clone target")

	pack, err := client.FetchPack(ctx, want)
	if err != nil {
		return nil, err
	}

	count, err := object.Unpack(pack, r.Store)
	if err != nil {
		return nil, err
	}
	logrus.WithField("objects", count).Debug("pack unpacked")

	if err := r.UpdateRef(branchRef, want); err != nil {
		return nil, err
	}
	if err := r.WriteSymbolicHead(branchRef); err != nil {
		return nil, err
	}

	if err := r.Checkout(want); err != nil {
		return nil, err
	}

	return map[string]object.Hash{branchRef: want}, nil
}

// BranchFromRef strips the refs/heads/ prefix from a branch ref path.
func BranchFromRef(refName string) string {
	return strings.TrimPrefix(refName, "refs/heads/")
}

// CloneSummary formats the refs written by Clone for display.
func CloneSummary(refs map[string]object.Hash) string {
	parts := make([]string, 0, len(refs))
	for name, h := range refs {
		parts = append(parts, fmt.Sprintf("%s -> %s", name, h))
	}
	return strings.Join(parts, ", ")
}
