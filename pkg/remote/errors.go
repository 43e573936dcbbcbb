package remote

import (
	"errors"

	"github.com/graybiralo/mingit/pkg/pktline"
)

var (
	// ErrProtocol reports an unexpected response shape, status, or content
	// type from the remote. It is the same sentinel the pkt-line layer
	// uses, so one errors.Is check covers both layers.
	ErrProtocol = pktline.ErrProtocol

	// ErrRefNotFound reports that the remote advertised no usable clone
	// target.
	ErrRefNotFound = errors.New("ref not found")

	// ErrRemote carries an error message sent by the remote on the
	// sideband error channel.
	ErrRemote = errors.New("remote error")
)
