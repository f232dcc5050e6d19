package bundler

import "errors"

// ErrFinalized is returned by Add/AddBundler when called on a bundler that
// has already been flattened and sent.
var ErrFinalized = errors.New("bundler: bundler is finalized")
