package strhash

import "errors"

// ErrUnknownAlgorithm is returned by [ByName] for unsupported algorithm names.
var ErrUnknownAlgorithm = errors.New("unknown hash algorithm")
