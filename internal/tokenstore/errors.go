package tokenstore

import "errors"

// ErrBackend wraps every failure reported by the storage backend.
var ErrBackend = errors.New("token store backend failure")
