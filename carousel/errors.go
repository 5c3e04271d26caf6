package carousel

import "errors"

// ErrNoItems is returned by New when the root has no item elements. The
// registry leaves such elements un-enhanced.
var ErrNoItems = errors.New("carousel: no items found")
