package types

import "errors"

// ErrDegenerateElement reports an element with zero or negative measure.
var ErrDegenerateElement = errors.New("degenerate element")
