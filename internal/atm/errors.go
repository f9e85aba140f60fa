package atm

import "errors"

// ErrAccessDenied is returned by Balance when no transaction session is
// active. Unlike the boolean rejections, it marks a caller-side logic
// fault rather than an expected user-input failure.
var ErrAccessDenied = errors.New("access denied")
