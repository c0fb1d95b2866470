package envelope

import "errors"

// ErrMalformedFrame is returned by Decode when a transport frame is not a
// JSON object. Callers drop the frame.
var ErrMalformedFrame = errors.New("malformed frame")
