package verify

import "errors"

// ErrNoClient is returned when online checks are requested without a
// probe client.
var ErrNoClient = errors.New("online verification requires a probe client")
