package relay

import "errors"

var errBroadcastFull = errors.New("relay: broadcast queue full")
