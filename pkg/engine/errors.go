package engine

import "errors"

// ErrBusy is returned by Submit while another allocation is in flight.
var ErrBusy = errors.New("an allocation is already in progress")
