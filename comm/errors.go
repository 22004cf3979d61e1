package comm

import "errors"

// ErrPortUnavailable indicates the serial port could not be opened, either
// right away or within the ready timeout.
var ErrPortUnavailable = errors.New("port unavailable")
