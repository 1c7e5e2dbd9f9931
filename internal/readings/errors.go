package readings

import "errors"

// ErrNoData means a provider reached its upstream but the response carried
// nothing usable for the site (empty series, all values missing, no coverage).
// Callers treat it like a failed fetch minus the alarm: expected, not logged
// as an error.
var ErrNoData = errors.New("no usable data for site")
