package valuation

import (
	"errors"
	"fmt"
)

// ErrUnknownStrategy is returned for a strategy the calculator does not implement.
var ErrUnknownStrategy = errors.New("unknown valuation strategy")

// MissingDataError reports a required statement, period or quote that was absent.
// A calculation that fails with it produces no metrics at all.
type MissingDataError struct {
	Statement string
	Field     string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("missing data: %s.%s", e.Statement, e.Field)
}

// IsMissingData reports whether err carries a *MissingDataError.
func IsMissingData(err error) bool {
	var missing *MissingDataError
	return errors.As(err, &missing)
}
