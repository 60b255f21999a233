package selector

import "errors"

// ErrInvalidChoice marks input that does not name an entry of the list on
// screen. Selector reports it to the operator and prompts again.
var ErrInvalidChoice = errors.New("selector: invalid choice")
