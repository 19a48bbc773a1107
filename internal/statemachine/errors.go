package statemachine

import "errors"

// ErrTransitionNotAllowed is wrapped by every rejected transition
var ErrTransitionNotAllowed = errors.New("transition not allowed")
