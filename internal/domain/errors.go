package domain

import "errors"

// ErrInvalidRequest marks malformed or out-of-range request parameters.
// Services wrap it with a descriptive reason; the HTTP layer maps anything
// matching errors.Is(err, ErrInvalidRequest) to a 400 response.
//
// "No data" outcomes are deliberately not errors: they are explicit absent
// results so callers can distinguish a bad request from thin history.
var ErrInvalidRequest = errors.New("invalid request")
