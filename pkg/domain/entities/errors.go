package entities

import "errors"

var (
	// ErrNotFound is returned when a referenced demand, stock, match or company does not exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyMatched is returned when a demand or stock has left the pairing pool
	ErrAlreadyMatched = errors.New("already matched")
	// ErrInvalidTransition is returned for a status change the lifecycle does not allow
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrInvalidInput wraps field validation failures on intake
	ErrInvalidInput = errors.New("invalid input")
	// ErrNothingToMatch is returned when there is no open demand or no available stock
	ErrNothingToMatch = errors.New("nothing to match")
	// ErrInsufficientData is returned when fewer than two matches are available for a loading plan
	ErrInsufficientData = errors.New("insufficient data for a loading plan")
)
