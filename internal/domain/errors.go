package domain

import "errors"

// Registration outcomes. Returned by the store from the atomic register path
// so both backends report capacity and duplicate checks the same way.
var (
	ErrWorkshopNotFound  = errors.New("workshop not found")
	ErrAlreadyRegistered = errors.New("already registered for this workshop")
	ErrWorkshopFull      = errors.New("workshop is already full")
	ErrOwnWorkshop       = errors.New("cannot register for your own workshop")
	ErrWorkshopClosed    = errors.New("workshop is not open for registration")
	ErrEmailTaken        = errors.New("email already taken")
)
