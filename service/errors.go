package service

import "errors"

var (
	ErrValidation             = errors.New("invalid registration")
	ErrGateway                = errors.New("payment gateway error")
	ErrPersistence            = errors.New("could not persist registration")
	ErrMalformedEvent         = errors.New("malformed webhook event")
	ErrUnresolvableIdentifier = errors.New("webhook event has no payment id")
	ErrQuery                  = errors.New("could not query registrations")
	ErrRegistrationNotFound   = errors.New("registration not found")
)
