package service

import "errors"

var (
	ErrValidation        = errors.New("validation")         // 400
	ErrUnauthorized      = errors.New("unauthorized")       // 401
	ErrForbidden         = errors.New("forbidden")          // 403
	ErrNotFound          = errors.New("not found")          // 404
	ErrConflict          = errors.New("conflict")           // 409
	ErrEmptyCart         = errors.New("cart is empty")      // 400
	ErrSizeUnavailable   = errors.New("size unavailable")   // 400
	ErrInsufficientStock = errors.New("insufficient stock") // 400
	ErrGateway           = errors.New("payment gateway")    // 500
)
