package models

import "errors"

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrDuplicateOrder    = errors.New("duplicate order id")
	ErrMenuItemNotFound  = errors.New("menu item not found")
	ErrAdminExists       = errors.New("admin already exists")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrStatusConflict    = errors.New("order status changed concurrently")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidOrder      = errors.New("invalid order")
	ErrInvalidMenuItem   = errors.New("invalid menu item")
	ErrItemUnavailable   = errors.New("menu item unavailable")
	ErrInvalidCredential = errors.New("invalid credentials")
	ErrInvalidAdmin      = errors.New("invalid admin account")
)
