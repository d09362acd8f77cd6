package model

import (
	"fmt"
	"net/http"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeEmptyCart          = "EMPTY_CART"
	ErrCodeMissingBillingInfo = "MISSING_BILLING_INFO"
	ErrCodeInvalidQuantity    = "INVALID_QUANTITY"
	ErrCodeProductNotFound    = "PRODUCT_NOT_FOUND"
	ErrCodeVariantUnavailable = "VARIANT_UNAVAILABLE"
	ErrCodeInsufficientStock  = "INSUFFICIENT_STOCK"
	ErrCodeOrderNotFound      = "ORDER_NOT_FOUND"
	ErrCodeCartItemNotFound   = "CART_ITEM_NOT_FOUND"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeInvalidStatus      = "INVALID_STATUS"
	ErrCodeInvalidPayment     = "INVALID_PAYMENT"
	ErrCodeNegativeStock      = "NEGATIVE_STOCK"
	ErrCodeEmailTaken         = "EMAIL_TAKEN"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// DomainError carries a stable error code, a customer-facing message and
// the HTTP status the request boundary should answer with.
type DomainError struct {
	Code    string
	Message string
	Status  int
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewValidationError creates a 400 domain error.
func NewValidationError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, Status: http.StatusBadRequest}
}

// NewNotFoundError creates a 404 domain error.
func NewNotFoundError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, Status: http.StatusNotFound}
}

// NewConflictError creates a 409 domain error.
func NewConflictError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, Status: http.StatusConflict}
}

// NewAuthorizationError creates a 403 domain error.
func NewAuthorizationError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, Status: http.StatusForbidden}
}

// Common domain errors
var (
	ErrEmptyCart            = NewValidationError(ErrCodeEmptyCart, "Cart is empty")
	ErrMissingBillingInfo   = NewValidationError(ErrCodeMissingBillingInfo, "Billing email is required")
	ErrInvalidQuantity      = NewValidationError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrInvalidStatus        = NewValidationError(ErrCodeInvalidStatus, "Invalid status")
	ErrInvalidPaymentMethod = NewValidationError(ErrCodeInvalidPayment, "Invalid payment method")
	ErrInvalidPaymentStatus = NewValidationError(ErrCodeInvalidPayment, "Invalid payment status")
	ErrNegativeStock        = NewValidationError(ErrCodeNegativeStock, "Stock cannot be negative")
	ErrOrderNotFound        = NewNotFoundError(ErrCodeOrderNotFound, "Order not found")
	ErrCartItemNotFound     = NewNotFoundError(ErrCodeCartItemNotFound, "Cart item not found")
	ErrUserNotFound         = NewNotFoundError(ErrCodeUserNotFound, "User not found")
	ErrEmailTaken           = NewConflictError(ErrCodeEmailTaken, "An account with this email already exists")
	ErrInvalidCredentials   = &DomainError{Code: ErrCodeInvalidCredentials, Message: "Invalid email or password", Status: http.StatusUnauthorized}
	ErrForbidden            = NewAuthorizationError(ErrCodeForbidden, "Not allowed")
)

// NewProductNotFound names the offending cart line.
func NewProductNotFound(itemName string) *DomainError {
	return NewNotFoundError(ErrCodeProductNotFound, fmt.Sprintf("Product %q is no longer available", itemName))
}

// NewVariantUnavailable names the (item, size, colour) combination that
// could not be matched against the catalogue.
func NewVariantUnavailable(itemName, size, color string) *DomainError {
	return NewValidationError(ErrCodeVariantUnavailable,
		fmt.Sprintf("%s is not available in size %s / %s", itemName, size, color))
}

// NewInsufficientStock reports how many units remain for the requested line.
func NewInsufficientStock(itemName string, available, requested int) *DomainError {
	return NewConflictError(ErrCodeInsufficientStock,
		fmt.Sprintf("Only %d of %s left in stock (requested %d)", available, itemName, requested))
}
