package service

import "fmt"

// ValidationError reports missing or malformed input. Maps to 400.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

// NotFoundError reports an absent entity, or a conditional update that lost
// its race; the two are deliberately indistinguishable. Maps to 404.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ForbiddenError reports a failed role or ownership check. Maps to 403.
type ForbiddenError struct {
	Message string
}

func (e ForbiddenError) Error() string {
	return e.Message
}

// InsufficientStockError carries the quantity still available so the client
// can adjust the cart. Maps to 400.
type InsufficientStockError struct {
	ProductID string
	Name      string
	Available int
	Requested int
}

func (e InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for %s, available: %d", e.Name, e.Available)
}

// StoreError wraps an underlying store failure. Maps to 500; the core never
// retries, the caller may retry the whole request.
type StoreError struct {
	Op  string
	Err error
}

func (e StoreError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e StoreError) Unwrap() error {
	return e.Err
}
