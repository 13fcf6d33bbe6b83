// Package ops is the single writer of sparkos state. Every mutation goes
// through an Engine method: load the collection, apply the change, persist
// the whole collection back. Reads are delegated straight to the store.
package ops

import (
	"errors"

	"sparkos/internal/store"
)

// Sentinel errors surfaced by mutation methods.
var (
	// ErrNotFound signals a soft foreign key that resolved to nothing.
	ErrNotFound = errors.New("entity not found")

	// ErrInsufficientStock signals an OUT movement that would drive stock
	// negative. The item and the transaction log are left untouched.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidAmount signals a non-positive transaction amount.
	ErrInvalidAmount = errors.New("amount must be positive")
)

// Engine applies typed mutations against the store.
type Engine struct {
	store *store.Store
}

// NewEngine wraps a store.
func NewEngine(s *store.Store) *Engine {
	return &Engine{store: s}
}

// Store exposes the underlying store for read paths.
func (e *Engine) Store() *store.Store {
	return e.store
}
