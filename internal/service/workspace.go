package service

import (
	"context"
	"sync"
)

// Workspace is one operator's till context: their cart, guarded so that
// each transition runs to completion before the next starts.
type Workspace struct {
	mu   sync.Mutex
	cart *Cart
}

// With runs fn with exclusive access to the cart.
func (w *Workspace) With(fn func(cart *Cart) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return fn(w.cart)
}

// Workspaces hands out one Workspace per operator, hydrating any suspended
// cart from the store on first use.
type Workspaces struct {
	mu   sync.Mutex
	byID map[string]*Workspace
	deps CartDeps
}

func NewWorkspaces(deps CartDeps) *Workspaces {
	return &Workspaces{
		byID: make(map[string]*Workspace),
		deps: deps,
	}
}

func (w *Workspaces) For(ctx context.Context, op Operator) *Workspace {
	w.mu.Lock()
	defer w.mu.Unlock()

	if ws, ok := w.byID[op.ID]; ok {
		return ws
	}
	cart := NewCart(op, w.deps)
	cart.Hydrate(ctx)
	ws := &Workspace{cart: cart}
	w.byID[op.ID] = ws
	return ws
}
