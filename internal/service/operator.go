package service

import (
	"strings"
	"sync"

	"pos-till/internal/apperror"
	"pos-till/internal/domain"
)

// Operator is the authenticated staff member acting on the till.
type Operator struct {
	ID   string
	Name string
	Role domain.Role
}

func (o Operator) validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return apperror.NewFieldValidation("user", "an operator is required")
	}
	return nil
}

// operatorLocks hands out one mutex per operator id.
type operatorLocks struct {
	mu   sync.Mutex
	byID map[string]*sync.Mutex
}

func (l *operatorLocks) lock(id string) (unlock func()) {
	l.mu.Lock()
	if l.byID == nil {
		l.byID = make(map[string]*sync.Mutex)
	}
	m, ok := l.byID[id]
	if !ok {
		m = &sync.Mutex{}
		l.byID[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
