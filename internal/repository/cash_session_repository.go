package repository

import (
	"context"

	"pos-till/internal/domain"
	"pos-till/internal/kvstore"
)

// CashSessionRepository persists the current session per user, the archive
// of closed sessions and the movement list.
type CashSessionRepository interface {
	Current(ctx context.Context, userID string) *domain.CashSession
	SaveCurrent(ctx context.Context, session *domain.CashSession)
	ClearCurrent(ctx context.Context, userID string)
	Archive(ctx context.Context, session *domain.CashSession)
	History(ctx context.Context) []domain.CashSession
	AppendMovement(ctx context.Context, movement *domain.CashMovement)
	Movements(ctx context.Context, sessionID string) []domain.CashMovement
	AllMovements(ctx context.Context) []domain.CashMovement
}

type cashSessionRepository struct {
	store *kvstore.Store
}

func NewCashSessionRepository(store *kvstore.Store) CashSessionRepository {
	return &cashSessionRepository{store: store}
}

// Current returns the open session for userID, or nil.
func (r *cashSessionRepository) Current(ctx context.Context, userID string) *domain.CashSession {
	session := kvstore.Load(ctx, r.store, keyCashSessionPrefix+userID, domain.CashSession{})
	if session.ID == "" || session.Status != domain.SessionOpen || session.UserID != userID {
		return nil
	}
	return &session
}

func (r *cashSessionRepository) SaveCurrent(ctx context.Context, session *domain.CashSession) {
	r.store.Set(ctx, keyCashSessionPrefix+session.UserID, session)
}

func (r *cashSessionRepository) ClearCurrent(ctx context.Context, userID string) {
	r.store.Remove(ctx, keyCashSessionPrefix+userID)
}

func (r *cashSessionRepository) Archive(ctx context.Context, session *domain.CashSession) {
	kvstore.Append(ctx, r.store, keyCashHistory, *session)
}

func (r *cashSessionRepository) History(ctx context.Context) []domain.CashSession {
	return kvstore.LoadList[domain.CashSession](ctx, r.store, keyCashHistory)
}

func (r *cashSessionRepository) AppendMovement(ctx context.Context, movement *domain.CashMovement) {
	kvstore.Append(ctx, r.store, keyCashMovements, *movement)
}

func (r *cashSessionRepository) Movements(ctx context.Context, sessionID string) []domain.CashMovement {
	var out []domain.CashMovement
	for _, m := range r.AllMovements(ctx) {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out
}

func (r *cashSessionRepository) AllMovements(ctx context.Context) []domain.CashMovement {
	return kvstore.LoadList[domain.CashMovement](ctx, r.store, keyCashMovements)
}
