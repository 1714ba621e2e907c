package planner

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// Manager keeps the live sessions and restores persisted ones on demand
type Manager struct {
	service RequirementsService
	store   Store
	options Options

	mutex    sync.Mutex
	sessions map[string]*Session
}

// NewManager builds a manager; store may be nil, in which case sessions live in memory only
func NewManager(service RequirementsService, store Store, options Options) *Manager {
	return &Manager{
		service:  service,
		store:    store,
		options:  options.withDefaults(),
		sessions: make(map[string]*Session),
	}
}

// Create starts a session for selection. The session is kept only when its first
// refresh succeeds.
func (manager *Manager) Create(ctx context.Context, selection Selection) (*Session, View, error) {
	session := NewSession(manager.service, manager.store, selection, manager.options)

	view, err := session.Refresh(ctx)
	if err != nil {
		return nil, View{}, err
	}

	manager.mutex.Lock()
	manager.sessions[session.ID()] = session
	manager.mutex.Unlock()

	log.Info().Str("session", session.ID()).Strs("programs", selection.Programs).Msg("session created")
	return session, view, nil
}

func (manager *Manager) Get(ctx context.Context, id string) (*Session, error) {
	manager.mutex.Lock()
	defer manager.mutex.Unlock()

	if session, ok := manager.sessions[id]; ok {
		return session, nil
	}
	if manager.store == nil {
		return nil, ErrSessionNotFound
	}

	state, err := manager.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	session := RestoreSession(manager.service, manager.store, state, manager.options)
	manager.sessions[id] = session

	log.Debug().Str("session", id).Msg("session restored")
	return session, nil
}

func (manager *Manager) Delete(ctx context.Context, id string) error {
	manager.mutex.Lock()
	_, live := manager.sessions[id]
	delete(manager.sessions, id)
	manager.mutex.Unlock()

	if manager.store == nil {
		if !live {
			return ErrSessionNotFound
		}
		return nil
	}

	err := manager.store.Delete(ctx, id)
	if errors.Is(err, ErrSessionNotFound) && live {
		return nil
	}
	return err
}

// List returns the ids of live and persisted sessions
func (manager *Manager) List(ctx context.Context) ([]string, error) {
	manager.mutex.Lock()
	ids := lo.Keys(manager.sessions)
	manager.mutex.Unlock()

	if manager.store != nil {
		stored, err := manager.store.List(ctx)
		if err != nil {
			return nil, err
		}
		ids = append(ids, stored...)
	}

	ids = lo.Uniq(ids)
	slices.Sort(ids)
	return ids, nil
}
