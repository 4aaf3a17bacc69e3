package favorites

import (
	"sort"
	"sync"

	"crypto-tracker/src/interfaces"
	"crypto-tracker/src/logger"
	"crypto-tracker/src/models"
)

// -----------------------------------------------------------------------------

// FavoritesService keeps the user's favorite asset ids. Every effective
// mutation persists synchronously to the store before one change event is
// broadcast to all subscribers. Notification is event-driven: nothing ticks,
// a subscriber channel fires only because Add or Remove changed the set.
type FavoritesService struct {
	Store  interfaces.IDatabase
	Logger *logger.Logger

	mu      sync.RWMutex
	ids     map[string]struct{}
	subs    map[int]chan struct{}
	nextSub int
}

var _ interfaces.IFavoritesService = (*FavoritesService)(nil)

// -----------------------------------------------------------------------------

// NewFavoritesService loads the persisted favorite set. A load failure starts
// the service empty rather than failing the whole app.
func NewFavoritesService(cfg *models.MConfig, store interfaces.IDatabase) *FavoritesService {
	s := &FavoritesService{
		Store:  store,
		Logger: logger.NewLogger(cfg, "FavoritesService"),
		ids:    make(map[string]struct{}),
		subs:   make(map[int]chan struct{}),
	}

	loaded, err := store.LoadFavorites()
	if err != nil {
		s.Logger.Warning("Failed to load favorites, starting empty: %v", err)
		return s
	}
	for _, id := range loaded {
		s.ids[id] = struct{}{}
	}

	return s
}

// -----------------------------------------------------------------------------

// Add marks an id as favorite. Adding an existing member is a safe no-op.
func (s *FavoritesService) Add(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ids[id]; exists {
		return nil
	}

	s.ids[id] = struct{}{}
	if err := s.persistLocked(); err != nil {
		delete(s.ids, id)
		return err
	}

	s.notifyLocked()
	return nil
}

// -----------------------------------------------------------------------------

// Remove unmarks an id. Removing a non-member is a safe no-op.
func (s *FavoritesService) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ids[id]; !exists {
		return nil
	}

	delete(s.ids, id)
	if err := s.persistLocked(); err != nil {
		s.ids[id] = struct{}{}
		return err
	}

	s.notifyLocked()
	return nil
}

// -----------------------------------------------------------------------------

func (s *FavoritesService) IsFavorite(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.ids[id]
	return exists
}

// -----------------------------------------------------------------------------

// List returns a sorted copy of the favorite id set.
func (s *FavoritesService) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listLocked()
}

// -----------------------------------------------------------------------------

func (s *FavoritesService) listLocked() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// -----------------------------------------------------------------------------

// Subscribe registers an independent change listener. The returned cancel
// func releases the subscription and closes the channel.
func (s *FavoritesService) Subscribe() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++

	ch := make(chan struct{}, 1)
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}

	return ch, cancel
}

// -----------------------------------------------------------------------------

func (s *FavoritesService) persistLocked() error {
	return s.Store.SaveFavorites(s.listLocked())
}

// -----------------------------------------------------------------------------

// notifyLocked signals every subscriber. The channels are buffered with
// capacity 1, so a pending unconsumed event coalesces with the next one;
// subscribers re-read List() rather than counting events.
func (s *FavoritesService) notifyLocked() {
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
