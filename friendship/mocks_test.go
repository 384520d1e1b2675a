package friendship

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sociable/messenger-backend/db/model"
	"github.com/sociable/messenger-backend/faults"
)

// memStore is an in-memory Store with the same transactional semantics as
// the Postgres one: pair creation is serialized under one lock and a
// relationship is never visible without its initial event.
type memStore struct {
	mu     sync.Mutex
	rels   map[[2]uint]*model.Relationship
	events []model.StatusEvent
	lastID uint
}

func newMemStore() *memStore {
	return &memStore{rels: make(map[[2]uint]*model.Relationship)}
}

func memUser(id uint) *model.User {
	return &model.User{
		Base:     model.Base{ID: id},
		Email:    fmt.Sprintf("user%d@example.com", id),
		Username: fmt.Sprintf("user%d", id),
	}
}

func (s *memStore) CreateRelationship(ctx context.Context, requesterID, addresseeID uint) (*model.Relationship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.find(requesterID, addresseeID) != nil {
		return nil, faults.New(faults.Conflict, "relationship already exists")
	}
	rel := &model.Relationship{
		RequesterID: requesterID,
		AddresseeID: addresseeID,
		Requester:   memUser(requesterID),
		Addressee:   memUser(addresseeID),
		CreatedAt:   time.Now(),
	}
	s.rels[[2]uint{requesterID, addresseeID}] = rel
	s.append(rel, model.StatusRequested, requesterID)
	return rel, nil
}

func (s *memStore) AppendStatusEvent(ctx context.Context, rel *model.Relationship, code model.Status, specifierID uint) (*model.StatusEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.find(rel.RequesterID, rel.AddresseeID) == nil {
		return nil, faults.New(faults.NotFound, "relationship not found")
	}
	return s.append(rel, code, specifierID), nil
}

// append assumes s.mu is held.
func (s *memStore) append(rel *model.Relationship, code model.Status, specifierID uint) *model.StatusEvent {
	s.lastID++
	ev := model.StatusEvent{
		ID:          s.lastID,
		RequesterID: rel.RequesterID,
		AddresseeID: rel.AddresseeID,
		Code:        code,
		SpecifierID: specifierID,
		Specifier:   memUser(specifierID),
		CreatedAt:   time.Now(),
	}
	s.events = append(s.events, ev)
	return &ev
}

func (s *memStore) FindRelationship(ctx context.Context, a, b uint) (*model.Relationship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rel := s.find(a, b); rel != nil {
		return rel, nil
	}
	return nil, faults.New(faults.NotFound, "relationship not found")
}

// find assumes s.mu is held; checks both orderings.
func (s *memStore) find(a, b uint) *model.Relationship {
	if rel, ok := s.rels[[2]uint{a, b}]; ok {
		return rel
	}
	if rel, ok := s.rels[[2]uint{b, a}]; ok {
		return rel
	}
	return nil
}

func (s *memStore) LatestStatus(ctx context.Context, rel *model.Relationship) (*model.StatusEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *model.StatusEvent
	for i := range s.events {
		ev := &s.events[i]
		if ev.RequesterID != rel.RequesterID || ev.AddresseeID != rel.AddresseeID {
			continue
		}
		if latest == nil || ev.CreatedAt.After(latest.CreatedAt) ||
			(ev.CreatedAt.Equal(latest.CreatedAt) && ev.ID > latest.ID) {
			latest = ev
		}
	}
	if latest == nil {
		return nil, faults.New(faults.Internal, "relationship has no status events")
	}
	out := *latest
	return &out, nil
}

func (s *memStore) RelationshipsFor(ctx context.Context, userID uint) ([]model.Relationship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rels []model.Relationship
	for _, rel := range s.rels {
		if rel.RequesterID == userID || rel.AddresseeID == userID {
			rels = append(rels, *rel)
		}
	}
	return rels, nil
}

func (s *memStore) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rels = make(map[[2]uint]*model.Relationship)
	s.events = nil
	return nil
}

// history returns the pair's events in append order.
func (s *memStore) history(a, b uint) []model.StatusEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	rel := s.find(a, b)
	if rel == nil {
		return nil
	}
	var evs []model.StatusEvent
	for _, ev := range s.events {
		if ev.RequesterID == rel.RequesterID && ev.AddresseeID == rel.AddresseeID {
			evs = append(evs, ev)
		}
	}
	return evs
}
