package friendship

import (
	"context"

	"github.com/sociable/messenger-backend/db/model"
	"github.com/sociable/messenger-backend/faults"
)

// Resolver derives current relationship facts from the raw status history.
// Resolution is a pure function of the event log; nothing is cached.
type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// StatusOf returns the current status between a and b, StatusNone if no
// relationship exists.
func (r *Resolver) StatusOf(ctx context.Context, a, b uint) (model.Status, error) {
	rel, err := r.store.FindRelationship(ctx, a, b)
	if err != nil {
		if faults.IsKind(err, faults.NotFound) {
			return model.StatusNone, nil
		}
		return model.StatusNone, err
	}
	ev, err := r.store.LatestStatus(ctx, rel)
	if err != nil {
		return model.StatusNone, err
	}
	return ev.Code, nil
}

// FriendsOf returns the other party of every relationship whose latest
// status is ACCEPTED or BLOCKED. Counting a blocked party as a "friend" is
// deliberate legacy behavior kept for compatibility; the message path does
// not rely on it and gates on ACCEPTED alone.
func (r *Resolver) FriendsOf(ctx context.Context, userID uint) ([]model.User, error) {
	rels, err := r.store.RelationshipsFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	var friends []model.User
	for i := range rels {
		ev, err := r.store.LatestStatus(ctx, &rels[i])
		if err != nil {
			return nil, err
		}
		if ev.Code != model.StatusAccepted && ev.Code != model.StatusBlocked {
			continue
		}
		if other := OtherParty(&rels[i], userID); other != nil {
			friends = append(friends, *other)
		}
	}
	return friends, nil
}

// PendingRequestsTo returns the latest status event of every relationship
// where userID is the addressee and the request is still outstanding.
func (r *Resolver) PendingRequestsTo(ctx context.Context, userID uint) ([]model.StatusEvent, error) {
	rels, err := r.store.RelationshipsFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	var pending []model.StatusEvent
	for i := range rels {
		if rels[i].AddresseeID != userID {
			continue
		}
		ev, err := r.store.LatestStatus(ctx, &rels[i])
		if err != nil {
			return nil, err
		}
		if ev.Code == model.StatusRequested {
			pending = append(pending, *ev)
		}
	}
	return pending, nil
}

// OtherParty returns the party of rel that is not self, by comparing self
// against the stored requester/addressee ids. Returns nil if self is not a
// party to rel.
func OtherParty(rel *model.Relationship, selfID uint) *model.User {
	switch selfID {
	case rel.RequesterID:
		return rel.Addressee
	case rel.AddresseeID:
		return rel.Requester
	}
	return nil
}
