// Package friendship holds the relationship event log, the resolver that
// derives current statuses from it, and the request/accept/deny/block
// workflow on top of both.
package friendship

import (
	"context"

	"github.com/sociable/messenger-backend/db/model"
)

// Store persists relationships and their append-only status history.
//
// A pair of users has at most one relationship, stored under the
// (requester, addressee) orientation fixed at creation. The canonical
// orientation is opaque to callers: FindRelationship matches both orderings.
type Store interface {
	// CreateRelationship creates the relationship and its initial REQUESTED
	// event in a single transaction. Returns a Conflict fault if either
	// ordering of the pair already has a relationship; concurrent calls for
	// the same unordered pair are serialized so exactly one wins.
	CreateRelationship(ctx context.Context, requesterID, addresseeID uint) (*model.Relationship, error)

	// AppendStatusEvent appends an event to an existing relationship's
	// history. Prior events are never mutated or deleted.
	AppendStatusEvent(ctx context.Context, rel *model.Relationship, code model.Status, specifierID uint) (*model.StatusEvent, error)

	// FindRelationship returns the relationship between a and b in either
	// orientation, or a NotFound fault.
	FindRelationship(ctx context.Context, a, b uint) (*model.Relationship, error)

	// LatestStatus returns the event with the greatest (created_at, id) for
	// the relationship. A relationship with zero events is an invariant
	// violation and yields an Internal fault.
	LatestStatus(ctx context.Context, rel *model.Relationship) (*model.StatusEvent, error)

	// RelationshipsFor returns every relationship the user is party to, in
	// no particular order.
	RelationshipsFor(ctx context.Context, userID uint) ([]model.Relationship, error)

	// DeleteAll wipes events and relationships transactionally. Test/dev
	// reset only, never reachable from a production surface.
	DeleteAll(ctx context.Context) error
}
