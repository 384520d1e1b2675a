package friendship

import (
	"context"
	"fmt"

	"github.com/sociable/messenger-backend/db/model"
	"github.com/sociable/messenger-backend/faults"
)

// Workflow validates and applies the request/accept/deny/block transitions.
//
//	NONE -> REQUESTED -> {ACCEPTED, DENIED}
//	BLOCKED reachable from any state by either party
//
// There is no unblock and no re-request after a denial; those histories stay
// terminal until the model grows explicit transitions for them.
type Workflow struct {
	store Store
}

func NewWorkflow(store Store) *Workflow {
	return &Workflow{store: store}
}

// SendRequest starts a relationship between requester and addressee. If the
// pair already has one, the latest status decides the exact denial so the
// caller can present it: already sent, already accepted, denied, or blocked.
// The status table is closed-world; an unrecognized code fails loudly rather
// than default-allowing a new request.
func (w *Workflow) SendRequest(ctx context.Context, requesterID, addresseeID uint) (*model.Relationship, error) {
	if requesterID == addresseeID {
		return nil, faults.New(faults.InvalidArgument, "cannot send a friend request to yourself")
	}
	rel, err := w.store.FindRelationship(ctx, requesterID, addresseeID)
	if err != nil && !faults.IsKind(err, faults.NotFound) {
		return nil, err
	}
	if rel != nil {
		ev, err := w.store.LatestStatus(ctx, rel)
		if err != nil {
			return nil, err
		}
		switch ev.Code {
		case model.StatusRequested:
			return nil, faults.New(faults.Conflict, "friend request already sent")
		case model.StatusAccepted:
			return nil, faults.New(faults.Conflict, "friend request already accepted")
		case model.StatusDenied:
			return nil, faults.New(faults.Forbidden, "friend request denied")
		case model.StatusBlocked:
			return nil, faults.New(faults.Forbidden, "blocked")
		default:
			return nil, faults.New(faults.Internal, fmt.Sprintf("unhandled relationship status %q", ev.Code))
		}
	}
	return w.store.CreateRelationship(ctx, requesterID, addresseeID)
}

// Accept records userID accepting the pending request from requesterID.
func (w *Workflow) Accept(ctx context.Context, userID, requesterID uint) (*model.StatusEvent, error) {
	return w.respond(ctx, userID, requesterID, model.StatusAccepted)
}

// Deny records userID denying the pending request from requesterID.
func (w *Workflow) Deny(ctx context.Context, userID, requesterID uint) (*model.StatusEvent, error) {
	return w.respond(ctx, userID, requesterID, model.StatusDenied)
}

func (w *Workflow) respond(ctx context.Context, userID, requesterID uint, code model.Status) (*model.StatusEvent, error) {
	rel, err := w.store.FindRelationship(ctx, userID, requesterID)
	if err != nil {
		if faults.IsKind(err, faults.NotFound) {
			return nil, faults.New(faults.NotFound, "no pending friend request")
		}
		return nil, err
	}
	// Only the addressee of the original request may answer it.
	if rel.AddresseeID != userID || rel.RequesterID != requesterID {
		return nil, faults.New(faults.NotFound, "no pending friend request")
	}
	ev, err := w.store.LatestStatus(ctx, rel)
	if err != nil {
		return nil, err
	}
	if ev.Code != model.StatusRequested {
		return nil, faults.New(faults.NotFound, "no pending friend request")
	}
	return w.store.AppendStatusEvent(ctx, rel, code, userID)
}

// Block appends a BLOCKED event specified by userID. The event keeps the
// existing relationship's orientation whichever way it was created; blocking
// never invents a new orientation. A pair with no relationship at all cannot
// be blocked.
func (w *Workflow) Block(ctx context.Context, userID, otherID uint) (*model.StatusEvent, error) {
	if userID == otherID {
		return nil, faults.New(faults.InvalidArgument, "cannot block yourself")
	}
	rel, err := w.store.FindRelationship(ctx, userID, otherID)
	if err != nil {
		if faults.IsKind(err, faults.NotFound) {
			return nil, faults.New(faults.NotFound, "no relationship to block")
		}
		return nil, err
	}
	return w.store.AppendStatusEvent(ctx, rel, model.StatusBlocked, userID)
}
