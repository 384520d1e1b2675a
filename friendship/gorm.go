package friendship

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sociable/messenger-backend/db/model"
	"github.com/sociable/messenger-backend/faults"
)

// GormStore is the Postgres-backed Store.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreateRelationship(ctx context.Context, requesterID, addresseeID uint) (*model.Relationship, error) {
	rel := &model.Relationship{
		RequesterID: requesterID,
		AddresseeID: addresseeID,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Serialize concurrent creation for the same unordered pair. The
		// composite primary key only guards one orientation, so both callers
		// of a swapped-order race would otherwise insert.
		lo, hi := requesterID, addresseeID
		if lo > hi {
			lo, hi = hi, lo
		}
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?, ?)", lo, hi).Error; err != nil {
			return faults.Wrap(faults.Unavailable, "could not lock pair", err)
		}
		var existing model.Relationship
		err := tx.
			Where(&model.Relationship{RequesterID: requesterID, AddresseeID: addresseeID}).
			Or(&model.Relationship{RequesterID: addresseeID, AddresseeID: requesterID}).
			First(&existing).Error
		if err == nil {
			return faults.New(faults.Conflict, "relationship already exists")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return faults.Wrap(faults.Unavailable, "relationship lookup failed", err)
		}
		if err := tx.Create(rel).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return faults.New(faults.Conflict, "relationship already exists")
			}
			return faults.Wrap(faults.Unavailable, "relationship create failed", err)
		}
		ev := &model.StatusEvent{
			RequesterID: requesterID,
			AddresseeID: addresseeID,
			Code:        model.StatusRequested,
			SpecifierID: requesterID,
		}
		if err := tx.Create(ev).Error; err != nil {
			return faults.Wrap(faults.Unavailable, "status event create failed", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rel, nil
}

func (s *GormStore) AppendStatusEvent(ctx context.Context, rel *model.Relationship, code model.Status, specifierID uint) (*model.StatusEvent, error) {
	ev := &model.StatusEvent{
		RequesterID: rel.RequesterID,
		AddresseeID: rel.AddresseeID,
		Code:        code,
		SpecifierID: specifierID,
	}
	if err := s.db.WithContext(ctx).Create(ev).Error; err != nil {
		return nil, faults.Wrap(faults.Unavailable, "status event create failed", err)
	}
	return ev, nil
}

func (s *GormStore) FindRelationship(ctx context.Context, a, b uint) (*model.Relationship, error) {
	var rel model.Relationship
	err := s.db.WithContext(ctx).
		Where(&model.Relationship{RequesterID: a, AddresseeID: b}).
		Or(&model.Relationship{RequesterID: b, AddresseeID: a}).
		Preload("Requester").
		Preload("Addressee").
		First(&rel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, faults.New(faults.NotFound, "relationship not found")
		}
		return nil, faults.Wrap(faults.Unavailable, "relationship lookup failed", err)
	}
	return &rel, nil
}

func (s *GormStore) LatestStatus(ctx context.Context, rel *model.Relationship) (*model.StatusEvent, error) {
	var ev model.StatusEvent
	err := s.db.WithContext(ctx).
		Where("requester_id = ? AND addressee_id = ?", rel.RequesterID, rel.AddresseeID).
		Order("created_at DESC, id DESC").
		Preload("Specifier").
		First(&ev).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, faults.New(faults.Internal, "relationship has no status events")
		}
		return nil, faults.Wrap(faults.Unavailable, "status lookup failed", err)
	}
	return &ev, nil
}

func (s *GormStore) RelationshipsFor(ctx context.Context, userID uint) ([]model.Relationship, error) {
	var rels []model.Relationship
	err := s.db.WithContext(ctx).
		Where("requester_id = ? OR addressee_id = ?", userID, userID).
		Preload("Requester").
		Preload("Addressee").
		Find(&rels).Error
	if err != nil {
		return nil, faults.Wrap(faults.Unavailable, "relationship lookup failed", err)
	}
	return rels, nil
}

func (s *GormStore) DeleteAll(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM status_events").Error; err != nil {
			return faults.Wrap(faults.Unavailable, "status event wipe failed", err)
		}
		if err := tx.Exec("DELETE FROM relationships").Error; err != nil {
			return faults.Wrap(faults.Unavailable, "relationship wipe failed", err)
		}
		return nil
	})
}
