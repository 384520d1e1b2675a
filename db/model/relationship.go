package model

import (
	"database/sql/driver"
	"time"
)

// Status is a single relationship status code. Codes are stored as one-char
// strings: (R)equested, (A)ccepted, (D)enied, (B)locked.
type Status string

const (
	// StatusNone is never persisted; it is the implicit status of a pair
	// with no relationship.
	StatusNone      Status = ""
	StatusRequested Status = "R"
	StatusAccepted  Status = "A"
	StatusDenied    Status = "D"
	StatusBlocked   Status = "B"
)

func (s *Status) Scan(value any) error {
	*s = Status(value.(string))
	return nil
}

func (s Status) Value() (driver.Value, error) {
	return string(s), nil
}

func (s Status) String() string {
	switch s {
	case StatusRequested:
		return "requested"
	case StatusAccepted:
		return "accepted"
	case StatusDenied:
		return "denied"
	case StatusBlocked:
		return "blocked"
	}
	return "none"
}

// Relationship is the durable record that two users have some history
// together. The (requester, addressee) orientation is fixed at creation:
// the requester is whoever sent the original friend request, and the
// orientation never changes afterwards, not even when the addressee later
// accepts, denies or blocks.
type Relationship struct {
	RequesterID uint      `gorm:"primaryKey" json:"requester_id"`
	AddresseeID uint      `gorm:"primaryKey" json:"addressee_id"`
	Requester   *User     `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Addressee   *User     `gorm:"foreignKey:AddresseeID" json:"addressee,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// StatusEvent is one append-only entry in a relationship's history. Events
// are never updated or deleted; the current status of a pair is the event
// with the greatest (created_at, id) for that pair. The auto-increment ID
// doubles as the tiebreaker for events sharing a timestamp.
type StatusEvent struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	RequesterID uint      `gorm:"index:idx_status_events_pair" json:"requester_id"`
	AddresseeID uint      `gorm:"index:idx_status_events_pair" json:"addressee_id"`
	Code        Status    `gorm:"type:varchar(1);not null" json:"status_code"`
	SpecifierID uint      `gorm:"not null" json:"specifier_id"`
	Specifier   *User     `gorm:"foreignKey:SpecifierID" json:"specifier,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
