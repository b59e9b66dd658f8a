package models

import (
	"time"

	"gorm.io/gorm"
)

type GroupType string

const (
	// GroupTypeOuting groups are bound 1:1 to an outing; at most one per outing.
	GroupTypeOuting GroupType = "outing"
	// GroupTypePrivate groups are free-standing, created explicitly by a user.
	GroupTypePrivate GroupType = "private"
)

type Group struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	Type        GroupType `gorm:"type:varchar(20);not null" json:"type"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatorID   uint      `gorm:"not null" json:"creator_id"`

	// Set only for outing groups. The unique index is what makes
	// GetOrCreate safe under concurrent creation for the same outing.
	OutingID *uint `gorm:"uniqueIndex" json:"outing_id,omitempty"`

	Creator User         `gorm:"foreignKey:CreatorID" json:"creator"`
	Outing  *Outing      `gorm:"foreignKey:OutingID" json:"outing,omitempty"`
	Members []Membership `gorm:"foreignKey:GroupID" json:"members,omitempty"`
}

// NewOutingGroup is the only constructor that binds a group to an outing.
func NewOutingGroup(outing *Outing) *Group {
	id := outing.ID
	return &Group{
		Name:        "Outing: " + outing.Name,
		Description: "Discussion group for the outing \"" + outing.Name + "\"",
		Type:        GroupTypeOuting,
		IsActive:    true,
		CreatorID:   outing.OrganizerID,
		OutingID:    &id,
	}
}

func NewPrivateGroup(name string, creatorID uint) *Group {
	return &Group{
		Name:      name,
		Type:      GroupTypePrivate,
		IsActive:  true,
		CreatorID: creatorID,
	}
}

// Membership is the evolving relationship between a user and a group.
// A user who left keeps their row (Active=false, LeftAt set); re-joining
// reactivates it rather than inserting a second one.
type Membership struct {
	ID        uint       `gorm:"primarykey" json:"id"`
	GroupID   uint       `gorm:"not null;uniqueIndex:idx_group_user;index:idx_members_active,priority:1" json:"group_id"`
	UserID    uint       `gorm:"not null;uniqueIndex:idx_group_user" json:"user_id"`
	Active    bool       `gorm:"default:true;index:idx_members_active,priority:2" json:"active"`
	IsAdmin   bool       `gorm:"default:false" json:"is_admin"`
	Notify    bool       `gorm:"default:true" json:"notifications_enabled"`
	JoinedAt  time.Time  `gorm:"not null" json:"joined_at"`
	LeftAt    *time.Time `json:"left_at,omitempty"`
	LastVisit *time.Time `json:"last_visited_at,omitempty"`

	User  User  `gorm:"foreignKey:UserID" json:"user"`
	Group Group `gorm:"foreignKey:GroupID" json:"-"`
}

type GroupResponse struct {
	ID          uint           `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Type        GroupType      `json:"type"`
	IsActive    bool           `json:"is_active"`
	CreatorID   uint           `json:"creator_id"`
	Outing      *OutingSummary `json:"outing,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (g *Group) ToResponse() GroupResponse {
	resp := GroupResponse{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Type:        g.Type,
		IsActive:    g.IsActive,
		CreatorID:   g.CreatorID,
		CreatedAt:   g.CreatedAt,
	}
	if g.Outing != nil {
		s := g.Outing.ToSummary()
		resp.Outing = &s
	}
	return resp
}
