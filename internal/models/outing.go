package models

import (
	"time"

	"gorm.io/gorm"
)

type OutingState string

const (
	OutingCreated  OutingState = "created"
	OutingOpen     OutingState = "open"
	OutingClosed   OutingState = "closed"
	OutingCanceled OutingState = "canceled"
)

// Outing is the event a chat group can be bound to. State transitions are
// Created -> Open -> Closed|Canceled; Canceled is only reachable from Open.
type Outing struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name                 string      `gorm:"size:100;not null" json:"name"`
	Info                 string      `gorm:"type:text" json:"info"`
	StartsAt             time.Time   `gorm:"not null" json:"starts_at"`
	RegistrationDeadline time.Time   `gorm:"not null" json:"registration_deadline"`
	Capacity             int         `gorm:"not null" json:"capacity"`
	State                OutingState `gorm:"type:varchar(20);not null;default:'created';index" json:"state"`
	CancelReason         string      `gorm:"size:255" json:"cancel_reason,omitempty"`
	OrganizerID          uint        `gorm:"not null;index" json:"organizer_id"`

	Organizer     User           `gorm:"foreignKey:OrganizerID" json:"organizer"`
	Registrations []Registration `gorm:"foreignKey:OutingID" json:"-"`
}

// Registration links a user to an outing they signed up for.
type Registration struct {
	OutingID     uint      `gorm:"primaryKey" json:"outing_id"`
	UserID       uint      `gorm:"primaryKey" json:"user_id"`
	RegisteredAt time.Time `gorm:"autoCreateTime" json:"registered_at"`

	User   User   `gorm:"foreignKey:UserID" json:"user"`
	Outing Outing `gorm:"foreignKey:OutingID" json:"-"`
}

type OutingSummary struct {
	ID       uint      `json:"id"`
	Name     string    `json:"name"`
	StartsAt time.Time `json:"starts_at"`
}

func (o *Outing) ToSummary() OutingSummary {
	return OutingSummary{ID: o.ID, Name: o.Name, StartsAt: o.StartsAt}
}

type OutingResponse struct {
	ID                   uint         `json:"id"`
	Name                 string       `json:"name"`
	Info                 string       `json:"info"`
	StartsAt             time.Time    `json:"starts_at"`
	RegistrationDeadline time.Time    `json:"registration_deadline"`
	Capacity             int          `json:"capacity"`
	State                OutingState  `json:"state"`
	CancelReason         string       `json:"cancel_reason,omitempty"`
	Organizer            UserResponse `json:"organizer"`
}

func (o *Outing) ToResponse() OutingResponse {
	return OutingResponse{
		ID:                   o.ID,
		Name:                 o.Name,
		Info:                 o.Info,
		StartsAt:             o.StartsAt,
		RegistrationDeadline: o.RegistrationDeadline,
		Capacity:             o.Capacity,
		State:                o.State,
		CancelReason:         o.CancelReason,
		Organizer:            o.Organizer.ToResponse(),
	}
}
