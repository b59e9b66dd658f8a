package service

import (
	"errors"
	"strings"
	"time"

	"github.com/Omballaa/eni-sortir/internal/models"
	"github.com/Omballaa/eni-sortir/internal/repository"
	"gorm.io/gorm"
)

// OutingService owns the outing lifecycle (Created -> Open -> Closed|Canceled)
// and drives the messaging side effects through the lifecycle bridge,
// synchronously with each transition.
type OutingService struct {
	outingRepo repository.OutingRepositoryInterface
	userRepo   repository.UserRepositoryInterface
	lifecycle  *LifecycleService
}

func NewOutingService(
	outingRepo repository.OutingRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	lifecycle *LifecycleService,
) *OutingService {
	return &OutingService{
		outingRepo: outingRepo,
		userRepo:   userRepo,
		lifecycle:  lifecycle,
	}
}

type CreateOutingInput struct {
	Name                 string    `json:"name"`
	Info                 string    `json:"info"`
	StartsAt             time.Time `json:"starts_at"`
	RegistrationDeadline time.Time `json:"registration_deadline"`
	Capacity             int       `json:"capacity"`
}

func (s *OutingService) Create(organizerID uint, input CreateOutingInput) (*models.Outing, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, errors.New("outing name is required")
	}
	if input.Capacity < 1 {
		return nil, errors.New("capacity must be at least 1")
	}
	if !input.RegistrationDeadline.Before(input.StartsAt) {
		return nil, errors.New("registration deadline must be before the start time")
	}

	outing := &models.Outing{
		Name:                 input.Name,
		Info:                 input.Info,
		StartsAt:             input.StartsAt,
		RegistrationDeadline: input.RegistrationDeadline,
		Capacity:             input.Capacity,
		State:                models.OutingCreated,
		OrganizerID:          organizerID,
	}
	if err := s.outingRepo.Create(outing); err != nil {
		return nil, err
	}
	return s.outingRepo.FindByID(outing.ID)
}

func (s *OutingService) Get(outingID uint) (*models.Outing, error) {
	outing, err := s.outingRepo.FindByID(outingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOutingNotFound
		}
		return nil, err
	}
	return outing, nil
}

// Publish opens a created outing for registration and fires the bridge.
func (s *OutingService) Publish(outingID, actorID uint) (*models.Outing, error) {
	outing, err := s.Get(outingID)
	if err != nil {
		return nil, err
	}
	if outing.OrganizerID != actorID {
		return nil, ErrNotOrganizer
	}
	if outing.State != models.OutingCreated {
		return nil, ErrInvalidTransition
	}

	if err := s.outingRepo.UpdateState(outing.ID, models.OutingOpen); err != nil {
		return nil, err
	}
	outing.State = models.OutingOpen

	if err := s.lifecycle.OnOutingPublished(outing); err != nil {
		return nil, err
	}
	return outing, nil
}

// Cancel is only allowed from the open state and only by the organizer. The
// bridge announces it in the group; the group itself stays alive.
func (s *OutingService) Cancel(outingID, actorID uint, reason string) (*models.Outing, error) {
	outing, err := s.Get(outingID)
	if err != nil {
		return nil, err
	}
	if outing.OrganizerID != actorID {
		return nil, ErrNotOrganizer
	}
	if outing.State != models.OutingOpen {
		return nil, ErrInvalidTransition
	}

	if err := s.outingRepo.UpdateCancelation(outing.ID, reason); err != nil {
		return nil, err
	}
	outing.State = models.OutingCanceled
	outing.CancelReason = reason

	if err := s.lifecycle.OnOutingCanceled(outing, reason); err != nil {
		return nil, err
	}
	return outing, nil
}

// Register signs a user up for an open outing. Filling the last seat closes
// registrations on the spot.
func (s *OutingService) Register(outingID, userID uint) error {
	outing, err := s.Get(outingID)
	if err != nil {
		return err
	}
	if outing.State != models.OutingOpen {
		return ErrOutingNotOpen
	}
	if time.Now().After(outing.RegistrationDeadline) {
		return ErrDeadlinePassed
	}

	registered, err := s.outingRepo.IsRegistered(outingID, userID)
	if err != nil {
		return err
	}
	if registered {
		return ErrAlreadyRegistered
	}

	count, err := s.outingRepo.CountRegistrations(outingID)
	if err != nil {
		return err
	}
	if count >= int64(outing.Capacity) {
		return ErrOutingFull
	}

	if err := s.outingRepo.AddRegistration(outingID, userID); err != nil {
		return err
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return err
	}
	if err := s.lifecycle.OnParticipantJoined(outing, user); err != nil {
		return err
	}

	// Last seat taken: close registrations.
	if count+1 >= int64(outing.Capacity) {
		if err := s.outingRepo.UpdateState(outingID, models.OutingClosed); err != nil {
			return err
		}
		outing.State = models.OutingClosed
		return s.lifecycle.OnRegistrationsClosed(outing)
	}
	return nil
}

// Unregister withdraws a user. When the outing was closed by capacity and the
// deadline has not passed, freeing a seat reopens it.
func (s *OutingService) Unregister(outingID, userID uint) error {
	outing, err := s.Get(outingID)
	if err != nil {
		return err
	}

	registered, err := s.outingRepo.IsRegistered(outingID, userID)
	if err != nil {
		return err
	}
	if !registered {
		return ErrNotRegistered
	}

	if err := s.outingRepo.RemoveRegistration(outingID, userID); err != nil {
		return err
	}

	if outing.State == models.OutingClosed && time.Now().Before(outing.RegistrationDeadline) {
		if err := s.outingRepo.UpdateState(outingID, models.OutingOpen); err != nil {
			return err
		}
		outing.State = models.OutingOpen
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return err
	}
	return s.lifecycle.OnParticipantLeft(outing, user)
}

// CloseExpired closes every open outing whose start time has passed and
// returns how many it closed. The scheduler calls this on a fixed cadence
// with its own clock.
func (s *OutingService) CloseExpired(now time.Time) (int, error) {
	outings, err := s.outingRepo.ListExpiredOpen(now)
	if err != nil {
		return 0, err
	}

	closed := 0
	for i := range outings {
		outing := &outings[i]
		if err := s.outingRepo.UpdateState(outing.ID, models.OutingClosed); err != nil {
			return closed, err
		}
		outing.State = models.OutingClosed
		if err := s.lifecycle.OnRegistrationsClosed(outing); err != nil {
			return closed, err
		}
		closed++
	}
	return closed, nil
}
