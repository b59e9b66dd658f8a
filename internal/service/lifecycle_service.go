package service

import (
	"errors"
	"fmt"

	"github.com/Omballaa/eni-sortir/internal/models"
	"gorm.io/gorm"
)

// LifecycleService translates outing lifecycle transitions into group
// directory updates, membership changes and system messages. It is purely
// reactive: it never decides the outing's state, it only mirrors transitions
// the outing flow already made.
type LifecycleService struct {
	groups   *GroupService
	messages *MessageService
}

func NewLifecycleService(groups *GroupService, messages *MessageService) *LifecycleService {
	return &LifecycleService{groups: groups, messages: messages}
}

func (s *LifecycleService) ensureGroup(outing *models.Outing) (*models.Group, error) {
	group, created, err := s.groups.GetOrCreateOutingGroup(outing)
	if err != nil {
		return nil, err
	}
	if created {
		_, err = s.messages.AppendSystem(group.ID, group.CreatorID,
			fmt.Sprintf("Group created for the outing %q", outing.Name),
			models.SystemGroupCreated)
		if err != nil {
			return nil, err
		}
	}
	return group, nil
}

// OnOutingPublished fires when an outing transitions into the open state —
// not on bare creation. It makes sure the group exists and announces that
// registrations are open.
func (s *LifecycleService) OnOutingPublished(outing *models.Outing) error {
	group, err := s.ensureGroup(outing)
	if err != nil {
		return err
	}
	_, err = s.messages.AppendSystem(group.ID, group.CreatorID,
		fmt.Sprintf("The outing %q is now open for registration!", outing.Name),
		models.SystemEventPublished)
	return err
}

// OnParticipantJoined adds the user to the outing's group (creating the group
// if the outing somehow has none yet) and announces the arrival. The
// announcement is authored by the group creator, so the joining user sees it
// as unread like everyone else.
func (s *LifecycleService) OnParticipantJoined(outing *models.Outing, user *models.User) error {
	group, err := s.ensureGroup(outing)
	if err != nil {
		return err
	}
	if _, err := s.groups.JoinGroup(group.ID, user.ID); err != nil {
		return err
	}
	_, err = s.messages.AppendSystem(group.ID, group.CreatorID,
		fmt.Sprintf("%s joined the outing", user.DisplayName()),
		models.SystemMemberJoined)
	return err
}

// OnParticipantLeft removes the user from the outing's group, if one exists,
// and announces the departure. With no group there is nothing to do; any other
// lookup failure surfaces, since swallowing it would skip the removal and the
// announcement while the registration change still commits.
func (s *LifecycleService) OnParticipantLeft(outing *models.Outing, user *models.User) error {
	group, err := s.groups.groupRepo.FindByOutingID(outing.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if err := s.groups.LeaveGroup(group.ID, user.ID); err != nil {
		return err
	}
	_, err = s.messages.AppendSystem(group.ID, group.CreatorID,
		fmt.Sprintf("%s left the outing", user.DisplayName()),
		models.SystemMemberLeft)
	return err
}

// OnOutingCanceled announces the cancellation with its reason. The group
// stays active and keeps its members: participants may want to discuss a
// reschedule in place.
func (s *LifecycleService) OnOutingCanceled(outing *models.Outing, reason string) error {
	group, err := s.groups.groupRepo.FindByOutingID(outing.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	body := fmt.Sprintf("The outing %q has been canceled", outing.Name)
	if reason != "" {
		body += "\nReason: " + reason
	}
	body += "\n\nYou can keep using this group to discuss rescheduling."

	_, err = s.messages.AppendSystem(group.ID, group.CreatorID, body, models.SystemEventCanceled)
	return err
}

// OnRegistrationsClosed announces that the outing stopped accepting
// registrations, whether by reaching capacity or by the closer job.
func (s *LifecycleService) OnRegistrationsClosed(outing *models.Outing) error {
	group, err := s.groups.groupRepo.FindByOutingID(outing.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	_, err = s.messages.AppendSystem(group.ID, group.CreatorID,
		fmt.Sprintf("Registrations for the outing %q are now closed", outing.Name),
		models.SystemRegistrationsClosed)
	return err
}
