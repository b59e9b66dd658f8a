package service

import (
	"errors"
	"strings"
	"time"

	"github.com/Omballaa/eni-sortir/internal/models"
	"github.com/Omballaa/eni-sortir/internal/repository"
	"gorm.io/gorm"
)

// GroupService owns the group directory and the membership registry.
type GroupService struct {
	groupRepo      repository.GroupRepositoryInterface
	membershipRepo repository.MembershipRepositoryInterface
	messageRepo    repository.MessageRepositoryInterface
	userRepo       repository.UserRepositoryInterface
}

func NewGroupService(
	groupRepo repository.GroupRepositoryInterface,
	membershipRepo repository.MembershipRepositoryInterface,
	messageRepo repository.MessageRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
) *GroupService {
	return &GroupService{
		groupRepo:      groupRepo,
		membershipRepo: membershipRepo,
		messageRepo:    messageRepo,
		userRepo:       userRepo,
	}
}

// GetOrCreateOutingGroup returns the one group bound to the outing, creating
// it on first call. Safe to call repeatedly and concurrently: the insert goes
// through the outing_id unique index and a losing racer falls back to the
// lookup, so every caller sees the same group. The second return value
// reports whether this call created it.
func (s *GroupService) GetOrCreateOutingGroup(outing *models.Outing) (*models.Group, bool, error) {
	if outing.OrganizerID == 0 {
		// Upstream bug: an outing without an organizer cannot own a group.
		return nil, false, ErrNoOrganizer
	}

	if group, err := s.groupRepo.FindByOutingID(outing.ID); err == nil {
		return group, false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	group := models.NewOutingGroup(outing)
	created, err := s.groupRepo.CreateForOuting(group)
	if err != nil {
		return nil, false, err
	}
	if !created {
		// Lost the race; the winner's group is the group.
		group, err := s.groupRepo.FindByOutingID(outing.ID)
		return group, false, err
	}

	// The organizer is always the first member, as admin.
	if _, err := s.membershipRepo.AddOrReactivate(group.ID, outing.OrganizerID, true); err != nil {
		return nil, false, err
	}

	group, err = s.groupRepo.FindByID(group.ID)
	return group, true, err
}

// CreatePrivateGroup creates a free-standing group with the given members.
// The creator is always included and flagged admin, and a system message
// announces the group's formation, listing the participants.
func (s *GroupService) CreatePrivateGroup(name string, creatorID uint, participantIDs []uint) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("group name is required")
	}

	group := models.NewPrivateGroup(name, creatorID)
	if err := s.groupRepo.Create(group); err != nil {
		return nil, err
	}

	seen := map[uint]bool{creatorID: true}
	if _, err := s.membershipRepo.AddOrReactivate(group.ID, creatorID, true); err != nil {
		return nil, err
	}

	var names []string
	if creator, err := s.userRepo.FindByID(creatorID); err == nil {
		names = append(names, creator.DisplayName())
	}
	for _, id := range participantIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, err := s.membershipRepo.AddOrReactivate(group.ID, id, false); err != nil {
			return nil, err
		}
		if user, err := s.userRepo.FindByID(id); err == nil {
			names = append(names, user.DisplayName())
		}
	}

	announcement := models.NewSystemMessage(group.ID, creatorID,
		"Private group created with: "+strings.Join(names, ", "),
		models.SystemPrivateGroupCreated)
	announcement.SentAt = time.Now()
	if err := s.messageRepo.Create(announcement); err != nil {
		return nil, err
	}

	return s.groupRepo.FindByID(group.ID)
}

func (s *GroupService) GetGroup(groupID uint) (*models.Group, error) {
	group, err := s.groupRepo.FindByID(groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return group, nil
}

// Deactivate hides the group from per-user listings without touching its
// message history.
func (s *GroupService) Deactivate(groupID uint) error {
	return s.groupRepo.SetActive(groupID, false)
}

func (s *GroupService) Reactivate(groupID uint) error {
	return s.groupRepo.SetActive(groupID, true)
}

// JoinGroup adds the user or reactivates their old membership. This is the
// sole join path; a re-join after leaving never duplicates the row.
func (s *GroupService) JoinGroup(groupID, userID uint) (*models.Membership, error) {
	return s.membershipRepo.AddOrReactivate(groupID, userID, false)
}

// LeaveGroup soft-removes the user. Leaving a group the user is not in is a
// no-op, not an error.
func (s *GroupService) LeaveGroup(groupID, userID uint) error {
	return s.membershipRepo.Remove(groupID, userID)
}

func (s *GroupService) IsActiveMember(groupID, userID uint) (bool, error) {
	return s.membershipRepo.IsActiveMember(groupID, userID)
}

func (s *GroupService) ListActiveMembers(groupID uint) ([]models.Membership, error) {
	return s.membershipRepo.ListActiveMembers(groupID)
}

func (s *GroupService) CountActiveMembers(groupID uint) (int64, error) {
	return s.membershipRepo.CountActiveMembers(groupID)
}

func (s *GroupService) SetNotificationsEnabled(groupID, userID uint, enabled bool) error {
	return s.membershipRepo.SetNotificationsEnabled(groupID, userID, enabled)
}
