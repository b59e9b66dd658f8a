package service

import (
	"sort"
	"time"

	"github.com/Omballaa/eni-sortir/internal/models"
	"github.com/Omballaa/eni-sortir/internal/repository"
	"gorm.io/gorm"
)

// In-memory mock repositories for testing the service layer. They mimic the
// database semantics the services rely on: unique outing binding for groups,
// one membership row per (group, user), auto-increment message IDs, and the
// per-(message, user) read ledger.

// MockUserRepository

type MockUserRepository struct {
	users  map[uint]*models.User
	nextID uint
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[uint]*models.User), nextID: 1}
}

func (m *MockUserRepository) Create(user *models.User) error {
	if user.ID == 0 {
		user.ID = m.nextID
		m.nextID++
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) FindByEmail(email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepository) FindByUsername(username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepository) FindByID(id uint) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepository) Update(user *models.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) SearchUsers(query string, limit int) ([]models.User, error) {
	return []models.User{}, nil
}

// MockOutingRepository

type MockOutingRepository struct {
	outings       map[uint]*models.Outing
	registrations map[uint]map[uint]bool
	nextID        uint
}

func NewMockOutingRepository() *MockOutingRepository {
	return &MockOutingRepository{
		outings:       make(map[uint]*models.Outing),
		registrations: make(map[uint]map[uint]bool),
		nextID:        1,
	}
}

func (m *MockOutingRepository) Create(outing *models.Outing) error {
	if outing.ID == 0 {
		outing.ID = m.nextID
		m.nextID++
	}
	m.outings[outing.ID] = outing
	return nil
}

func (m *MockOutingRepository) FindByID(id uint) (*models.Outing, error) {
	if o, ok := m.outings[id]; ok {
		copied := *o
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockOutingRepository) UpdateState(outingID uint, state models.OutingState) error {
	o, ok := m.outings[outingID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.State = state
	return nil
}

func (m *MockOutingRepository) UpdateCancelation(outingID uint, reason string) error {
	o, ok := m.outings[outingID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.State = models.OutingCanceled
	o.CancelReason = reason
	return nil
}

func (m *MockOutingRepository) ListByState(state models.OutingState) ([]models.Outing, error) {
	var result []models.Outing
	for _, id := range m.sortedOutingIDs() {
		if m.outings[id].State == state {
			result = append(result, *m.outings[id])
		}
	}
	return result, nil
}

func (m *MockOutingRepository) ListExpiredOpen(now time.Time) ([]models.Outing, error) {
	var result []models.Outing
	for _, id := range m.sortedOutingIDs() {
		o := m.outings[id]
		if o.State == models.OutingOpen && o.StartsAt.Before(now) {
			result = append(result, *o)
		}
	}
	return result, nil
}

func (m *MockOutingRepository) AddRegistration(outingID, userID uint) error {
	if m.registrations[outingID] == nil {
		m.registrations[outingID] = make(map[uint]bool)
	}
	m.registrations[outingID][userID] = true
	return nil
}

func (m *MockOutingRepository) RemoveRegistration(outingID, userID uint) error {
	delete(m.registrations[outingID], userID)
	return nil
}

func (m *MockOutingRepository) CountRegistrations(outingID uint) (int64, error) {
	return int64(len(m.registrations[outingID])), nil
}

func (m *MockOutingRepository) IsRegistered(outingID, userID uint) (bool, error) {
	return m.registrations[outingID][userID], nil
}

func (m *MockOutingRepository) sortedOutingIDs() []uint {
	ids := make([]uint, 0, len(m.outings))
	for id := range m.outings {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// MockGroupRepository

type MockGroupRepository struct {
	groups map[uint]*models.Group
	nextID uint
}

func NewMockGroupRepository() *MockGroupRepository {
	return &MockGroupRepository{groups: make(map[uint]*models.Group), nextID: 1}
}

func (m *MockGroupRepository) Create(group *models.Group) error {
	if group.ID == 0 {
		group.ID = m.nextID
		m.nextID++
	}
	m.groups[group.ID] = group
	return nil
}

func (m *MockGroupRepository) CreateForOuting(group *models.Group) (bool, error) {
	// Mimics the unique index on outing_id: a second insert for the same
	// outing is swallowed and reported as not-created.
	for _, g := range m.groups {
		if g.OutingID != nil && group.OutingID != nil && *g.OutingID == *group.OutingID {
			return false, nil
		}
	}
	return true, m.Create(group)
}

func (m *MockGroupRepository) FindByID(id uint) (*models.Group, error) {
	if g, ok := m.groups[id]; ok {
		return g, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockGroupRepository) FindByOutingID(outingID uint) (*models.Group, error) {
	for _, g := range m.groups {
		if g.Type == models.GroupTypeOuting && g.OutingID != nil && *g.OutingID == outingID {
			return g, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockGroupRepository) SetActive(groupID uint, active bool) error {
	g, ok := m.groups[groupID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	g.IsActive = active
	return nil
}

// MockMembershipRepository

type MockMembershipRepository struct {
	memberships []*models.Membership
	nextID      uint
}

func NewMockMembershipRepository() *MockMembershipRepository {
	return &MockMembershipRepository{nextID: 1}
}

func (m *MockMembershipRepository) find(groupID, userID uint) *models.Membership {
	for _, mem := range m.memberships {
		if mem.GroupID == groupID && mem.UserID == userID {
			return mem
		}
	}
	return nil
}

func (m *MockMembershipRepository) AddOrReactivate(groupID, userID uint, isAdmin bool) (*models.Membership, error) {
	if existing := m.find(groupID, userID); existing != nil {
		existing.Active = true
		existing.IsAdmin = isAdmin
		existing.LeftAt = nil
		return existing, nil
	}
	mem := &models.Membership{
		ID:       m.nextID,
		GroupID:  groupID,
		UserID:   userID,
		Active:   true,
		IsAdmin:  isAdmin,
		Notify:   true,
		JoinedAt: time.Now(),
	}
	m.nextID++
	m.memberships = append(m.memberships, mem)
	return mem, nil
}

func (m *MockMembershipRepository) Remove(groupID, userID uint) error {
	if mem := m.find(groupID, userID); mem != nil && mem.Active {
		now := time.Now()
		mem.Active = false
		mem.LeftAt = &now
	}
	return nil
}

func (m *MockMembershipRepository) Find(groupID, userID uint) (*models.Membership, error) {
	if mem := m.find(groupID, userID); mem != nil {
		return mem, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockMembershipRepository) IsActiveMember(groupID, userID uint) (bool, error) {
	mem := m.find(groupID, userID)
	return mem != nil && mem.Active, nil
}

func (m *MockMembershipRepository) ListActiveMembers(groupID uint) ([]models.Membership, error) {
	var result []models.Membership
	for _, mem := range m.memberships {
		if mem.GroupID == groupID && mem.Active {
			result = append(result, *mem)
		}
	}
	return result, nil
}

func (m *MockMembershipRepository) CountActiveMembers(groupID uint) (int64, error) {
	members, _ := m.ListActiveMembers(groupID)
	return int64(len(members)), nil
}

func (m *MockMembershipRepository) SetNotificationsEnabled(groupID, userID uint, enabled bool) error {
	if mem := m.find(groupID, userID); mem != nil {
		mem.Notify = enabled
	}
	return nil
}

func (m *MockMembershipRepository) TouchLastVisited(groupID, userID uint, at time.Time) error {
	if mem := m.find(groupID, userID); mem != nil {
		mem.LastVisit = &at
	}
	return nil
}

// RowCount reports the total number of membership rows, active or not.
func (m *MockMembershipRepository) RowCount(groupID, userID uint) int {
	count := 0
	for _, mem := range m.memberships {
		if mem.GroupID == groupID && mem.UserID == userID {
			count++
		}
	}
	return count
}

// MockMessageRepository

type MockMessageRepository struct {
	messages map[uint]*models.Message
	nextID   uint
}

func NewMockMessageRepository() *MockMessageRepository {
	return &MockMessageRepository{messages: make(map[uint]*models.Message), nextID: 1}
}

func (m *MockMessageRepository) Create(message *models.Message) error {
	if !message.Valid() {
		return repository.ErrInvalidTarget
	}
	if message.ID == 0 {
		message.ID = m.nextID
		m.nextID++
	}
	m.messages[message.ID] = message
	return nil
}

func (m *MockMessageRepository) FindByID(id uint) (*models.Message, error) {
	if msg, ok := m.messages[id]; ok {
		return msg, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockMessageRepository) FindByClientID(clientID string, senderID uint) (*models.Message, error) {
	for _, msg := range m.messages {
		if msg.ClientID == clientID && msg.SenderID == senderID {
			return msg, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockMessageRepository) FindGroupMessagesSince(groupID uint, lastSeenID uint, limit int) ([]models.Message, error) {
	var result []models.Message
	for _, id := range m.sortedIDs() {
		msg := m.messages[id]
		if msg.GroupID == nil || *msg.GroupID != groupID || msg.ID <= lastSeenID {
			continue
		}
		result = append(result, *msg)
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (m *MockMessageRepository) FindGroupMessagesPage(groupID uint, page, pageSize int) ([]models.Message, error) {
	var all []models.Message
	for _, id := range m.sortedIDs() {
		msg := m.messages[id]
		if msg.GroupID != nil && *msg.GroupID == groupID {
			all = append(all, *msg)
		}
	}
	offset := (page - 1) * pageSize
	if offset >= len(all) {
		return []models.Message{}, nil
	}
	end := offset + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *MockMessageRepository) FindDirectMessages(userID1, userID2 uint, limit int) ([]models.Message, error) {
	var result []models.Message
	for _, id := range m.sortedIDs() {
		msg := m.messages[id]
		if msg.RecipientID == nil {
			continue
		}
		if (msg.SenderID == userID1 && *msg.RecipientID == userID2) ||
			(msg.SenderID == userID2 && *msg.RecipientID == userID1) {
			result = append(result, *msg)
		}
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (m *MockMessageRepository) GetLatestGroupMessageID(groupID uint) (uint, error) {
	var maxID uint
	for _, msg := range m.messages {
		if msg.GroupID != nil && *msg.GroupID == groupID && msg.ID > maxID {
			maxID = msg.ID
		}
	}
	return maxID, nil
}

func (m *MockMessageRepository) sortedIDs() []uint {
	ids := make([]uint, 0, len(m.messages))
	for id := range m.messages {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// GroupMessages returns every message in the group in id order.
func (m *MockMessageRepository) GroupMessages(groupID uint) []models.Message {
	msgs, _ := m.FindGroupMessagesSince(groupID, 0, len(m.messages)+1)
	return msgs
}

// MockReadStatusRepository

type readKey struct {
	messageID uint
	userID    uint
}

type MockReadStatusRepository struct {
	statuses map[readKey]*models.ReadStatus
	messages *MockMessageRepository
}

func NewMockReadStatusRepository(messages *MockMessageRepository) *MockReadStatusRepository {
	return &MockReadStatusRepository{
		statuses: make(map[readKey]*models.ReadStatus),
		messages: messages,
	}
}

func (m *MockReadStatusRepository) Get(messageID, userID uint) (*models.ReadStatus, error) {
	if rs, ok := m.statuses[readKey{messageID, userID}]; ok {
		return rs, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockReadStatusRepository) IsRead(messageID, userID uint) (bool, error) {
	rs, ok := m.statuses[readKey{messageID, userID}]
	return ok && rs.Read, nil
}

func (m *MockReadStatusRepository) MarkRead(messageID, userID uint, at time.Time) error {
	key := readKey{messageID, userID}
	if rs, ok := m.statuses[key]; ok {
		// Marking an already-read message keeps the original timestamp.
		if !rs.Read {
			rs.Read = true
			rs.ReadAt = &at
		}
		return nil
	}
	m.statuses[key] = &models.ReadStatus{
		MessageID: messageID,
		UserID:    userID,
		Read:      true,
		ReadAt:    &at,
		CreatedAt: at,
	}
	return nil
}

func (m *MockReadStatusRepository) MarkUnread(messageID, userID uint) error {
	key := readKey{messageID, userID}
	if rs, ok := m.statuses[key]; ok {
		rs.Read = false
		rs.ReadAt = nil
		return nil
	}
	m.statuses[key] = &models.ReadStatus{MessageID: messageID, UserID: userID, Read: false}
	return nil
}

func (m *MockReadStatusRepository) MarkAllReadInGroup(groupID, userID uint, asOf time.Time) error {
	for _, msg := range m.messages.messages {
		if msg.GroupID == nil || *msg.GroupID != groupID || msg.SenderID == userID {
			continue
		}
		if err := m.MarkRead(msg.ID, userID, asOf); err != nil {
			return err
		}
	}
	return nil
}

// MockNotificationRepository computes aggregates from the message, membership
// and read-status mocks, the way the real one does in SQL.

type MockNotificationRepository struct {
	messages    *MockMessageRepository
	memberships *MockMembershipRepository
	statuses    *MockReadStatusRepository
	groups      *MockGroupRepository
}

func NewMockNotificationRepository(
	messages *MockMessageRepository,
	memberships *MockMembershipRepository,
	statuses *MockReadStatusRepository,
	groups *MockGroupRepository,
) *MockNotificationRepository {
	return &MockNotificationRepository{
		messages:    messages,
		memberships: memberships,
		statuses:    statuses,
		groups:      groups,
	}
}

func (m *MockNotificationRepository) UnreadCountInGroup(groupID, userID uint) (int64, error) {
	var count int64
	for _, msg := range m.messages.messages {
		if msg.GroupID == nil || *msg.GroupID != groupID || msg.SenderID == userID {
			continue
		}
		if read, _ := m.statuses.IsRead(msg.ID, userID); !read {
			count++
		}
	}
	return count, nil
}

func (m *MockNotificationRepository) UnreadCountGroups(userID uint) (int64, error) {
	var total int64
	for _, mem := range m.memberships.memberships {
		if mem.UserID != userID || !mem.Active {
			continue
		}
		count, _ := m.UnreadCountInGroup(mem.GroupID, userID)
		total += count
	}
	return total, nil
}

func (m *MockNotificationRepository) UnreadCountDirect(userID uint) (int64, error) {
	var count int64
	for _, msg := range m.messages.messages {
		if msg.RecipientID == nil || *msg.RecipientID != userID {
			continue
		}
		if read, _ := m.statuses.IsRead(msg.ID, userID); !read {
			count++
		}
	}
	return count, nil
}

func (m *MockNotificationRepository) ListGroupSummaries(userID uint) ([]repository.GroupNotificationRow, error) {
	var rows []repository.GroupNotificationRow
	for _, mem := range m.memberships.memberships {
		if mem.UserID != userID || !mem.Active {
			continue
		}
		group, err := m.groups.FindByID(mem.GroupID)
		if err != nil {
			continue
		}
		row := repository.GroupNotificationRow{
			GroupID:   group.ID,
			GroupName: group.Name,
			GroupType: string(group.Type),
		}
		row.UnreadCount, _ = m.UnreadCountInGroup(group.ID, userID)

		latestID, _ := m.messages.GetLatestGroupMessageID(group.ID)
		if latestID > 0 {
			msg := m.messages.messages[latestID]
			row.MessageID.Int64 = int64(msg.ID)
			row.MessageID.Valid = true
			row.MessageBody.String = msg.Body
			row.MessageBody.Valid = true
			row.MessageIsSystem.Bool = msg.IsSystem
			row.MessageIsSystem.Valid = true
			sentAt := msg.SentAt
			row.MessageSentAt = &sentAt
			row.LastActivity = sentAt
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].UnreadCount != rows[j].UnreadCount {
			return rows[i].UnreadCount > rows[j].UnreadCount
		}
		return rows[i].LastActivity.After(rows[j].LastActivity)
	})
	return rows, nil
}
