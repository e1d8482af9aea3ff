package adapter

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	chat "go-chatline/internal/pkg/chat/application/domain"
	repository "go-chatline/internal/pkg/chat/persistence/repository/port"
)

// MemoryChatRepository is a process-local store with the same contract as
// PgChatRepository. Every method takes the single lock, so each call is atomic.
type MemoryChatRepository struct {
	mu  sync.RWMutex
	now func() time.Time

	seq           int64
	users         map[int64]chat.User
	conversations map[int64]chat.Conversation
	memberships   map[int64]chat.Membership
	messages      map[int64][]chat.Message // by conversation
	contacts      map[int64]chat.Contact
	invitations   map[int64]chat.GroupInvitation
}

type MemoryOption func(*MemoryChatRepository)

// WithClock overrides the timestamp source used for created/joined/updated columns.
func WithClock(now func() time.Time) MemoryOption {
	return func(r *MemoryChatRepository) { r.now = now }
}

func NewMemoryChatRepository(opts ...MemoryOption) *MemoryChatRepository {
	r := &MemoryChatRepository{
		now:           func() time.Time { return time.Now().UTC() },
		users:         make(map[int64]chat.User),
		conversations: make(map[int64]chat.Conversation),
		memberships:   make(map[int64]chat.Membership),
		messages:      make(map[int64][]chat.Message),
		contacts:      make(map[int64]chat.Contact),
		invitations:   make(map[int64]chat.GroupInvitation),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

var _ repository.ChatRepository = (*MemoryChatRepository)(nil)

func (r *MemoryChatRepository) nextID() int64 {
	r.seq++
	return r.seq
}

// AddUser seeds an account; the identity provider owns users in production.
func (r *MemoryChatRepository) AddUser(username string) chat.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return u
		}
	}
	u := chat.User{ID: r.nextID(), Username: username}
	r.users[u.ID] = u
	return u
}

// ===================== Conversations =====================

func (r *MemoryChatRepository) GetConversation(_ context.Context, id int64) (*chat.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conversations[id]
	if !ok {
		return nil, chat.ErrConversationNotFound
	}
	return &c, nil
}

func (r *MemoryChatRepository) FindGroupsByName(_ context.Context, name string) ([]chat.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []chat.Conversation
	for _, c := range r.conversations {
		if c.Kind == chat.ConversationGroup && c.Name == name {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryChatRepository) CreateGroup(_ context.Context, name string, creatorID int64) (*chat.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[creatorID]; !ok {
		return nil, chat.ErrUserNotFound
	}
	for _, c := range r.conversations {
		if c.Kind == chat.ConversationGroup && name != "" && c.Name == name {
			return nil, chat.ErrDuplicateGroupName
		}
	}
	c := chat.Conversation{ID: r.nextID(), Kind: chat.ConversationGroup, Name: name, CreatedBy: creatorID, CreatedAt: r.now()}
	r.conversations[c.ID] = c
	r.addMembershipLocked(c.ID, creatorID, true)
	return &c, nil
}

func (r *MemoryChatRepository) FindDirect(_ context.Context, a, b int64) (*chat.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var found *chat.Conversation
	for _, c := range r.conversations {
		if c.Kind != chat.ConversationDirect {
			continue
		}
		if r.membershipLocked(c.ID, a) == nil || r.membershipLocked(c.ID, b) == nil {
			continue
		}
		if found == nil || c.ID < found.ID {
			cc := c
			found = &cc
		}
	}
	if found == nil {
		return nil, chat.ErrConversationNotFound
	}
	return found, nil
}

func (r *MemoryChatRepository) CreateDirect(_ context.Context, creatorID, otherID int64) (*chat.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[creatorID]; !ok {
		return nil, chat.ErrUserNotFound
	}
	if _, ok := r.users[otherID]; !ok {
		return nil, chat.ErrUserNotFound
	}
	c := chat.Conversation{ID: r.nextID(), Kind: chat.ConversationDirect, CreatedBy: creatorID, CreatedAt: r.now()}
	r.conversations[c.ID] = c
	r.addMembershipLocked(c.ID, creatorID, true)
	r.addMembershipLocked(c.ID, otherID, false)
	return &c, nil
}

func (r *MemoryChatRepository) ListConversationsForUser(_ context.Context, userID int64, kind chat.ConversationKind) ([]chat.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []chat.Conversation
	for _, m := range r.memberships {
		if m.UserID != userID {
			continue
		}
		c := r.conversations[m.ConversationID]
		if kind != "" && c.Kind != kind {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// ===================== Memberships =====================

func (r *MemoryChatRepository) membershipLocked(conversationID, userID int64) *chat.Membership {
	for _, m := range r.memberships {
		if m.ConversationID == conversationID && m.UserID == userID {
			mm := m
			mm.Username = r.users[m.UserID].Username
			return &mm
		}
	}
	return nil
}

func (r *MemoryChatRepository) addMembershipLocked(conversationID, userID int64, isAdmin bool) chat.Membership {
	if existing := r.membershipLocked(conversationID, userID); existing != nil {
		return *existing
	}
	m := chat.Membership{
		ID:             r.nextID(),
		ConversationID: conversationID,
		UserID:         userID,
		Username:       r.users[userID].Username,
		IsAdmin:        isAdmin,
		JoinedAt:       r.now(),
	}
	r.memberships[m.ID] = m
	return m
}

func (r *MemoryChatRepository) GetMembership(_ context.Context, conversationID, userID int64) (*chat.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m := r.membershipLocked(conversationID, userID); m != nil {
		return m, nil
	}
	return nil, chat.ErrMembershipNotFound
}

func (r *MemoryChatRepository) GetOtherMembership(_ context.Context, conversationID, excludingUserID int64) (*chat.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := r.membersLocked(conversationID)
	for _, m := range members {
		if m.UserID != excludingUserID {
			return &m, nil
		}
	}
	return nil, chat.ErrMembershipNotFound
}

func (r *MemoryChatRepository) AddMembership(_ context.Context, conversationID, userID int64, isAdmin bool) (*chat.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conversations[conversationID]; !ok {
		return nil, chat.ErrConversationNotFound
	}
	if _, ok := r.users[userID]; !ok {
		return nil, chat.ErrUserNotFound
	}
	m := r.addMembershipLocked(conversationID, userID, isAdmin)
	return &m, nil
}

func (r *MemoryChatRepository) membersLocked(conversationID int64) []chat.Membership {
	var out []chat.Membership
	for _, m := range r.memberships {
		if m.ConversationID == conversationID {
			m.Username = r.users[m.UserID].Username
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *MemoryChatRepository) ListMembers(_ context.Context, conversationID int64) ([]chat.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.membersLocked(conversationID), nil
}

func (r *MemoryChatRepository) ListMembershipsForUser(_ context.Context, userID int64) ([]chat.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []chat.Membership
	for _, m := range r.memberships {
		if m.UserID == userID {
			m.Username = r.users[m.UserID].Username
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ConversationID < out[j].ConversationID })
	return out, nil
}

func (r *MemoryChatRepository) SetLastRead(_ context.Context, membershipID int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.memberships[membershipID]
	if !ok {
		return chat.ErrMembershipNotFound
	}
	ts := at
	m.LastReadAt = &ts
	r.memberships[membershipID] = m
	return nil
}

// ===================== Messages =====================

func (r *MemoryChatRepository) CreateMessage(_ context.Context, m chat.Message) (*chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conversations[m.ConversationID]; !ok {
		return nil, chat.ErrConversationNotFound
	}
	u, ok := r.users[m.SenderID]
	if !ok {
		return nil, chat.ErrUserNotFound
	}
	m.ID = r.nextID()
	m.SenderUsername = u.Username
	m.CreatedAt = r.now()
	r.messages[m.ConversationID] = append(r.messages[m.ConversationID], m)
	return &m, nil
}

func (r *MemoryChatRepository) ListMessages(_ context.Context, conversationID int64, limit int) ([]chat.Message, error) {
	r.mu.RLock()
	msgs := append([]chat.Message(nil), r.messages[conversationID]...)
	r.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	chat.SortMessages(msgs)
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

func (r *MemoryChatRepository) CountMessagesAfter(_ context.Context, conversationID int64, after time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, m := range r.messages[conversationID] {
		if m.CreatedAt.After(after) {
			n++
		}
	}
	return n, nil
}

// ===================== Contacts =====================

func (r *MemoryChatRepository) decorateContact(c chat.Contact) chat.Contact {
	c.FromUsername = r.users[c.FromUserID].Username
	c.ToUsername = r.users[c.ToUserID].Username
	return c
}

func (r *MemoryChatRepository) HasAcceptedContact(_ context.Context, a, b int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rows := make([]chat.Contact, 0, len(r.contacts))
	for _, c := range r.contacts {
		rows = append(rows, c)
	}
	return chat.AnyAccepted(rows, a, b), nil
}

func (r *MemoryChatRepository) GetContactBetween(_ context.Context, a, b int64) (*chat.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var found *chat.Contact
	for _, c := range r.contacts {
		if (c.FromUserID == a && c.ToUserID == b) || (c.FromUserID == b && c.ToUserID == a) {
			if found == nil || c.ID < found.ID {
				cc := r.decorateContact(c)
				found = &cc
			}
		}
	}
	if found == nil {
		return nil, chat.ErrContactNotFound
	}
	return found, nil
}

func (r *MemoryChatRepository) GetContact(_ context.Context, id int64) (*chat.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.contacts[id]
	if !ok {
		return nil, chat.ErrContactNotFound
	}
	c = r.decorateContact(c)
	return &c, nil
}

func (r *MemoryChatRepository) CreateContact(_ context.Context, fromUserID, toUserID int64) (*chat.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.contacts {
		if c.FromUserID == fromUserID && c.ToUserID == toUserID {
			return nil, chat.ErrContactExists
		}
	}
	now := r.now()
	c := chat.Contact{ID: r.nextID(), FromUserID: fromUserID, ToUserID: toUserID, Status: chat.ContactPending, CreatedAt: now, UpdatedAt: now}
	r.contacts[c.ID] = c
	c = r.decorateContact(c)
	return &c, nil
}

func (r *MemoryChatRepository) UpdateContactStatus(_ context.Context, id int64, status chat.ContactStatus) (*chat.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contacts[id]
	if !ok {
		return nil, chat.ErrContactNotFound
	}
	c.Status = status
	c.UpdatedAt = r.now()
	r.contacts[id] = c
	c = r.decorateContact(c)
	return &c, nil
}

func (r *MemoryChatRepository) DeleteContact(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.contacts[id]; !ok {
		return chat.ErrContactNotFound
	}
	delete(r.contacts, id)
	return nil
}

func (r *MemoryChatRepository) listContacts(keep func(chat.Contact) bool) []chat.Contact {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []chat.Contact
	for _, c := range r.contacts {
		if keep(c) {
			out = append(out, r.decorateContact(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *MemoryChatRepository) ListAcceptedContacts(_ context.Context, userID int64) ([]chat.Contact, error) {
	return r.listContacts(func(c chat.Contact) bool {
		return c.Status == chat.ContactAccepted && c.Involves(userID)
	}), nil
}

func (r *MemoryChatRepository) ListPendingContacts(_ context.Context, toUserID int64) ([]chat.Contact, error) {
	return r.listContacts(func(c chat.Contact) bool {
		return c.Status == chat.ContactPending && c.ToUserID == toUserID
	}), nil
}

// ===================== Invitations =====================

func (r *MemoryChatRepository) decorateInvitation(g chat.GroupInvitation) chat.GroupInvitation {
	g.ConversationName = r.conversations[g.ConversationID].Name
	return g
}

func (r *MemoryChatRepository) GetInvitation(_ context.Context, id int64) (*chat.GroupInvitation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.invitations[id]
	if !ok {
		return nil, chat.ErrInvitationNotFound
	}
	g = r.decorateInvitation(g)
	return &g, nil
}

func (r *MemoryChatRepository) FindInvitation(_ context.Context, conversationID, toUserID int64) (*chat.GroupInvitation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, g := range r.invitations {
		if g.ConversationID == conversationID && g.ToUserID == toUserID {
			g = r.decorateInvitation(g)
			return &g, nil
		}
	}
	return nil, chat.ErrInvitationNotFound
}

func (r *MemoryChatRepository) CreateInvitation(_ context.Context, conversationID, fromUserID, toUserID int64) (*chat.GroupInvitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conversations[conversationID]; !ok {
		return nil, chat.ErrConversationNotFound
	}
	for _, g := range r.invitations {
		if g.ConversationID == conversationID && g.ToUserID == toUserID {
			return nil, chat.ErrInvitationExists
		}
	}
	now := r.now()
	g := chat.GroupInvitation{
		ID:             r.nextID(),
		ConversationID: conversationID,
		FromUserID:     fromUserID,
		ToUserID:       toUserID,
		Status:         chat.InvitationPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	r.invitations[g.ID] = g
	g = r.decorateInvitation(g)
	return &g, nil
}

func (r *MemoryChatRepository) AcceptInvitation(_ context.Context, id int64) (*chat.GroupInvitation, *chat.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.invitations[id]
	if !ok {
		return nil, nil, chat.ErrInvitationNotFound
	}
	g.Status = chat.InvitationAccepted
	g.UpdatedAt = r.now()
	r.invitations[id] = g
	m := r.addMembershipLocked(g.ConversationID, g.ToUserID, false)
	g = r.decorateInvitation(g)
	return &g, &m, nil
}

func (r *MemoryChatRepository) UpdateInvitationStatus(_ context.Context, id int64, status chat.InvitationStatus) (*chat.GroupInvitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.invitations[id]
	if !ok {
		return nil, chat.ErrInvitationNotFound
	}
	g.Status = status
	g.UpdatedAt = r.now()
	r.invitations[id] = g
	g = r.decorateInvitation(g)
	return &g, nil
}

func (r *MemoryChatRepository) ListPendingInvitations(_ context.Context, toUserID int64) ([]chat.GroupInvitation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []chat.GroupInvitation
	for _, g := range r.invitations {
		if g.ToUserID == toUserID && g.Status == chat.InvitationPending {
			out = append(out, r.decorateInvitation(g))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ===================== Users =====================

func (r *MemoryChatRepository) FindUserByID(_ context.Context, id int64) (*chat.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, chat.ErrUserNotFound
	}
	return &u, nil
}

func (r *MemoryChatRepository) FindUserByUsername(_ context.Context, username string) (*chat.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == strings.TrimSpace(username) {
			uu := u
			return &uu, nil
		}
	}
	return nil, chat.ErrUserNotFound
}

func (r *MemoryChatRepository) ListUsers(_ context.Context) ([]chat.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]chat.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}
