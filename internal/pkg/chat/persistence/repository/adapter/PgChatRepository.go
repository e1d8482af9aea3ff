package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	chat "go-chatline/internal/pkg/chat/application/domain"
	repository "go-chatline/internal/pkg/chat/persistence/repository/port"
)

const uniqueViolation = "23505"

type PgChatRepository struct {
	pool *pgxpool.Pool
}

func NewPgChatRepository(pool *pgxpool.Pool) *PgChatRepository {
	return &PgChatRepository{pool: pool}
}

var _ repository.ChatRepository = (*PgChatRepository)(nil)

var errNilPool = errors.New("PgChatRepository: nil pool")

func (r *PgChatRepository) ready() error {
	if r == nil || r.pool == nil {
		return errNilPool
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func notFound(err error, target error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return target
	}
	return err
}

// ===================== Conversations =====================

const conversationColumns = `c.id, c.type, c.name, c.created_by, c.created_at`

func scanConversation(row rowScanner) (*chat.Conversation, error) {
	var (
		c    chat.Conversation
		kind string
	)
	if err := row.Scan(&c.ID, &kind, &c.Name, &c.CreatedBy, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Kind = chat.ConversationKind(kind)
	return &c, nil
}

func collectConversations(rows pgx.Rows) ([]chat.Conversation, error) {
	defer rows.Close()
	var out []chat.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *PgChatRepository) GetConversation(ctx context.Context, id int64) (*chat.Conversation, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	c, err := scanConversation(r.pool.QueryRow(ctx,
		`SELECT `+conversationColumns+` FROM conversations c WHERE c.id = $1`, id))
	if err != nil {
		return nil, notFound(err, chat.ErrConversationNotFound)
	}
	return c, nil
}

func (r *PgChatRepository) FindGroupsByName(ctx context.Context, name string) ([]chat.Conversation, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+conversationColumns+`
		FROM conversations c
		WHERE c.type = 'group' AND c.name = $1
		ORDER BY c.id
	`, name)
	if err != nil {
		return nil, err
	}
	return collectConversations(rows)
}

func (r *PgChatRepository) CreateGroup(ctx context.Context, name string, creatorID int64) (*chat.Conversation, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	var conv *chat.Conversation
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		c, err := scanConversation(tx.QueryRow(ctx, `
			INSERT INTO conversations AS c (name, type, created_by)
			VALUES ($1, 'group', $2)
			RETURNING `+conversationColumns, name, creatorID))
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO memberships (conversation_id, user_id, is_admin) VALUES ($1, $2, TRUE)`,
			c.ID, creatorID); err != nil {
			return err
		}
		conv = c
		return nil
	})
	if isUniqueViolation(err) {
		return nil, chat.ErrDuplicateGroupName
	}
	if err != nil {
		return nil, err
	}
	return conv, nil
}

func (r *PgChatRepository) FindDirect(ctx context.Context, a, b int64) (*chat.Conversation, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	c, err := scanConversation(r.pool.QueryRow(ctx, `
		SELECT `+conversationColumns+`
		FROM conversations c
		JOIN memberships m1 ON m1.conversation_id = c.id AND m1.user_id = $1
		JOIN memberships m2 ON m2.conversation_id = c.id AND m2.user_id = $2
		WHERE c.type = 'direct'
		ORDER BY c.id
		LIMIT 1
	`, a, b))
	if err != nil {
		return nil, notFound(err, chat.ErrConversationNotFound)
	}
	return c, nil
}

func (r *PgChatRepository) CreateDirect(ctx context.Context, creatorID, otherID int64) (*chat.Conversation, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	var conv *chat.Conversation
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		c, err := scanConversation(tx.QueryRow(ctx, `
			INSERT INTO conversations AS c (type, created_by)
			VALUES ('direct', $1)
			RETURNING `+conversationColumns, creatorID))
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO memberships (conversation_id, user_id, is_admin)
			VALUES ($1, $2, TRUE), ($1, $3, FALSE)
		`, c.ID, creatorID, otherID); err != nil {
			return err
		}
		conv = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return conv, nil
}

func (r *PgChatRepository) ListConversationsForUser(ctx context.Context, userID int64, kind chat.ConversationKind) ([]chat.Conversation, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+conversationColumns+`
		FROM conversations c
		JOIN memberships m ON m.conversation_id = c.id
		WHERE m.user_id = $1 AND ($2::text = '' OR c.type = $2::text)
		ORDER BY c.created_at DESC, c.id DESC
	`, userID, string(kind))
	if err != nil {
		return nil, err
	}
	return collectConversations(rows)
}

// ===================== Memberships =====================

const membershipSelect = `
	SELECT m.id, m.conversation_id, m.user_id, u.username, m.is_admin, m.joined_at, m.last_read_at
	FROM memberships m
	JOIN users u ON u.id = m.user_id`

func scanMembership(row rowScanner) (*chat.Membership, error) {
	var m chat.Membership
	if err := row.Scan(&m.ID, &m.ConversationID, &m.UserID, &m.Username, &m.IsAdmin, &m.JoinedAt, &m.LastReadAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func collectMemberships(rows pgx.Rows) ([]chat.Membership, error) {
	defer rows.Close()
	var out []chat.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *PgChatRepository) GetMembership(ctx context.Context, conversationID, userID int64) (*chat.Membership, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	m, err := scanMembership(r.pool.QueryRow(ctx,
		membershipSelect+` WHERE m.conversation_id = $1 AND m.user_id = $2`, conversationID, userID))
	if err != nil {
		return nil, notFound(err, chat.ErrMembershipNotFound)
	}
	return m, nil
}

func (r *PgChatRepository) GetOtherMembership(ctx context.Context, conversationID, excludingUserID int64) (*chat.Membership, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	m, err := scanMembership(r.pool.QueryRow(ctx,
		membershipSelect+` WHERE m.conversation_id = $1 AND m.user_id <> $2 ORDER BY m.id LIMIT 1`,
		conversationID, excludingUserID))
	if err != nil {
		return nil, notFound(err, chat.ErrMembershipNotFound)
	}
	return m, nil
}

func (r *PgChatRepository) AddMembership(ctx context.Context, conversationID, userID int64, isAdmin bool) (*chat.Membership, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	if _, err := r.pool.Exec(ctx, `
		INSERT INTO memberships (conversation_id, user_id, is_admin)
		VALUES ($1, $2, $3)
		ON CONFLICT (conversation_id, user_id) DO NOTHING
	`, conversationID, userID, isAdmin); err != nil {
		return nil, err
	}
	return r.GetMembership(ctx, conversationID, userID)
}

func (r *PgChatRepository) ListMembers(ctx context.Context, conversationID int64) ([]chat.Membership, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, membershipSelect+` WHERE m.conversation_id = $1 ORDER BY m.joined_at, m.id`, conversationID)
	if err != nil {
		return nil, err
	}
	return collectMemberships(rows)
}

func (r *PgChatRepository) ListMembershipsForUser(ctx context.Context, userID int64) ([]chat.Membership, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, membershipSelect+` WHERE m.user_id = $1 ORDER BY m.conversation_id`, userID)
	if err != nil {
		return nil, err
	}
	return collectMemberships(rows)
}

func (r *PgChatRepository) SetLastRead(ctx context.Context, membershipID int64, at time.Time) error {
	if err := r.ready(); err != nil {
		return err
	}
	ct, err := r.pool.Exec(ctx, `UPDATE memberships SET last_read_at = $2 WHERE id = $1`, membershipID, at)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return chat.ErrMembershipNotFound
	}
	return nil
}

// ===================== Messages =====================

func scanMessage(row rowScanner) (*chat.Message, error) {
	var m chat.Message
	if err := row.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.SenderUsername, &m.Content, &m.Attachment, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMessage runs as a single autocommitted statement, so the row is
// visible to other readers once it returns.
func (r *PgChatRepository) CreateMessage(ctx context.Context, m chat.Message) (*chat.Message, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	return scanMessage(r.pool.QueryRow(ctx, `
		WITH ins AS (
			INSERT INTO messages (conversation_id, sender_id, content, attachment)
			VALUES ($1, $2, $3, $4)
			RETURNING id, conversation_id, sender_id, content, attachment, created_at
		)
		SELECT ins.id, ins.conversation_id, ins.sender_id, u.username, ins.content, ins.attachment, ins.created_at
		FROM ins
		JOIN users u ON u.id = ins.sender_id
	`, m.ConversationID, m.SenderID, m.Content, m.Attachment))
}

func (r *PgChatRepository) ListMessages(ctx context.Context, conversationID int64, limit int) ([]chat.Message, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, conversation_id, sender_id, username, content, attachment, created_at
		FROM (
			SELECT m.id, m.conversation_id, m.sender_id, u.username, m.content, m.attachment, m.created_at
			FROM messages m
			JOIN users u ON u.id = m.sender_id
			WHERE m.conversation_id = $1
			ORDER BY m.created_at DESC, m.id DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC, id ASC
	`, conversationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []chat.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, *m)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return msgs, nil
}

func (r *PgChatRepository) CountMessagesAfter(ctx context.Context, conversationID int64, after time.Time) (int, error) {
	if err := r.ready(); err != nil {
		return 0, err
	}
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM messages WHERE conversation_id = $1 AND created_at > $2`,
		conversationID, after).Scan(&n)
	return n, err
}

// ===================== Contacts =====================

const contactSelect = `
	SELECT c.id, c.from_user_id, fu.username, c.to_user_id, tu.username, c.status, c.created_at, c.updated_at
	FROM contacts c
	JOIN users fu ON fu.id = c.from_user_id
	JOIN users tu ON tu.id = c.to_user_id`

func scanContact(row rowScanner) (*chat.Contact, error) {
	var (
		c      chat.Contact
		status string
	)
	if err := row.Scan(&c.ID, &c.FromUserID, &c.FromUsername, &c.ToUserID, &c.ToUsername, &status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Status = chat.ContactStatus(status)
	return &c, nil
}

func collectContacts(rows pgx.Rows) ([]chat.Contact, error) {
	defer rows.Close()
	var out []chat.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *PgChatRepository) HasAcceptedContact(ctx context.Context, a, b int64) (bool, error) {
	if err := r.ready(); err != nil {
		return false, err
	}
	var ok bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM contacts
			WHERE status = 'accepted'
			  AND ((from_user_id = $1 AND to_user_id = $2) OR (from_user_id = $2 AND to_user_id = $1))
		)
	`, a, b).Scan(&ok)
	return ok, err
}

func (r *PgChatRepository) GetContactBetween(ctx context.Context, a, b int64) (*chat.Contact, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	c, err := scanContact(r.pool.QueryRow(ctx, contactSelect+`
		WHERE (c.from_user_id = $1 AND c.to_user_id = $2) OR (c.from_user_id = $2 AND c.to_user_id = $1)
		ORDER BY c.id
		LIMIT 1
	`, a, b))
	if err != nil {
		return nil, notFound(err, chat.ErrContactNotFound)
	}
	return c, nil
}

func (r *PgChatRepository) GetContact(ctx context.Context, id int64) (*chat.Contact, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	c, err := scanContact(r.pool.QueryRow(ctx, contactSelect+` WHERE c.id = $1`, id))
	if err != nil {
		return nil, notFound(err, chat.ErrContactNotFound)
	}
	return c, nil
}

func (r *PgChatRepository) CreateContact(ctx context.Context, fromUserID, toUserID int64) (*chat.Contact, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO contacts (from_user_id, to_user_id, status)
		VALUES ($1, $2, 'pending')
		RETURNING id
	`, fromUserID, toUserID).Scan(&id)
	if isUniqueViolation(err) {
		return nil, chat.ErrContactExists
	}
	if err != nil {
		return nil, err
	}
	return r.GetContact(ctx, id)
}

func (r *PgChatRepository) UpdateContactStatus(ctx context.Context, id int64, status chat.ContactStatus) (*chat.Contact, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	ct, err := r.pool.Exec(ctx, `UPDATE contacts SET status = $2, updated_at = now() WHERE id = $1`, id, string(status))
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		return nil, chat.ErrContactNotFound
	}
	return r.GetContact(ctx, id)
}

func (r *PgChatRepository) DeleteContact(ctx context.Context, id int64) error {
	if err := r.ready(); err != nil {
		return err
	}
	ct, err := r.pool.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return chat.ErrContactNotFound
	}
	return nil
}

func (r *PgChatRepository) ListAcceptedContacts(ctx context.Context, userID int64) ([]chat.Contact, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, contactSelect+`
		WHERE c.status = 'accepted' AND (c.from_user_id = $1 OR c.to_user_id = $1)
		ORDER BY c.updated_at DESC, c.id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return collectContacts(rows)
}

func (r *PgChatRepository) ListPendingContacts(ctx context.Context, toUserID int64) ([]chat.Contact, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, contactSelect+`
		WHERE c.status = 'pending' AND c.to_user_id = $1
		ORDER BY c.created_at, c.id
	`, toUserID)
	if err != nil {
		return nil, err
	}
	return collectContacts(rows)
}

// ===================== Invitations =====================

const invitationSelect = `
	SELECT i.id, i.conversation_id, c.name, i.from_user_id, i.to_user_id, i.status, i.created_at, i.updated_at
	FROM group_invitations i
	JOIN conversations c ON c.id = i.conversation_id`

func scanInvitation(row rowScanner) (*chat.GroupInvitation, error) {
	var (
		g      chat.GroupInvitation
		status string
	)
	if err := row.Scan(&g.ID, &g.ConversationID, &g.ConversationName, &g.FromUserID, &g.ToUserID, &status, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	g.Status = chat.InvitationStatus(status)
	return &g, nil
}

func (r *PgChatRepository) GetInvitation(ctx context.Context, id int64) (*chat.GroupInvitation, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	g, err := scanInvitation(r.pool.QueryRow(ctx, invitationSelect+` WHERE i.id = $1`, id))
	if err != nil {
		return nil, notFound(err, chat.ErrInvitationNotFound)
	}
	return g, nil
}

func (r *PgChatRepository) FindInvitation(ctx context.Context, conversationID, toUserID int64) (*chat.GroupInvitation, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	g, err := scanInvitation(r.pool.QueryRow(ctx,
		invitationSelect+` WHERE i.conversation_id = $1 AND i.to_user_id = $2`, conversationID, toUserID))
	if err != nil {
		return nil, notFound(err, chat.ErrInvitationNotFound)
	}
	return g, nil
}

func (r *PgChatRepository) CreateInvitation(ctx context.Context, conversationID, fromUserID, toUserID int64) (*chat.GroupInvitation, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO group_invitations (conversation_id, from_user_id, to_user_id, status)
		VALUES ($1, $2, $3, 'pending')
		RETURNING id
	`, conversationID, fromUserID, toUserID).Scan(&id)
	if isUniqueViolation(err) {
		return nil, chat.ErrInvitationExists
	}
	if err != nil {
		return nil, err
	}
	return r.GetInvitation(ctx, id)
}

func (r *PgChatRepository) AcceptInvitation(ctx context.Context, id int64) (*chat.GroupInvitation, *chat.Membership, error) {
	if err := r.ready(); err != nil {
		return nil, nil, err
	}
	var conversationID, userID int64
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
			UPDATE group_invitations SET status = 'accepted', updated_at = now()
			WHERE id = $1
			RETURNING conversation_id, to_user_id
		`, id).Scan(&conversationID, &userID); err != nil {
			return notFound(err, chat.ErrInvitationNotFound)
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO memberships (conversation_id, user_id, is_admin)
			VALUES ($1, $2, FALSE)
			ON CONFLICT (conversation_id, user_id) DO NOTHING
		`, conversationID, userID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	inv, err := r.GetInvitation(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	m, err := r.GetMembership(ctx, conversationID, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("load membership after accept: %w", err)
	}
	return inv, m, nil
}

func (r *PgChatRepository) UpdateInvitationStatus(ctx context.Context, id int64, status chat.InvitationStatus) (*chat.GroupInvitation, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	ct, err := r.pool.Exec(ctx, `UPDATE group_invitations SET status = $2, updated_at = now() WHERE id = $1`, id, string(status))
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		return nil, chat.ErrInvitationNotFound
	}
	return r.GetInvitation(ctx, id)
}

func (r *PgChatRepository) ListPendingInvitations(ctx context.Context, toUserID int64) ([]chat.GroupInvitation, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, invitationSelect+`
		WHERE i.to_user_id = $1 AND i.status = 'pending'
		ORDER BY i.created_at, i.id
	`, toUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []chat.GroupInvitation
	for rows.Next() {
		g, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

// ===================== Users =====================

func (r *PgChatRepository) FindUserByID(ctx context.Context, id int64) (*chat.User, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	var u chat.User
	err := r.pool.QueryRow(ctx, `SELECT id, username FROM users WHERE id = $1`, id).Scan(&u.ID, &u.Username)
	if err != nil {
		return nil, notFound(err, chat.ErrUserNotFound)
	}
	return &u, nil
}

func (r *PgChatRepository) FindUserByUsername(ctx context.Context, username string) (*chat.User, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	var u chat.User
	err := r.pool.QueryRow(ctx, `SELECT id, username FROM users WHERE username = $1`, username).Scan(&u.ID, &u.Username)
	if err != nil {
		return nil, notFound(err, chat.ErrUserNotFound)
	}
	return &u, nil
}

func (r *PgChatRepository) ListUsers(ctx context.Context) ([]chat.User, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `SELECT id, username FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []chat.User
	for rows.Next() {
		var u chat.User
		if err := rows.Scan(&u.ID, &u.Username); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
