package repository

import (
	"context"

	chat "go-chatline/internal/pkg/chat/application/domain"
)

// UserRepository reads accounts. Account creation and credentials live in the
// identity provider; the chat store only resolves ids and usernames.
type UserRepository interface {
	FindUserByID(ctx context.Context, id int64) (*chat.User, error)
	FindUserByUsername(ctx context.Context, username string) (*chat.User, error)
	ListUsers(ctx context.Context) ([]chat.User, error)
}
