package usecase

import (
	"errors"
	"fmt"

	chat "go-chatline/internal/pkg/chat/application/domain"
)

// ErrPersistence indicates an infrastructure/repository failure inside a use case
var ErrPersistence = errors.New("chat use case persistence error")

// persistenceErr passes domain errors through and wraps everything else.
func persistenceErr(err error) error {
	if err == nil || chat.IsDomainError(err) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}
