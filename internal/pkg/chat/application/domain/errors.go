package chat

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every domain error wraps exactly one of these so callers can
// classify with errors.Is.
var (
	ErrUnauthenticated = errors.New("chat: unauthenticated")
	ErrNotFound        = errors.New("chat: not found")
	ErrForbidden       = errors.New("chat: forbidden")
	ErrValidation      = errors.New("chat: validation failed")
	ErrConflict        = errors.New("chat: conflict")
)

var (
	ErrConversationNotFound = fmt.Errorf("%w: conversation does not exist", ErrNotFound)
	ErrMembershipNotFound   = fmt.Errorf("%w: membership does not exist", ErrNotFound)
	ErrUserNotFound         = fmt.Errorf("%w: user does not exist", ErrNotFound)
	ErrContactNotFound      = fmt.Errorf("%w: contact does not exist", ErrNotFound)
	ErrInvitationNotFound   = fmt.Errorf("%w: invitation does not exist", ErrNotFound)

	ErrNotParticipant = fmt.Errorf("%w: user is not a member of the conversation", ErrForbidden)
	ErrNotInContact   = fmt.Errorf("%w: cannot send message, you are no longer in contact with this user", ErrForbidden)
	ErrContactMissing = fmt.Errorf("%w: you must be in contact with this user", ErrForbidden)
	ErrNotAdmin       = fmt.Errorf("%w: only admins can invite", ErrForbidden)
	ErrAdminJoinOnly  = fmt.Errorf("%w: only a group admin can add members", ErrForbidden)
	ErrNotRecipient   = fmt.Errorf("%w: only the recipient can answer", ErrForbidden)
	ErrNotContactSide = fmt.Errorf("%w: user is not part of this contact", ErrForbidden)

	ErrEmptyMessage       = fmt.Errorf("%w: content is required", ErrValidation)
	ErrMissingIdentifiers = fmt.Errorf("%w: conversation and sender are required", ErrValidation)
	ErrNameRequired       = fmt.Errorf("%w: name is required", ErrValidation)
	ErrUsernameRequired   = fmt.Errorf("%w: username is required", ErrValidation)
	ErrSelfTarget         = fmt.Errorf("%w: cannot target yourself", ErrValidation)
	ErrNotGroup           = fmt.Errorf("%w: conversation is not a group", ErrValidation)
	ErrInvalidKind        = fmt.Errorf("%w: unknown conversation type", ErrValidation)
	ErrInvalidGroupName   = fmt.Errorf("%w: group name cannot be only digits", ErrValidation)

	ErrDuplicateGroupName = fmt.Errorf("%w: a group with this name already exists", ErrConflict)
	ErrContactExists      = fmt.Errorf("%w: a request already exists", ErrConflict)
	ErrInvitationExists   = fmt.Errorf("%w: an invitation already exists", ErrConflict)
	ErrAlreadyMember      = fmt.Errorf("%w: user is already a member", ErrConflict)
	ErrInvalidTransition  = fmt.Errorf("%w: status change not allowed", ErrConflict)
)

// IsDomainError reports whether err carries one of the error kinds above.
func IsDomainError(err error) bool {
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

var kinds = []error{ErrUnauthenticated, ErrNotFound, ErrForbidden, ErrValidation, ErrConflict}

// PublicMessage returns the client-facing text of a domain error without its
// kind prefix. Errors that carry no kind are reported as internal.
func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	s := err.Error()
	for _, kind := range kinds {
		if !errors.Is(err, kind) {
			continue
		}
		prefix := kind.Error() + ": "
		if i := strings.Index(s, prefix); i >= 0 {
			return s[i+len(prefix):]
		}
		return strings.TrimPrefix(kind.Error(), "chat: ")
	}
	return "internal error"
}
