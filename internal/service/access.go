package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/vanline/support-service/internal/domain"
	"github.com/vanline/support-service/internal/repository"
	apperrors "github.com/vanline/support-service/pkg/util"
)

// requesterContext is the resolved identity of a caller for one operation.
// A requester missing from the user directory resolves to the zero context:
// not an admin, existing only through ticket ownership.
type requesterContext struct {
	id   string
	user *domain.User
}

// IsAdmin reports whether the requester holds the administrator role.
func (r requesterContext) IsAdmin() bool {
	return r.user.IsAdmin()
}

// Exists reports whether the requester has a user directory record. Drivers
// never do; they still own their tickets.
func (r requesterContext) Exists() bool {
	return r.user != nil
}

// resolveRequester performs the single directory lookup an operation spends
// on the caller. An absent record is not an error here; the access check
// denies on its own terms.
func resolveRequester(ctx context.Context, users repository.UserRepository, requesterID string) (requesterContext, error) {
	user, err := users.GetByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return requesterContext{id: requesterID}, nil
		}
		return requesterContext{}, apperrors.MapError(err)
	}
	return requesterContext{id: requesterID, user: user}, nil
}

// canAccessTicket is the one authorization rule every ticket read and the
// add-message operation share: administrators may touch any ticket, everyone
// else only their own.
func canAccessTicket(req requesterContext, ticket *domain.Ticket) bool {
	return req.IsAdmin() || ticket.ActorID == req.id
}
