package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/vanline/support-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller. Whether the caller holds
// administrator rights is resolved per operation by the service layer, not
// here.
type Principal struct {
	SubjectID   string
	SubjectType SubjectType
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

// RequesterID returns the caller's platform id or an unauthorized error when
// the route was reached without a principal.
func RequesterID(c *fiber.Ctx) (string, error) {
	principal, ok := PrincipalFromContext(c)
	if !ok || principal.SubjectID == "" {
		return "", apperrors.NewUnauthorized("authentication required")
	}
	return principal.SubjectID, nil
}
