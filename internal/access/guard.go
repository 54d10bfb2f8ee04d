package access

import (
	"context"
	"time"

	"github.com/clinicore/clinicore/internal/audit"
	"github.com/clinicore/clinicore/internal/common"
	"github.com/clinicore/clinicore/internal/models"
)

// Guard authorizes sessions against an allowed-role list. Every denial is
// written to the audit log before it is reported, so failed access attempts
// stay traceable even though callers only see a uniform "access denied".
type Guard struct {
	secretKey []byte
	validity  time.Duration
	audit     *audit.Recorder
}

func NewGuard(secretKey []byte, validity time.Duration, audit *audit.Recorder) *Guard {
	return &Guard{secretKey: secretKey, validity: validity, audit: audit}
}

// IssueSession signs a session token for an authenticated user.
func (g *Guard) IssueSession(user *models.User) (string, error) {
	return IssueSession(user, g.secretKey, g.validity)
}

// Authorize resolves the session and checks its role against allowedRoles
// (case-insensitively). It returns the principal on success.
//
// Denials:
//   - no or invalid session: audited with a nil actor and the "unknown"
//     role, then common.ErrNotAuthenticated;
//   - valid session, role not allowed: audited with the real actor, then
//     common.ErrInsufficientRole.
func (g *Guard) Authorize(ctx context.Context, session string, allowedRoles ...models.Role) (*Principal, error) {
	if session == "" {
		g.audit.Record(ctx, nil, models.ActorRoleUnknown, "login", "ACCESS_DENIED: not logged in")
		return nil, common.ErrNotAuthenticated
	}

	principal, err := ParseSession(session, g.secretKey)
	if err != nil {
		g.audit.Record(ctx, nil, models.ActorRoleUnknown, "login", "ACCESS_DENIED: invalid session")
		return nil, common.ErrNotAuthenticated
	}

	for _, role := range allowedRoles {
		if principal.Role.Matches(string(role)) {
			return principal, nil
		}
	}

	g.audit.Record(ctx, &principal.ID, string(principal.Role), "view", "ACCESS_DENIED: insufficient role")
	return nil, common.ErrInsufficientRole
}
