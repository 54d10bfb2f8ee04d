package models

import (
	"strings"
	"time"
)

// Action is a normalized audit action tag. The vocabulary is closed; unknown
// tags are coerced to ActionOther instead of being rejected, so logging can
// never fail the operation that triggered it.
type Action string

const (
	ActionLogin         Action = "login"
	ActionLogout        Action = "logout"
	ActionAdd           Action = "add"
	ActionUpdate        Action = "update"
	ActionDelete        Action = "delete"
	ActionView          Action = "view"
	ActionAnonymize     Action = "anonymize"
	ActionAnonymization Action = "anonymization"
	ActionExport        Action = "export"
	ActionBackup        Action = "backup"
	ActionDecrypt       Action = "decrypt"
	ActionRead          Action = "read"
	ActionGDPRDelete    Action = "gdpr_delete"
	ActionOther         Action = "other"
)

var validActions = map[Action]struct{}{
	ActionLogin:         {},
	ActionLogout:        {},
	ActionAdd:           {},
	ActionUpdate:        {},
	ActionDelete:        {},
	ActionView:          {},
	ActionAnonymize:     {},
	ActionAnonymization: {},
	ActionExport:        {},
	ActionBackup:        {},
	ActionDecrypt:       {},
	ActionRead:          {},
	ActionGDPRDelete:    {},
	ActionOther:         {},
}

// NormalizeAction lowercases and trims s and maps anything outside the
// vocabulary to ActionOther.
func NormalizeAction(s string) Action {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := validActions[a]; ok {
		return a
	}
	return ActionOther
}

// AuditEntry is one append-only audit row. ActorID is nil for anonymous or
// system actions. Role is a free label here ("system", "unknown" or a user
// role) because failed access attempts are recorded for actors that have no
// account.
type AuditEntry struct {
	ID        int64
	ActorID   *string
	Role      string
	Action    Action
	Timestamp time.Time
	Detail    string
}
