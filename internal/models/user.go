package models

import "time"

// User is an application account. Credential is the opaque password artifact
// produced by the credential package; its internal format is not interpreted
// outside of it.
type User struct {
	ID         string
	Username   string
	Credential string
	Role       Role
	CreatedAt  time.Time
}
