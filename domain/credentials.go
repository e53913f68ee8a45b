package domain

import (
	"fmt"
	"time"
)

const (
	FALSE dbBool = iota
	TRUE
)

type dbBool uint

// Credential is a local login bound to an actor record. The password hash
// serves the basic-auth scheme, the public key PEM the signed-request
// scheme, and the ssh key hash gates the admin console.
type Credential struct {
	Id             int64
	Username       string
	PasswordHash   string
	PublicKeyPem   string
	PrivateKeyPem  string
	SshKeyHash     string
	ActorId        int64
	FirstTimeLogin dbBool
	CreatedAt      time.Time
}

func (c *Credential) ToString() string {
	return fmt.Sprintf("\n\tId: %d \n\tUsername: %s \n\tActorId: %d \n\tCreatedAt: %s)", c.Id, c.Username, c.ActorId, c.CreatedAt)
}
