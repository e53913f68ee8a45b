package domain

import (
	"fmt"
	"time"
)

type RelationState int

const (
	RelationNone RelationState = iota
	RelationFollowing
	RelationFollower
	RelationMutual
)

// Actor is the locally cached profile of a local or remote participant.
type Actor struct {
	Id            int64
	CanonicalUrl  string
	DisplayName   string
	Handle        string // nickname
	AvatarUrl     string
	NetworkOrigin string
	IsSelf        bool // true only for the owning account's own actor record
	Relation      RelationState
	CreatedAt     time.Time
}

func (a *Actor) ToString() string {
	return fmt.Sprintf("\n\tId: %d \n\tHandle: %s \n\tUrl: %s)", a.Id, a.Handle, a.CanonicalUrl)
}
