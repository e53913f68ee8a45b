package domain

import (
	"fmt"
	"time"
)

// Network origin tags. Posts relayed in from a syndicated feed get trimmed
// and permalinked differently from native posts.
const (
	NetworkNative = "mimus"
	NetworkFeed   = "feed"
	NetworkOStatus = "ostatus"
)

type Post struct {
	Id              int64
	Guid            string
	Uri             string
	ParentId        int64  // thread root id, equals Id for root posts
	ThreadParentUri string // logical parent reference, may point outside the local id space
	AuthorId        int64
	OwnerId         int64 // differs from AuthorId when relayed through a group
	Body            string // markup text
	Title           string
	CreatedAt       time.Time
	AllowUsers      string
	AllowGroups     string
	DenyUsers       string
	DenyGroups      string
	Starred         bool
	NetworkOrigin   string
	Coordinates     string // optional "lat long" pair
	SourceClient    string
}

// Private reports whether any access-control list is non-empty,
// which marks the post non-public.
func (p *Post) Private() bool {
	return p.AllowUsers != "" || p.AllowGroups != "" || p.DenyUsers != "" || p.DenyGroups != ""
}

// IsThreadRoot reports whether the post starts its own thread.
func (p *Post) IsThreadRoot() bool {
	return p.Id == p.ParentId
}

func (p *Post) ToString() string {
	return fmt.Sprintf("\n\tId: %d \n\tAuthorId: %d \n\tBody: %s \n\tCreatedAt: %s)", p.Id, p.AuthorId, p.Body, p.CreatedAt)
}

type SavePost struct {
	AuthorId        int64
	Body            string
	Title           string
	ThreadParentUri string
	NetworkOrigin   string
	Coordinates     string
	SourceClient    string
}
