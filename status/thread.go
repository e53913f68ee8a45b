package status

import (
	"github.com/mimusdev/mimus/domain"
)

// InReplyTo carries the resolved reply target of a post.
type InReplyTo struct {
	StatusId   int64
	UserId     int64
	ScreenName string
}

// ResolveThread determines the in-reply-to target of a post by walking its
// parent pointers. Returns nil for thread roots, and also for the data
// anomaly where the resolved target would be the post itself: a status must
// never reference itself as its reply parent.
func ResolveThread(post *domain.Post, store Store) *InReplyTo {
	if post.ThreadParentUri == post.Uri || post.ParentId == post.Id {
		return nil
	}

	reply := &InReplyTo{}

	err, parent := store.ReadPostByUri(post.ThreadParentUri)
	if err != nil || parent == nil {
		// URI lookup failed, fall back to the stored parent id.
		_, parent = store.ReadPostById(post.ParentId)
	}

	if parent != nil {
		reply.StatusId = parent.Id

		err, author := store.ReadActorById(parent.AuthorId)
		if err == nil && author != nil {
			reply.UserId = author.Id
			reply.ScreenName = author.Handle
		} else {
			// Author lookup failed, show only the numeric id.
			reply.UserId = parent.AuthorId
		}
	} else {
		reply.StatusId = post.ParentId
	}

	if reply.StatusId == post.Id {
		return nil
	}
	if reply.StatusId == 0 {
		return nil
	}

	return reply
}
