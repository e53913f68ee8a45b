package status

import "github.com/mimusdev/mimus/domain"

// DefaultCount is the page size applied when a listing request does not
// name one.
const DefaultCount = 20

// ParseWindow turns the client paging parameters into a deterministic,
// monotonic window over an id-ordered result set. The offset is the page
// number times the page size, with the page floored at zero.
func ParseWindow(count int, page int, sinceId int64, maxId int64) domain.Window {
	if count <= 0 {
		count = DefaultCount
	}

	p := page
	if p < 0 {
		p = 0
	}

	if sinceId < 0 {
		sinceId = 0
	}
	if maxId < 0 {
		maxId = 0
	}

	return domain.Window{
		SinceId: sinceId,
		MaxId:   maxId,
		Offset:  p * count,
		Limit:   count,
	}
}

// ResolveConversationRoot maps any post id inside a thread to the thread
// root id, so that conversation paging always operates over one full
// thread. The second return is false when the id is unknown.
func ResolveConversationRoot(id int64, store Store) (int64, bool) {
	err, post := store.ReadPostById(id)
	if err != nil || post == nil {
		return 0, false
	}
	if post.ParentId == 0 {
		return post.Id, true
	}
	return post.ParentId, true
}
