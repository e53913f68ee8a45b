package status

import (
	"testing"

	"github.com/mimusdev/mimus/domain"
)

func TestResolveThreadRoot(t *testing.T) {
	store := newFakeStore()
	post := &domain.Post{Id: 1, ParentId: 1, Uri: "https://social.example/posts/a", ThreadParentUri: "https://social.example/posts/a"}

	if reply := ResolveThread(post, store); reply != nil {
		t.Errorf("thread root must have no reply target, got %+v", reply)
	}
}

func TestResolveThreadByUri(t *testing.T) {
	store := newFakeStore()
	store.posts[1] = &domain.Post{Id: 1, ParentId: 1, AuthorId: 7, Uri: "https://social.example/posts/a", ThreadParentUri: "https://social.example/posts/a"}
	store.actors[7] = &domain.Actor{Id: 7, Handle: "alice"}

	post := &domain.Post{Id: 2, ParentId: 1, Uri: "https://social.example/posts/b", ThreadParentUri: "https://social.example/posts/a"}

	reply := ResolveThread(post, store)
	if reply == nil {
		t.Fatal("expected a reply target")
	}
	if reply.StatusId != 1 || reply.UserId != 7 || reply.ScreenName != "alice" {
		t.Errorf("reply = %+v", reply)
	}
}

func TestResolveThreadAuthorLookupFailure(t *testing.T) {
	store := newFakeStore()
	store.posts[1] = &domain.Post{Id: 1, ParentId: 1, AuthorId: 7, Uri: "https://social.example/posts/a"}

	post := &domain.Post{Id: 2, ParentId: 1, Uri: "https://social.example/posts/b", ThreadParentUri: "https://social.example/posts/a"}

	reply := ResolveThread(post, store)
	if reply == nil {
		t.Fatal("expected a reply target")
	}
	if reply.UserId != 7 || reply.ScreenName != "" {
		t.Errorf("author fallback must keep the numeric id only, got %+v", reply)
	}
}

func TestResolveThreadParentIdFallback(t *testing.T) {
	// URI lookup fails, the stored parent id is still emitted.
	store := newFakeStore()
	post := &domain.Post{Id: 5, ParentId: 3, Uri: "https://social.example/posts/e", ThreadParentUri: "https://remote.example/unknown"}

	reply := ResolveThread(post, store)
	if reply == nil {
		t.Fatal("expected a reply target")
	}
	if reply.StatusId != 3 || reply.UserId != 0 {
		t.Errorf("reply = %+v", reply)
	}
}

func TestResolveThreadSelfReferenceGuard(t *testing.T) {
	// The parent uri resolves back to the post itself; the anomaly must
	// clear all in-reply-to fields.
	store := newFakeStore()
	store.posts[4] = &domain.Post{Id: 4, Uri: "https://social.example/posts/x"}

	post := &domain.Post{Id: 4, ParentId: 9, AuthorId: 7, Uri: "https://social.example/posts/d", ThreadParentUri: "https://social.example/posts/x"}
	if reply := ResolveThread(post, store); reply != nil {
		t.Errorf("self-referencing target must be suppressed, got %+v", reply)
	}
}

func TestResolveThreadZeroParent(t *testing.T) {
	store := newFakeStore()
	post := &domain.Post{Id: 6, ParentId: 0, Uri: "https://social.example/posts/f", ThreadParentUri: "https://remote.example/gone"}

	if reply := ResolveThread(post, store); reply != nil {
		t.Errorf("unresolvable zero parent must yield nil, got %+v", reply)
	}
}
