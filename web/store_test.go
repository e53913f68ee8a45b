package web

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mimusdev/mimus/domain"
	"github.com/mimusdev/mimus/status"
	"github.com/mimusdev/mimus/util"
)

// fakeStore is the in-memory Store behind the gateway tests. Listing
// methods reproduce the id-window semantics of the real queries.
type fakeStore struct {
	posts    map[int64]*domain.Post
	actors   map[int64]*domain.Actor
	creds    map[string]*domain.Credential
	messages map[int64]*domain.DirectMessage
	follows  map[int64][]int64
	nextId   int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		posts:    make(map[int64]*domain.Post),
		actors:   make(map[int64]*domain.Actor),
		creds:    make(map[string]*domain.Credential),
		messages: make(map[int64]*domain.DirectMessage),
		follows:  make(map[int64][]int64),
	}
}

func (f *fakeStore) addActor(handle string) *domain.Actor {
	f.nextId++
	a := &domain.Actor{
		Id:           f.nextId,
		Handle:       handle,
		CanonicalUrl: "https://social.example/users/" + handle,
		CreatedAt:    time.Now(),
	}
	f.actors[a.Id] = a
	return a
}

func (f *fakeStore) addPost(authorId int64, body string) *domain.Post {
	f.nextId++
	p := &domain.Post{
		Id:            f.nextId,
		Uri:           fmt.Sprintf("https://social.example/posts/%d", f.nextId),
		ParentId:      f.nextId,
		AuthorId:      authorId,
		OwnerId:       authorId,
		Body:          body,
		CreatedAt:     time.Now(),
		NetworkOrigin: domain.NetworkNative,
	}
	p.ThreadParentUri = p.Uri
	f.posts[p.Id] = p
	return p
}

func (f *fakeStore) ReadPostById(id int64) (error, *domain.Post) {
	if p, ok := f.posts[id]; ok {
		return nil, p
	}
	return errors.New("post not found"), nil
}

func (f *fakeStore) ReadPostByUri(uri string) (error, *domain.Post) {
	for _, p := range f.posts {
		if p.Uri == uri {
			return nil, p
		}
	}
	return errors.New("post not found"), nil
}

func (f *fakeStore) ReadActorById(id int64) (error, *domain.Actor) {
	if a, ok := f.actors[id]; ok {
		return nil, a
	}
	return errors.New("actor not found"), nil
}

func (f *fakeStore) ReadActorByUrl(url string) (error, *domain.Actor) {
	for _, a := range f.actors {
		if a.CanonicalUrl == url {
			return nil, a
		}
	}
	return errors.New("actor not found"), nil
}

func (f *fakeStore) ReadActorByHandle(handle string) (error, *domain.Actor) {
	for _, a := range f.actors {
		if a.Handle == handle {
			return nil, a
		}
	}
	return errors.New("actor not found"), nil
}

func (f *fakeStore) CreatePost(save *domain.SavePost, baseUrl string) (error, int64) {
	f.nextId++
	p := &domain.Post{
		Id:              f.nextId,
		Uri:             fmt.Sprintf("%s/posts/%d", baseUrl, f.nextId),
		ParentId:        f.nextId,
		AuthorId:        save.AuthorId,
		OwnerId:         save.AuthorId,
		Body:            save.Body,
		Title:           save.Title,
		ThreadParentUri: save.ThreadParentUri,
		CreatedAt:       time.Now(),
		NetworkOrigin:   save.NetworkOrigin,
		Coordinates:     save.Coordinates,
		SourceClient:    save.SourceClient,
	}
	if p.ThreadParentUri == "" {
		p.ThreadParentUri = p.Uri
	} else if err, parent := f.ReadPostByUri(p.ThreadParentUri); err == nil {
		p.ParentId = parent.ParentId
	}
	f.posts[p.Id] = p
	return nil, p.Id
}

func (f *fakeStore) DeletePost(id int64) error {
	delete(f.posts, id)
	return nil
}

func (f *fakeStore) UpdateStarred(id int64, starred bool) error {
	p, ok := f.posts[id]
	if !ok {
		return errors.New("post not found")
	}
	p.Starred = starred
	return nil
}

func (f *fakeStore) listPosts(w domain.Window, ascending bool, keep func(*domain.Post) bool) (error, *[]domain.Post) {
	var all []domain.Post
	for _, p := range f.posts {
		if w.Admit(p.Id) && keep(p) {
			all = append(all, *p)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if ascending {
			return all[i].Id < all[j].Id
		}
		return all[i].Id > all[j].Id
	})

	if w.Offset >= len(all) {
		empty := []domain.Post{}
		return nil, &empty
	}
	all = all[w.Offset:]
	if w.Limit > 0 && len(all) > w.Limit {
		all = all[:w.Limit]
	}
	return nil, &all
}

func (f *fakeStore) ReadPublicTimeline(w domain.Window) (error, *[]domain.Post) {
	return f.listPosts(w, false, func(p *domain.Post) bool { return !p.Private() })
}

func (f *fakeStore) ReadHomeTimeline(actorId int64, w domain.Window) (error, *[]domain.Post) {
	followed := map[int64]bool{actorId: true}
	for _, id := range f.follows[actorId] {
		followed[id] = true
	}
	return f.listPosts(w, false, func(p *domain.Post) bool { return followed[p.AuthorId] })
}

func (f *fakeStore) ReadUserTimeline(actorId int64, w domain.Window) (error, *[]domain.Post) {
	return f.listPosts(w, false, func(p *domain.Post) bool { return p.AuthorId == actorId })
}

func (f *fakeStore) ReadMentions(actorUrl string, actorId int64, w domain.Window) (error, *[]domain.Post) {
	return f.listPosts(w, false, func(p *domain.Post) bool {
		return p.AuthorId != actorId && strings.Contains(p.Body, actorUrl)
	})
}

func (f *fakeStore) ReadConversation(rootId int64, w domain.Window) (error, *[]domain.Post) {
	return f.listPosts(w, true, func(p *domain.Post) bool { return p.ParentId == rootId })
}

func (f *fakeStore) ReadFavorites(ownerId int64, w domain.Window) (error, *[]domain.Post) {
	return f.listPosts(w, false, func(p *domain.Post) bool { return p.Starred && p.OwnerId == ownerId })
}

func (f *fakeStore) CountPostsSince(authorId int64, since time.Time) (error, int) {
	count := 0
	for _, p := range f.posts {
		if p.AuthorId == authorId && p.CreatedAt.After(since) {
			count++
		}
	}
	return nil, count
}

func (f *fakeStore) ReadCredentialByUsername(username string) (error, *domain.Credential) {
	if c, ok := f.creds[username]; ok {
		return nil, c
	}
	return errors.New("credential not found"), nil
}

func (f *fakeStore) CreateDirectMessage(save *domain.SaveDirectMessage, baseUrl string) (error, int64) {
	f.nextId++
	m := &domain.DirectMessage{
		Id:          f.nextId,
		Uri:         fmt.Sprintf("%s/messages/%d", baseUrl, f.nextId),
		ParentUri:   save.ReplyToUri,
		SenderId:    save.SenderId,
		RecipientId: save.RecipientId,
		Title:       save.Title,
		Body:        save.Body,
		CreatedAt:   time.Now(),
	}
	f.messages[m.Id] = m
	return nil, m.Id
}

func (f *fakeStore) ReadDirectMessageById(id int64) (error, *domain.DirectMessage) {
	if m, ok := f.messages[id]; ok {
		return nil, m
	}
	return errors.New("message not found"), nil
}

func (f *fakeStore) listMessages(w domain.Window, keep func(*domain.DirectMessage) bool) (error, *[]domain.DirectMessage) {
	var all []domain.DirectMessage
	for _, m := range f.messages {
		if w.Admit(m.Id) && keep(m) {
			all = append(all, *m)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Id > all[j].Id })
	if w.Offset >= len(all) {
		empty := []domain.DirectMessage{}
		return nil, &empty
	}
	all = all[w.Offset:]
	if w.Limit > 0 && len(all) > w.Limit {
		all = all[:w.Limit]
	}
	return nil, &all
}

func (f *fakeStore) ReadDirectMessagesReceived(recipientId int64, w domain.Window) (error, *[]domain.DirectMessage) {
	return f.listMessages(w, func(m *domain.DirectMessage) bool { return m.RecipientId == recipientId })
}

func (f *fakeStore) ReadDirectMessagesSent(senderId int64, w domain.Window) (error, *[]domain.DirectMessage) {
	return f.listMessages(w, func(m *domain.DirectMessage) bool { return m.SenderId == senderId })
}

func (f *fakeStore) DeleteDirectMessage(id int64) error {
	delete(f.messages, id)
	return nil
}

func testEnv(store *fakeStore) *Env {
	conf := &util.AppConfig{}
	conf.Conf.SslDomain = "social.example"
	return &Env{
		Conf:      conf,
		Store:     store,
		Assembler: &status.Assembler{Conf: conf, Store: store},
	}
}
