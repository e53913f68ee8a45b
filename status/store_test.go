package status

import (
	"errors"

	"github.com/mimusdev/mimus/domain"
	"github.com/mimusdev/mimus/util"
)

// fakeStore is the in-memory Store used across the package tests.
type fakeStore struct {
	posts  map[int64]*domain.Post
	actors map[int64]*domain.Actor
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		posts:  make(map[int64]*domain.Post),
		actors: make(map[int64]*domain.Actor),
	}
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

func testConf() *util.AppConfig {
	conf := &util.AppConfig{}
	conf.Conf.SslDomain = "social.example"
	return conf
}
