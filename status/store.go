package status

import "github.com/mimusdev/mimus/domain"

// Store is the narrow read surface the translation engine needs from the
// storage layer. The db package satisfies it; tests use an in-memory fake.
type Store interface {
	ReadPostById(id int64) (error, *domain.Post)
	ReadPostByUri(uri string) (error, *domain.Post)
	ReadActorById(id int64) (error, *domain.Actor)
	ReadActorByUrl(url string) (error, *domain.Actor)
}
