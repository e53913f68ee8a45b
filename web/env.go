package web

import (
	"time"

	"github.com/mimusdev/mimus/db"
	"github.com/mimusdev/mimus/domain"
	"github.com/mimusdev/mimus/status"
	"github.com/mimusdev/mimus/util"
)

// Store is the storage surface the gateway reads and writes. The db package
// satisfies it; gateway tests run against an in-memory fake.
type Store interface {
	status.Store

	ReadActorByHandle(handle string) (error, *domain.Actor)

	CreatePost(save *domain.SavePost, baseUrl string) (error, int64)
	DeletePost(id int64) error
	UpdateStarred(id int64, starred bool) error

	ReadPublicTimeline(w domain.Window) (error, *[]domain.Post)
	ReadHomeTimeline(actorId int64, w domain.Window) (error, *[]domain.Post)
	ReadUserTimeline(actorId int64, w domain.Window) (error, *[]domain.Post)
	ReadMentions(actorUrl string, actorId int64, w domain.Window) (error, *[]domain.Post)
	ReadConversation(rootId int64, w domain.Window) (error, *[]domain.Post)
	ReadFavorites(ownerId int64, w domain.Window) (error, *[]domain.Post)
	CountPostsSince(authorId int64, since time.Time) (error, int)

	ReadCredentialByUsername(username string) (error, *domain.Credential)

	CreateDirectMessage(save *domain.SaveDirectMessage, baseUrl string) (error, int64)
	ReadDirectMessageById(id int64) (error, *domain.DirectMessage)
	ReadDirectMessagesReceived(recipientId int64, w domain.Window) (error, *[]domain.DirectMessage)
	ReadDirectMessagesSent(senderId int64, w domain.Window) (error, *[]domain.DirectMessage)
	DeleteDirectMessage(id int64) error
}

// Env bundles the collaborators every handler needs: configuration, the
// store, and the status assembler. Built once at startup.
type Env struct {
	Conf      *util.AppConfig
	Store     Store
	Assembler *status.Assembler
}

func NewEnv(conf *util.AppConfig) *Env {
	store := db.GetDB()
	return &Env{
		Conf:      conf,
		Store:     store,
		Assembler: &status.Assembler{Conf: conf, Store: store},
	}
}
