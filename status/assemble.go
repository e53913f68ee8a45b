package status

import (
	"strconv"
	"strings"

	"github.com/mimusdev/mimus/domain"
	"github.com/mimusdev/mimus/markup"
	"github.com/mimusdev/mimus/util"
)

// Assembler composes the content transformer, thread resolver, reshare
// reconstructor and actor lookups into full client-facing records.
type Assembler struct {
	Conf  *util.AppConfig
	Store Store
}

// StatusView assembles the protocol-facing representation of one post.
func (a *Assembler) StatusView(post *domain.Post, includeEntities bool) *StatusView {
	rendered := Transform(post, includeEntities, a.Conf)

	user := EmptyUserView()
	if err, author := a.Store.ReadActorById(post.AuthorId); err == nil && author != nil {
		user = actorView(author)
	}

	view := &StatusView{
		Text:                    rendered.Text,
		CreatedAt:               post.CreatedAt.Format(util.TwitterTimeFormat()),
		Id:                      post.Id,
		IdStr:                   formatId(post.Id),
		Source:                  sourceName(post.SourceClient),
		ExternalUrl:             post.Uri,
		Favorited:               post.Starred,
		User:                    user,
		StatusnetHtml:           rendered.Html,
		StatusnetConversationId: post.ParentId,
		Attachments:             rendered.Attachments,
		Entities:                rendered.Entities,
	}

	if post.Coordinates != "" {
		view.Geo = post.Coordinates
		view.Coordinates = post.Coordinates
	}

	if reply := ResolveThread(post, a.Store); reply != nil {
		view.InReplyToStatusId = reply.StatusId
		view.InReplyToStatusIdStr = formatId(reply.StatusId)
		if reply.UserId != 0 {
			view.InReplyToUserId = reply.UserId
			view.InReplyToUserIdStr = formatId(reply.UserId)
		}
		view.InReplyToScreenName = reply.ScreenName
	}

	// Only a thread root can carry a nested reshared status.
	if retweet := BuildRetweet(post, includeEntities, a.Conf, a.Store); retweet != nil {
		view.RetweetedStatus = retweet
	}

	return view
}

// StatusViews assembles a whole listing in result-set order.
func (a *Assembler) StatusViews(posts []domain.Post, includeEntities bool) []StatusView {
	views := make([]StatusView, 0, len(posts))
	for i := range posts {
		views = append(views, *a.StatusView(&posts[i], includeEntities))
	}
	return views
}

// UserView assembles the protocol-facing representation of an actor.
func (a *Assembler) UserView(actor *domain.Actor) *UserView {
	return actorView(actor)
}

// DirectMessageView assembles the client-facing shape of a direct message.
func (a *Assembler) DirectMessageView(m *domain.DirectMessage) *DirectMessageView {
	view := &DirectMessageView{
		Id:          m.Id,
		IdStr:       formatId(m.Id),
		Title:       m.Title,
		CreatedAt:   m.CreatedAt.Format(util.TwitterTimeFormat()),
		SenderId:    m.SenderId,
		RecipientId: m.RecipientId,
	}

	_, text := markup.Render(m.Body)
	view.Text = strings.TrimSpace(text)

	if err, sender := a.Store.ReadActorById(m.SenderId); err == nil && sender != nil {
		view.Sender = actorView(sender)
		view.SenderScreenName = sender.Handle
	}
	if err, recipient := a.Store.ReadActorById(m.RecipientId); err == nil && recipient != nil {
		view.Recipient = actorView(recipient)
		view.RecipientScreenName = recipient.Handle
	}

	return view
}

// DirectMessageViews assembles a message listing in result-set order.
func (a *Assembler) DirectMessageViews(messages []domain.DirectMessage) []DirectMessageView {
	views := make([]DirectMessageView, 0, len(messages))
	for i := range messages {
		views = append(views, *a.DirectMessageView(&messages[i]))
	}
	return views
}

// actorView maps a cached actor profile onto the wire shape. Social-graph
// counts are deliberately fixed at zero; this core never computes them.
func actorView(actor *domain.Actor) *UserView {
	view := &UserView{
		Id:                  actor.Id,
		IdStr:               formatId(actor.Id),
		Name:                actor.DisplayName,
		ScreenName:          actor.Handle,
		Url:                 actor.CanonicalUrl,
		ProfileImageUrl:     actor.AvatarUrl,
		CreatedAt:           actor.CreatedAt.Format(util.TwitterTimeFormat()),
		Following:           actor.Relation == domain.RelationFollowing || actor.Relation == domain.RelationMutual,
		StatusnetProfileUrl: actor.CanonicalUrl,
		Network:             actor.NetworkOrigin,
	}
	if view.Name == "" {
		view.Name = actor.Handle
	}
	return view
}

func formatId(id int64) string {
	return strconv.FormatInt(id, 10)
}

func sourceName(sourceClient string) string {
	if sourceClient == "" {
		return "web"
	}
	return sourceClient
}
