package status

import (
	"github.com/mimusdev/mimus/domain"
	"github.com/mimusdev/mimus/markup"
	"github.com/mimusdev/mimus/util"
)

// BuildRetweet detects a reshare wrapper inside a thread-root post and
// synthesizes the nested quoted status from the embedded attribution.
// Returns nil whenever the post is not a complete, well-formed reshare;
// a partial wrapper never produces a partial result.
func BuildRetweet(post *domain.Post, includeEntities bool, conf *util.AppConfig, store Store) *StatusView {
	if !post.IsThreadRoot() {
		return nil
	}

	share, ok := markup.ParseShare(post.Body)
	if !ok {
		return nil
	}

	// The substitute post shares the original's id and visibility but
	// carries the reshared author, body, timestamp and permalink.
	substitute := *post
	substitute.Body = share.Body
	substitute.Title = ""
	if share.Link != "" {
		substitute.Uri = share.Link
	}
	if posted, parsed := share.PostedTime(); parsed {
		substitute.CreatedAt = posted
	}

	rendered := Transform(&substitute, includeEntities, conf)

	user := EmptyUserView()
	if err, actor := store.ReadActorByUrl(share.Profile); err == nil && actor != nil {
		user = actorView(actor)
	}

	return &StatusView{
		Text:                    rendered.Text,
		CreatedAt:               substitute.CreatedAt.Format(util.TwitterTimeFormat()),
		Id:                      substitute.Id,
		IdStr:                   formatId(substitute.Id),
		Source:                  sourceName(post.SourceClient),
		ExternalUrl:             substitute.Uri,
		Favorited:               post.Starred,
		User:                    user,
		StatusnetHtml:           rendered.Html,
		StatusnetConversationId: post.ParentId,
		Attachments:             rendered.Attachments,
		Entities:                rendered.Entities,
	}
}
