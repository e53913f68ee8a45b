package web

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mimusdev/mimus/domain"
	"github.com/mimusdev/mimus/markup"
	"github.com/mimusdev/mimus/status"
	"github.com/mimusdev/mimus/util"
)

// BuildRegistry assembles the dispatch table. Longer prefixes register
// before their shorter siblings so that first-match stays unambiguous.
func BuildRegistry() *Registry {
	r := NewRegistry()

	r.Register("help/test", "ok", AnyMethod, false, helpTest)
	r.Register("account/verify_credentials", "user", Methods("GET"), true, verifyCredentials)
	r.Register("account/rate_limit_status", "hash", Methods("GET"), true, rateLimitStatus)

	r.Register("statuses/update", "status", Methods("POST", "PUT"), true, statusUpdate)
	r.Register("statuses/destroy", "status", Methods("POST", "DELETE"), true, statusDestroy)
	r.Register("statuses/show", "status", Methods("GET"), false, statusShow)
	r.Register("statuses/home_timeline", "statuses", Methods("GET"), true, homeTimeline)
	r.Register("statuses/friends_timeline", "statuses", Methods("GET"), true, homeTimeline)
	r.Register("statuses/public_timeline", "statuses", Methods("GET"), false, publicTimeline)
	r.Register("statuses/user_timeline", "statuses", Methods("GET"), false, userTimeline)
	r.Register("statuses/mentions", "statuses", Methods("GET"), true, mentions)
	r.Register("statuses/replies", "statuses", Methods("GET"), true, mentions)
	r.Register("statuses/retweet", "status", Methods("POST"), true, statusRetweet)

	r.Register("statusnet/conversation", "statuses", Methods("GET"), false, conversation)
	r.Register("statusnet/version", "version", Methods("GET"), false, version)

	r.Register("favorites/create", "status", Methods("POST"), true, favoriteCreate)
	r.Register("favorites/destroy", "status", Methods("POST"), true, favoriteDestroy)
	r.Register("favorites", "statuses", Methods("GET"), true, favorites)

	r.Register("direct_messages/sent", "direct-messages", Methods("GET"), true, directMessagesSent)
	r.Register("direct_messages/new", "direct_message", Methods("POST"), true, directMessageNew)
	r.Register("direct_messages/destroy", "direct_message", Methods("POST", "DELETE"), true, directMessageDestroy)
	r.Register("direct_messages", "direct-messages", Methods("GET"), true, directMessagesReceived)

	r.Register("users/show", "user", Methods("GET"), false, usersShow)

	return r
}

func helpTest(c *apiContext) (interface{}, error) {
	return "ok", nil
}

func version(c *apiContext) (interface{}, error) {
	return util.GetVersion(), nil
}

func verifyCredentials(c *apiContext) (interface{}, error) {
	return c.env.Assembler.UserView(c.actor), nil
}

func statusUpdate(c *apiContext) (interface{}, error) {
	body := strings.TrimSpace(c.Param("status"))
	if body == "" {
		return nil, BadRequest("missing required parameter: status")
	}

	if err := checkPostingRate(c); err != nil {
		return nil, err
	}

	save := &domain.SavePost{
		AuthorId:      c.actor.Id,
		Body:          body,
		Title:         c.Param("title"),
		NetworkOrigin: domain.NetworkNative,
		SourceClient:  c.Param("source"),
	}

	if replyId := c.Int64Param("in_reply_to_status_id", 0); replyId != 0 {
		err, parent := c.env.Store.ReadPostById(replyId)
		if err != nil || parent == nil {
			return nil, BadRequest(fmt.Sprintf("unknown status id %d", replyId))
		}
		save.ThreadParentUri = parent.Uri
	}

	lat, long := c.Param("lat"), c.Param("long")
	if lat != "" && long != "" {
		save.Coordinates = lat + " " + long
	}

	err, id := c.env.Store.CreatePost(save, c.env.Conf.BaseURL())
	if err != nil {
		return nil, InternalError("could not store status")
	}

	err, post := c.env.Store.ReadPostById(id)
	if err != nil || post == nil {
		return nil, InternalError("stored status not readable")
	}

	return c.env.Assembler.StatusView(post, c.IncludeEntities()), nil
}

func statusDestroy(c *apiContext) (interface{}, error) {
	id := c.IdParam("statuses/destroy")
	err, post := c.env.Store.ReadPostById(id)
	if err != nil || post == nil {
		return nil, BadRequest(fmt.Sprintf("unknown status id %d", id))
	}
	if post.AuthorId != c.actor.Id {
		return nil, Forbidden("you may only destroy your own statuses")
	}

	// Assemble first, the record is gone afterwards.
	view := c.env.Assembler.StatusView(post, c.IncludeEntities())

	if err := c.env.Store.DeletePost(id); err != nil {
		return nil, InternalError("could not destroy status")
	}
	return view, nil
}

func statusShow(c *apiContext) (interface{}, error) {
	id := c.IdParam("statuses/show")
	if id == 0 {
		return nil, BadRequest("missing required parameter: id")
	}
	err, post := c.env.Store.ReadPostById(id)
	if err != nil || post == nil {
		return nil, BadRequest(fmt.Sprintf("unknown status id %d", id))
	}
	return c.env.Assembler.StatusView(post, c.IncludeEntities()), nil
}

func homeTimeline(c *apiContext) (interface{}, error) {
	err, posts := c.env.Store.ReadHomeTimeline(c.actor.Id, c.Window())
	if err != nil {
		return nil, InternalError("could not read home timeline")
	}
	return c.filteredViews(*posts), nil
}

func publicTimeline(c *apiContext) (interface{}, error) {
	err, posts := c.env.Store.ReadPublicTimeline(c.Window())
	if err != nil {
		return nil, InternalError("could not read public timeline")
	}
	return c.filteredViews(*posts), nil
}

func userTimeline(c *apiContext) (interface{}, error) {
	actor, fault := c.targetActor()
	if fault != nil {
		return nil, fault
	}
	err, posts := c.env.Store.ReadUserTimeline(actor.Id, c.Window())
	if err != nil {
		return nil, InternalError("could not read user timeline")
	}
	return c.filteredViews(*posts), nil
}

func mentions(c *apiContext) (interface{}, error) {
	err, posts := c.env.Store.ReadMentions(c.actor.CanonicalUrl, c.actor.Id, c.Window())
	if err != nil {
		return nil, InternalError("could not read mentions")
	}
	return c.env.Assembler.StatusViews(*posts, c.IncludeEntities()), nil
}

func statusRetweet(c *apiContext) (interface{}, error) {
	id := c.IdParam("statuses/retweet")
	err, post := c.env.Store.ReadPostById(id)
	if err != nil || post == nil {
		return nil, BadRequest(fmt.Sprintf("unknown status id %d", id))
	}

	err, author := c.env.Store.ReadActorById(post.AuthorId)
	if err != nil || author == nil {
		return nil, BadRequest("status author unknown, cannot attribute reshare")
	}

	save := &domain.SavePost{
		AuthorId:      c.actor.Id,
		Body:          markup.FormatShare(author.Handle, author.CanonicalUrl, author.AvatarUrl, post.Uri, post.CreatedAt, post.Body),
		NetworkOrigin: domain.NetworkNative,
		SourceClient:  c.Param("source"),
	}

	err, newId := c.env.Store.CreatePost(save, c.env.Conf.BaseURL())
	if err != nil {
		return nil, InternalError("could not store reshare")
	}

	err, reshare := c.env.Store.ReadPostById(newId)
	if err != nil || reshare == nil {
		return nil, InternalError("stored reshare not readable")
	}

	return c.env.Assembler.StatusView(reshare, c.IncludeEntities()), nil
}

func conversation(c *apiContext) (interface{}, error) {
	id := c.Int64Param("conversation_id", 0)
	if id == 0 {
		id = c.IdParam("statusnet/conversation")
	}
	if id == 0 {
		return nil, BadRequest("missing required parameter: id")
	}

	root, ok := status.ResolveConversationRoot(id, c.env.Store)
	if !ok {
		return nil, BadRequest(fmt.Sprintf("unknown status id %d", id))
	}

	err, posts := c.env.Store.ReadConversation(root, c.Window())
	if err != nil {
		return nil, InternalError("could not read conversation")
	}
	return c.env.Assembler.StatusViews(*posts, c.IncludeEntities()), nil
}

func favorites(c *apiContext) (interface{}, error) {
	err, posts := c.env.Store.ReadFavorites(c.actor.Id, c.Window())
	if err != nil {
		return nil, InternalError("could not read favorites")
	}
	return c.env.Assembler.StatusViews(*posts, c.IncludeEntities()), nil
}

func favoriteCreate(c *apiContext) (interface{}, error) {
	return c.setStarred("favorites/create", true)
}

func favoriteDestroy(c *apiContext) (interface{}, error) {
	return c.setStarred("favorites/destroy", false)
}

func (c *apiContext) setStarred(prefix string, starred bool) (interface{}, error) {
	id := c.IdParam(prefix)
	err, post := c.env.Store.ReadPostById(id)
	if err != nil || post == nil {
		return nil, BadRequest(fmt.Sprintf("unknown status id %d", id))
	}

	if err := c.env.Store.UpdateStarred(id, starred); err != nil {
		return nil, InternalError("could not update favorite")
	}
	post.Starred = starred

	return c.env.Assembler.StatusView(post, c.IncludeEntities()), nil
}

func usersShow(c *apiContext) (interface{}, error) {
	actor, fault := c.targetActor()
	if fault != nil {
		return nil, fault
	}
	return c.env.Assembler.UserView(actor), nil
}

// targetActor resolves the actor a request talks about, through user_id or
// screen_name. On unauthenticated endpoints the acting user is the
// fallback, which requires credentials after all when both parameters are
// absent.
func (c *apiContext) targetActor() (*domain.Actor, error) {
	if id := c.Int64Param("user_id", 0); id != 0 {
		err, actor := c.env.Store.ReadActorById(id)
		if err != nil || actor == nil {
			return nil, NotFound(fmt.Sprintf("unknown user id %d", id))
		}
		return actor, nil
	}

	if handle := c.Param("screen_name"); handle != "" {
		err, actor := c.env.Store.ReadActorByHandle(handle)
		if err != nil || actor == nil {
			return nil, NotFound("unknown user " + handle)
		}
		return actor, nil
	}

	if c.actor == nil {
		if err := Authenticate(c); err != nil {
			return nil, BadRequest("no user specified")
		}
	}
	return c.actor, nil
}

// filteredViews applies the listing filters shared by the timeline
// endpoints: exclude_replies drops non-root posts, conversation_id keeps
// one thread only.
func (c *apiContext) filteredViews(posts []domain.Post) []status.StatusView {
	excludeReplies := c.BoolParam("exclude_replies")
	conversationId := c.Int64Param("conversation_id", 0)

	if excludeReplies || conversationId != 0 {
		kept := posts[:0]
		for _, p := range posts {
			if excludeReplies && !p.IsThreadRoot() {
				continue
			}
			if conversationId != 0 && p.ParentId != conversationId {
				continue
			}
			kept = append(kept, p)
		}
		posts = kept
	}

	return c.env.Assembler.StatusViews(posts, c.IncludeEntities())
}

// IdParam reads the target id from the id parameter or, in the Twitter
// path style, from a trailing path segment ("statuses/show/123").
func (c *apiContext) IdParam(prefix string) int64 {
	if id := c.Int64Param("id", 0); id != 0 {
		return id
	}
	rest := strings.TrimPrefix(strings.TrimPrefix(c.path, prefix), "/")
	id, _ := strconv.ParseInt(rest, 10, 64)
	return id
}
