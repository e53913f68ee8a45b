package web

import (
	"fmt"
	"strings"

	"github.com/mimusdev/mimus/domain"
)

func directMessagesReceived(c *apiContext) (interface{}, error) {
	err, messages := c.env.Store.ReadDirectMessagesReceived(c.actor.Id, c.Window())
	if err != nil {
		return nil, InternalError("could not read direct messages")
	}
	return c.env.Assembler.DirectMessageViews(*messages), nil
}

func directMessagesSent(c *apiContext) (interface{}, error) {
	err, messages := c.env.Store.ReadDirectMessagesSent(c.actor.Id, c.Window())
	if err != nil {
		return nil, InternalError("could not read sent direct messages")
	}
	return c.env.Assembler.DirectMessageViews(*messages), nil
}

func directMessageNew(c *apiContext) (interface{}, error) {
	text := strings.TrimSpace(c.Param("text"))
	if text == "" {
		return nil, BadRequest("missing required parameter: text")
	}

	recipient, fault := c.targetActor()
	if fault != nil {
		return nil, fault
	}
	if recipient.Id == c.actor.Id {
		return nil, BadRequest("cannot send a direct message to yourself")
	}

	save := &domain.SaveDirectMessage{
		SenderId:    c.actor.Id,
		RecipientId: recipient.Id,
		Title:       c.Param("title"),
		Body:        text,
	}

	if replyId := c.Int64Param("in_reply_to_id", 0); replyId != 0 {
		if err, parent := c.env.Store.ReadDirectMessageById(replyId); err == nil && parent != nil {
			save.ReplyToUri = parent.Uri
		}
	}

	err, id := c.env.Store.CreateDirectMessage(save, c.env.Conf.BaseURL())
	if err != nil {
		return nil, InternalError("could not store direct message")
	}

	err, message := c.env.Store.ReadDirectMessageById(id)
	if err != nil || message == nil {
		return nil, InternalError("stored direct message not readable")
	}

	return c.env.Assembler.DirectMessageView(message), nil
}

func directMessageDestroy(c *apiContext) (interface{}, error) {
	id := c.IdParam("direct_messages/destroy")
	err, message := c.env.Store.ReadDirectMessageById(id)
	if err != nil || message == nil {
		return nil, BadRequest(fmt.Sprintf("unknown direct message id %d", id))
	}
	if message.SenderId != c.actor.Id && message.RecipientId != c.actor.Id {
		return nil, Forbidden("you may only destroy your own direct messages")
	}

	view := c.env.Assembler.DirectMessageView(message)

	if err := c.env.Store.DeleteDirectMessage(id); err != nil {
		return nil, InternalError("could not destroy direct message")
	}
	return view, nil
}
