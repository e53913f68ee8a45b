package status

import (
	"encoding/json"
	"encoding/xml"
)

// UserView is the protocol-facing shape of an Actor. Social-graph counts
// are fixed at zero for anyone but the acting account itself.
type UserView struct {
	Id                  int64    `json:"id" xml:"id"`
	IdStr               string   `json:"id_str" xml:"id_str"`
	Name                string   `json:"name" xml:"name"`
	ScreenName          string   `json:"screen_name" xml:"screen_name"`
	Url                 string   `json:"url" xml:"url"`
	ProfileImageUrl     string   `json:"profile_image_url" xml:"profile_image_url"`
	Protected           bool     `json:"protected" xml:"protected"`
	FollowersCount      int      `json:"followers_count" xml:"followers_count"`
	FriendsCount        int      `json:"friends_count" xml:"friends_count"`
	FavouritesCount     int      `json:"favourites_count" xml:"favourites_count"`
	StatusesCount       int      `json:"statuses_count" xml:"statuses_count"`
	CreatedAt           string   `json:"created_at" xml:"created_at"`
	Following           bool     `json:"following" xml:"following"`
	Verified            bool     `json:"verified" xml:"verified"`
	StatusnetProfileUrl string   `json:"statusnet_profile_url" xml:"statusnet_profile_url"`
	Network             string   `json:"network" xml:"network"`

	// empty marks the placeholder user emitted when a reshared author
	// cannot be resolved; it serializes as a bare empty object.
	empty bool
}

// EmptyUserView returns the placeholder user for unresolvable authors.
func EmptyUserView() *UserView {
	return &UserView{empty: true}
}

func (u UserView) MarshalJSON() ([]byte, error) {
	if u.empty {
		return []byte("{}"), nil
	}
	type alias UserView
	return json.Marshal(alias(u))
}

func (u UserView) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if u.empty {
		if err := e.EncodeToken(start); err != nil {
			return err
		}
		return e.EncodeToken(start.End())
	}
	type alias UserView
	return e.EncodeElement(alias(u), start)
}

// UrlEntityView is a positioned link annotation over the status text.
// Indices are Unicode codepoint offsets, not bytes.
type UrlEntityView struct {
	Url         string `json:"url" xml:"url"`
	ExpandedUrl string `json:"expanded_url" xml:"expanded_url"`
	DisplayUrl  string `json:"display_url" xml:"display_url"`
	Indices     [2]int `json:"indices" xml:"indices>index"`
}

type MediaSizeView struct {
	W      int    `json:"w" xml:"w"`
	H      int    `json:"h" xml:"h"`
	Resize string `json:"resize" xml:"resize"`
}

type MediaEntityView struct {
	Id            int64                    `json:"id" xml:"id"`
	MediaUrl      string                   `json:"media_url" xml:"media_url"`
	MediaUrlHttps string                   `json:"media_url_https" xml:"media_url_https"`
	Url           string                   `json:"url" xml:"url"`
	DisplayUrl    string                   `json:"display_url" xml:"display_url"`
	ExpandedUrl   string                   `json:"expanded_url" xml:"expanded_url"`
	Type          string                   `json:"type" xml:"type"`
	Indices       [2]int                   `json:"indices" xml:"indices>index"`
	Sizes         map[string]MediaSizeView `json:"sizes,omitempty" xml:"-"`
}

type HashtagEntityView struct {
	Text    string `json:"text" xml:"text"`
	Indices [2]int `json:"indices" xml:"indices>index"`
}

type MentionEntityView struct {
	Id         int64  `json:"id" xml:"id"`
	IdStr      string `json:"id_str" xml:"id_str"`
	ScreenName string `json:"screen_name" xml:"screen_name"`
	Name       string `json:"name" xml:"name"`
	Indices    [2]int `json:"indices" xml:"indices>index"`
}

// EntityViews groups the positioned annotations of one status.
type EntityViews struct {
	Urls         []UrlEntityView     `json:"urls" xml:"urls>url"`
	Hashtags     []HashtagEntityView `json:"hashtags" xml:"hashtags>hashtag"`
	UserMentions []MentionEntityView `json:"user_mentions" xml:"user_mentions>user_mention"`
	Media        []MediaEntityView   `json:"media,omitempty" xml:"media>item,omitempty"`
}

type AttachmentView struct {
	Url      string `json:"url" xml:"url"`
	Mimetype string `json:"mimetype" xml:"mimetype"`
}

// StatusView is the fully assembled, client-facing representation of a
// post. Derived per request, never persisted.
type StatusView struct {
	Text                    string           `json:"text" xml:"text"`
	Truncated               bool             `json:"truncated" xml:"truncated"`
	CreatedAt               string           `json:"created_at" xml:"created_at"`
	InReplyToStatusId       int64            `json:"in_reply_to_status_id,omitempty" xml:"in_reply_to_status_id,omitempty"`
	InReplyToStatusIdStr    string           `json:"in_reply_to_status_id_str,omitempty" xml:"in_reply_to_status_id_str,omitempty"`
	InReplyToUserId         int64            `json:"in_reply_to_user_id,omitempty" xml:"in_reply_to_user_id,omitempty"`
	InReplyToUserIdStr      string           `json:"in_reply_to_user_id_str,omitempty" xml:"in_reply_to_user_id_str,omitempty"`
	InReplyToScreenName     string           `json:"in_reply_to_screen_name,omitempty" xml:"in_reply_to_screen_name,omitempty"`
	Id                      int64            `json:"id" xml:"id"`
	IdStr                   string           `json:"id_str" xml:"id_str"`
	Source                  string           `json:"source" xml:"source"`
	ExternalUrl             string           `json:"external_url" xml:"external_url"`
	Favorited               bool             `json:"favorited" xml:"favorited"`
	Geo                     string           `json:"geo,omitempty" xml:"geo,omitempty"`
	Coordinates             string           `json:"coordinates,omitempty" xml:"coordinates,omitempty"`
	User                    *UserView        `json:"user" xml:"user"`
	StatusnetHtml           string           `json:"statusnet_html" xml:"statusnet_html"`
	StatusnetConversationId int64            `json:"statusnet_conversation_id" xml:"statusnet_conversation_id"`
	Attachments             []AttachmentView `json:"attachments,omitempty" xml:"attachments>attachment,omitempty"`
	RetweetedStatus         *StatusView      `json:"retweeted_status,omitempty" xml:"retweeted_status,omitempty"`
	Entities                *EntityViews     `json:"entities,omitempty" xml:"entities,omitempty"`
}

// DirectMessageView is the client-facing shape of a stored direct message.
type DirectMessageView struct {
	Id                  int64     `json:"id" xml:"id"`
	IdStr               string    `json:"id_str" xml:"id_str"`
	Text                string    `json:"text" xml:"text"`
	Title               string    `json:"title" xml:"title"`
	CreatedAt           string    `json:"created_at" xml:"created_at"`
	SenderId            int64     `json:"sender_id" xml:"sender_id"`
	SenderScreenName    string    `json:"sender_screen_name" xml:"sender_screen_name"`
	RecipientId         int64     `json:"recipient_id" xml:"recipient_id"`
	RecipientScreenName string    `json:"recipient_screen_name" xml:"recipient_screen_name"`
	Sender              *UserView `json:"sender,omitempty" xml:"sender,omitempty"`
	Recipient           *UserView `json:"recipient,omitempty" xml:"recipient,omitempty"`
}
