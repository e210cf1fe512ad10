package channel

import (
	"encoding/json"
	"strings"
)

// Name identifies an inbound message channel.
type Name string

const (
	Web      Name = "web"
	Slack    Name = "slack"
	Telegram Name = "telegram"
)

// DefaultWebUser is the sentinel user for web submissions without an identifier.
const DefaultWebUser = "web_user"

// UnknownUser is the sentinel for chat-platform payloads with no resolvable user.
const UnknownUser = "unknown"

// Normalized is the channel-agnostic view of an inbound payload.
type Normalized struct {
	UserID string
	Text   string
}

// Resolve maps a raw channel tag to a known channel, defaulting to web.
func Resolve(tag string) Name {
	switch Name(strings.ToLower(strings.TrimSpace(tag))) {
	case Slack:
		return Slack
	case Telegram:
		return Telegram
	default:
		return Web
	}
}

// Normalize extracts (user, text) from a channel-shaped payload. It is total:
// malformed or incomplete payloads degrade to empty text and the channel's
// sentinel user rather than failing.
func Normalize(name Name, payload []byte) Normalized {
	switch name {
	case Slack:
		return normalizeSlack(payload)
	case Telegram:
		return normalizeTelegram(payload)
	default:
		return normalizeWeb(payload)
	}
}

type slackPayload struct {
	Event struct {
		Text string          `json:"text"`
		User json.RawMessage `json:"user"`
	} `json:"event"`
	Message json.RawMessage `json:"message"`
	UserID  json.RawMessage `json:"user_id"`
}

func normalizeSlack(payload []byte) Normalized {
	var p slackPayload
	_ = json.Unmarshal(payload, &p)

	text := p.Event.Text
	if text == "" {
		text = asString(p.Message)
	}

	user := asString(p.Event.User)
	if user == "" {
		user = asString(p.UserID)
	}
	if user == "" {
		user = UnknownUser
	}

	return Normalized{UserID: user, Text: text}
}

type telegramPayload struct {
	Message json.RawMessage `json:"message"`
	UserID  json.RawMessage `json:"user_id"`
}

type telegramMessage struct {
	Text string `json:"text"`
	From struct {
		ID json.Number `json:"id"`
	} `json:"from"`
}

func normalizeTelegram(payload []byte) Normalized {
	var p telegramPayload
	_ = json.Unmarshal(payload, &p)

	var msg telegramMessage
	_ = json.Unmarshal(p.Message, &msg)

	user := msg.From.ID.String()
	if user == "" {
		user = asString(p.UserID)
	}
	if user == "" {
		user = UnknownUser
	}

	return Normalized{UserID: user, Text: msg.Text}
}

type webPayload struct {
	Message   json.RawMessage `json:"message"`
	UserID    json.RawMessage `json:"user_id"`
	UserIDAlt json.RawMessage `json:"userId"`
}

func normalizeWeb(payload []byte) Normalized {
	var p webPayload
	_ = json.Unmarshal(payload, &p)

	user := asString(p.UserID)
	if user == "" {
		user = asString(p.UserIDAlt)
	}
	if user == "" {
		user = DefaultWebUser
	}

	return Normalized{UserID: user, Text: asString(p.Message)}
}

// asString decodes a raw JSON value as a string, tolerating numeric ids.
func asString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
