package channel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	assert.Equal(t, Slack, Resolve("slack"))
	assert.Equal(t, Slack, Resolve(" Slack "))
	assert.Equal(t, Telegram, Resolve("telegram"))
	assert.Equal(t, Web, Resolve("web"))
	assert.Equal(t, Web, Resolve(""))
	assert.Equal(t, Web, Resolve("carrier-pigeon"))
}

func TestNormalize_Slack(t *testing.T) {
	got := Normalize(Slack, []byte(`{"event":{"text":"hello there","user":"U123"}}`))
	assert.Equal(t, Normalized{UserID: "U123", Text: "hello there"}, got)
}

func TestNormalize_SlackFallbacks(t *testing.T) {
	got := Normalize(Slack, []byte(`{"message":"from top level","user_id":"u9"}`))
	assert.Equal(t, Normalized{UserID: "u9", Text: "from top level"}, got)

	got = Normalize(Slack, []byte(`{"event":{}}`))
	assert.Equal(t, Normalized{UserID: UnknownUser, Text: ""}, got)
}

func TestNormalize_Telegram(t *testing.T) {
	got := Normalize(Telegram, []byte(`{"message":{"text":"privet","from":{"id":42}}}`))
	assert.Equal(t, Normalized{UserID: "42", Text: "privet"}, got)
}

func TestNormalize_TelegramFallbacks(t *testing.T) {
	got := Normalize(Telegram, []byte(`{"message":{"text":"hi"},"user_id":"tg7"}`))
	assert.Equal(t, Normalized{UserID: "tg7", Text: "hi"}, got)

	got = Normalize(Telegram, []byte(`{}`))
	assert.Equal(t, Normalized{UserID: UnknownUser, Text: ""}, got)
}

func TestNormalize_Web(t *testing.T) {
	got := Normalize(Web, []byte(`{"message":"Hello","user_id":"u1"}`))
	assert.Equal(t, Normalized{UserID: "u1", Text: "Hello"}, got)
}

func TestNormalize_WebAlternateCasingAndDefault(t *testing.T) {
	got := Normalize(Web, []byte(`{"message":"hi","userId":"camel"}`))
	assert.Equal(t, Normalized{UserID: "camel", Text: "hi"}, got)

	got = Normalize(Web, []byte(`{"message":"hi"}`))
	assert.Equal(t, Normalized{UserID: DefaultWebUser, Text: "hi"}, got)
}

func TestNormalize_NumericUserID(t *testing.T) {
	got := Normalize(Web, []byte(`{"message":"hi","user_id":1234}`))
	assert.Equal(t, "1234", got.UserID)
}

// Normalization never panics regardless of payload shape.
func TestNormalize_Total(t *testing.T) {
	payloads := [][]byte{
		nil,
		[]byte(``),
		[]byte(`not json`),
		[]byte(`[]`),
		[]byte(`{"message":{"nested":"object"}}`),
		[]byte(`{"event":"not an object"}`),
		[]byte(`{"message":{"from":"not an object"}}`),
	}
	for _, name := range []Name{Web, Slack, Telegram} {
		for _, payload := range payloads {
			got := Normalize(name, payload)
			assert.Empty(t, got.Text, "payload %q on %s", payload, name)
			assert.NotEmpty(t, got.UserID)
		}
	}
}
