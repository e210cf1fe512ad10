package intent

import (
	"math/rand"
)

// templates holds the canned replies per label. Selection is uniform random.
var templates = map[Label][]string{
	Greeting: {
		"Hello! How can I help you today? 👋",
		"Hi there! What can I do for you?",
		"Hey! I'm here to assist you.",
	},
	Farewell: {
		"Goodbye! Have a great day! 👋",
		"See you later! Feel free to come back anytime.",
		"Take care! I'm here if you need anything.",
	},
	Help: {
		"I'm here to help! You can ask me about:\n• Status updates\n• Support and assistance\n• General questions\n• Or just have a chat!",
		"I'd be happy to assist! What do you need help with?",
		"Let me know what you're looking for, and I'll do my best to help!",
	},
	Status: {
		"Everything is running smoothly! All systems operational. ✅",
		"Status: All good! What specific information would you like?",
		"All systems are functioning normally. What would you like to know more about?",
	},
	Thanks: {
		"You're welcome! Anything else I can help with? 😊",
		"Happy to help! Let me know if you need anything else.",
		"My pleasure! Feel free to ask if you have more questions.",
	},
	Question: {
		"That's a great question! Let me help you with that.",
		"I'll do my best to answer that for you.",
		"Good question! Here's what I can tell you...",
	},
	Problem: {
		"I understand you're experiencing an issue. Let me help you troubleshoot.",
		"Sorry to hear you're having trouble. I'm here to help resolve this.",
		"Let me assist you with that problem right away.",
	},
	Feedback: {
		"Thank you for your feedback! We really appreciate it.",
		"I value your input! Your feedback helps us improve.",
		"Thanks for sharing your thoughts!",
	},
	Default: {
		"I'm processing your message. Could you please provide more details?",
		"Interesting! Tell me more about that.",
		"I'm here to help. Could you rephrase that for me?",
	},
}

const questionPreviewLen = 50

// Responder generates templated replies for classified messages.
type Responder struct {
	pick func(n int) int
}

// ResponderOption customizes reply generation.
type ResponderOption func(*Responder)

// WithPicker injects the template selector. Tests use this for determinism.
func WithPicker(pick func(n int) int) ResponderOption {
	return func(r *Responder) {
		if pick != nil {
			r.pick = pick
		}
	}
}

// NewResponder creates a responder using the shared math/rand source.
func NewResponder(opts ...ResponderOption) *Responder {
	r := &Responder{pick: rand.Intn}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reply selects a template for the label. For questions containing a literal
// "?" it appends a suffix quoting the start of the original message.
func (r *Responder) Reply(label Label, original string) string {
	set, ok := templates[label]
	if !ok {
		set = templates[Default]
	}
	reply := set[r.pick(len(set))]

	if label == Question && containsQuestionMark(original) {
		reply += "\n\nRegarding: '" + preview(original, questionPreviewLen) + "...'"
	}
	return reply
}

// Templates returns the template set for a label. Exposed for tests.
func Templates(label Label) []string {
	return templates[label]
}

func containsQuestionMark(s string) bool {
	for _, r := range s {
		if r == '?' {
			return true
		}
	}
	return false
}

func preview(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
