package intent

import (
	"math"
	"regexp"
	"strings"
)

// Label is a coarse category assigned to a user message.
type Label string

const (
	Greeting Label = "greeting"
	Farewell Label = "farewell"
	Help     Label = "help"
	Status   Label = "status"
	Thanks   Label = "thanks"
	Question Label = "question"
	Problem  Label = "problem"
	Feedback Label = "feedback"
	Default  Label = "default"
)

const defaultConfidence = 0.3

type rule struct {
	label   Label
	pattern *regexp.Regexp
}

// rules is evaluated in declaration order and the first match wins. The
// categories overlap ("how" appears in help, status and question), so the
// order below is part of the classifier's contract.
var rules = []rule{
	{Greeting, regexp.MustCompile(`(?i)\b(hi|hello|hey|greetings|good\s+(morning|afternoon|evening)|howdy|hiya)\b`)},
	{Farewell, regexp.MustCompile(`(?i)\b(bye|goodbye|see\s+you|later|farewell|take\s+care)\b`)},
	{Help, regexp.MustCompile(`(?i)\b(help|support|assist|assistance|guide|how\s+to)\b`)},
	{Status, regexp.MustCompile(`(?i)\b(status|how|what|info|information|update|progress)\b`)},
	{Thanks, regexp.MustCompile(`(?i)\b(thanks|thank\s+you|thx|appreciate|grateful)\b`)},
	{Question, regexp.MustCompile(`(?i)\b(what|when|where|who|why|how|which|can\s+you)\b`)},
	{Problem, regexp.MustCompile(`(?i)\b(issue|problem|error|bug|not\s+working|broken|fail)\b`)},
	{Feedback, regexp.MustCompile(`(?i)\b(feedback|comment|suggestion|opinion|think)\b`)},
}

// Result pairs a detected label with its heuristic confidence in [0,1].
type Result struct {
	Label      Label
	Confidence float64
}

// Classify detects the intent of a message. No match yields Default with a
// fixed 0.3 confidence; otherwise confidence grows with the number of
// non-overlapping pattern matches, capped at 1.0.
func Classify(text string) Result {
	lowered := strings.ToLower(strings.TrimSpace(text))

	for _, r := range rules {
		matches := r.pattern.FindAllString(lowered, -1)
		if len(matches) == 0 {
			continue
		}
		confidence := math.Min(0.5+0.2*float64(len(matches)), 1.0)
		confidence = math.Round(confidence*100) / 100
		return Result{Label: r.label, Confidence: confidence}
	}

	return Result{Label: Default, Confidence: defaultConfidence}
}

// Labels returns the classifier's labels in evaluation order, Default last.
func Labels() []Label {
	out := make([]Label, 0, len(rules)+1)
	for _, r := range rules {
		out = append(out, r.label)
	}
	return append(out, Default)
}
