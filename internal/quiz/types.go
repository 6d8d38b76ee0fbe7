package quiz

import (
	"time"
)

// Difficulty constants for readability.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Key entity categories as delivered by the generator.
const (
	CategoryPeople        = "people"
	CategoryOrganizations = "organizations"
	CategoryLocations     = "locations"
)

// Quiz is the immutable quiz document produced by the generation service.
// LastScore and LastAnswers are a snapshot of the most recent persisted
// attempt; they are only refreshed by re-fetching the quiz.
type Quiz struct {
	ID            int            `json:"id"`
	Title         string         `json:"title"`
	URL           string         `json:"url"`
	Summary       string         `json:"summary"`
	Sections      []Section      `json:"sections,omitempty"`
	KeyEntities   []KeyEntity    `json:"key_entities,omitempty"`
	RelatedTopics []RelatedTopic `json:"related_topics,omitempty"`
	Questions     []Question     `json:"questions"`
	CreatedAt     time.Time      `json:"created_at"`
	LastScore     *int           `json:"last_score,omitempty"`
	LastAnswers   string         `json:"last_answers,omitempty"`
}

// Question is a single multiple-choice question. CorrectAnswer matches one
// Option.Text by value; a question where nothing matches is still valid, it
// just can never be scored correct.
type Question struct {
	ID            int      `json:"id"`
	Text          string   `json:"text"`
	Difficulty    string   `json:"difficulty"`
	Options       []Option `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation,omitempty"`
}

// Option is one selectable choice.
type Option struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// KeyEntity is a named entity extracted from the article.
type KeyEntity struct {
	Category string `json:"category"`
	Name     string `json:"name"`
}

// Section is an article section heading.
type Section struct {
	Name string `json:"name"`
}

// RelatedTopic points at a further-reading topic.
type RelatedTopic struct {
	Topic string `json:"topic"`
}

// AnswerMap maps question id to the selected option's text. A missing key
// means unanswered, which is distinct from an empty-string answer.
type AnswerMap map[int]string

// Clone returns an independent copy so callers can hand out snapshots
// without exposing internal state.
func (a AnswerMap) Clone() AnswerMap {
	if a == nil {
		return AnswerMap{}
	}
	out := make(AnswerMap, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// AttemptResult is the derived outcome of one attempt; this is the only
// session artifact that is ever persisted.
type AttemptResult struct {
	Score   int       `json:"score"`
	Answers AnswerMap `json:"answers"`
}

// HasStoredAttempt reports whether the store supplied a prior attempt that
// can be opened in review mode.
func (q *Quiz) HasStoredAttempt() bool {
	return q.LastAnswers != ""
}

// EntitiesByCategory filters key entities; nil-safe for quizzes where the
// generator omitted the collection.
func (q *Quiz) EntitiesByCategory(category string) []KeyEntity {
	var out []KeyEntity
	for _, e := range q.KeyEntities {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out
}
