package catalog

import "time"

// Status is the publication state of a question.
type Status string

const (
	// StatusPublished questions are visible to every read path.
	StatusPublished Status = "published"
	// StatusDraft questions are stored but never served.
	StatusDraft Status = "draft"
)

// Difficulty grades a question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Provider owns a set of topics.
type Provider struct {
	ID           string    `json:"id"`
	Provider     string    `json:"provider"`
	ProviderSlug string    `json:"provider_slug"`
	TopicCount   int       `json:"topic_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Topics       []Topic   `json:"topics,omitempty"`
}

// ProviderRef is the provider snapshot embedded in topic reads.
type ProviderRef struct {
	ID           string `json:"id"`
	Provider     string `json:"provider"`
	ProviderSlug string `json:"provider_slug"`
}

// Topic groups ordered questions under a provider.
type Topic struct {
	ID         string       `json:"id"`
	Topic      string       `json:"topic"`
	TopicSlug  string       `json:"topic_slug"`
	ProviderID string       `json:"provider_id"`
	QnCount    int          `json:"qn_count"`
	Tags       []string     `json:"tags"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
	Provider   *ProviderRef `json:"provider,omitempty"`
}

// TopicRef is the topic snapshot embedded in question reads.
type TopicRef struct {
	ID         string `json:"id"`
	Topic      string `json:"topic"`
	TopicSlug  string `json:"topic_slug"`
	ProviderID string `json:"provider_id"`
	QnCount    int    `json:"qn_count"`
}

// Option is one answer choice.
type Option struct {
	OptionNo   int    `json:"option_no" validate:"min=1"`
	OptionText string `json:"option_text" validate:"required"`
	ImageURL   string `json:"image_url,omitempty" validate:"omitempty,url"`
}

// Question is a single quiz item positioned by SeqNo inside its topic.
type Question struct {
	ID          string     `json:"id"`
	TopicID     string     `json:"topic_id"`
	SeqNo       int        `json:"seq_no"`
	QnSlug      string     `json:"qn_slug"`
	Question    string     `json:"question"`
	Answer      int        `json:"answer"`
	Options     []Option   `json:"options"`
	Explanation string     `json:"explanation,omitempty"`
	ImageURL    string     `json:"image_url,omitempty"`
	Difficulty  Difficulty `json:"difficulty"`
	Tags        []string   `json:"tags"`
	Status      Status     `json:"status"`
	IsPremium   bool       `json:"is_premium"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Topic       *TopicRef  `json:"topic,omitempty"`
}

// Published reports whether read paths may serve the question.
func (q Question) Published() bool {
	return q.Status == StatusPublished
}

// QuestionPage is one page of questions plus the size of the full result.
type QuestionPage struct {
	Questions  []Question `json:"questions"`
	TotalCount int        `json:"total_count"`
}

// ProviderPatch lists provider fields to change; nil fields are kept.
type ProviderPatch struct {
	Provider     *string
	ProviderSlug *string
}

// TopicPatch lists topic fields to change; nil fields are kept.
type TopicPatch struct {
	Topic      *string
	TopicSlug  *string
	ProviderID *string
	Tags       *[]string
}

// QuestionPatch lists question fields to change; nil fields are kept.
type QuestionPatch struct {
	TopicID     *string
	SeqNo       *int
	QnSlug      *string
	Question    *string
	Answer      *int
	Options     *[]Option
	Explanation *string
	ImageURL    *string
	Difficulty  *Difficulty
	Tags        *[]string
	Status      *Status
	IsPremium   *bool
}

// QuestionFilter selects published questions of one topic, ordered by
// SeqNo. Tags match when a question carries any of them; SeqNos restricts to
// the listed positions. Skip and Limit page the result; Limit 0 means all.
type QuestionFilter struct {
	TopicID string
	Tags    []string
	SeqNos  []int
	Skip    int
	Limit   int
}
