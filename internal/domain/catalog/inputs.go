package catalog

// CreateProviderInput is the payload for creating a provider.
type CreateProviderInput struct {
	Provider string `json:"provider" validate:"required,max=200"`
}

// UpdateProviderInput renames a provider.
type UpdateProviderInput struct {
	Provider *string `json:"provider" validate:"omitempty,min=1,max=200"`
}

// CreateTopicInput names the owning provider by display name.
type CreateTopicInput struct {
	Topic    string   `json:"topic" validate:"required,max=200"`
	Provider string   `json:"provider" validate:"required"`
	Tags     []string `json:"tags" validate:"omitempty,max=20,dive,max=50"`
}

// UpdateTopicInput changes topic fields; nil fields are kept.
type UpdateTopicInput struct {
	Topic      *string   `json:"topic" validate:"omitempty,min=1,max=200"`
	ProviderID *string   `json:"provider_id" validate:"omitempty,min=1"`
	Tags       *[]string `json:"tags" validate:"omitempty,max=20,dive,max=50"`
}

// CreateQuestionInput names the owning topic by display name. SeqNo is the
// requested position; nil appends.
type CreateQuestionInput struct {
	SeqNo       *int       `json:"seq_no" validate:"omitempty,min=1"`
	Topic       string     `json:"topic" validate:"required"`
	Question    string     `json:"question" validate:"required"`
	Answer      *int       `json:"answer" validate:"required"`
	Options     []Option   `json:"options" validate:"required,min=1,dive"`
	Explanation string     `json:"explanation"`
	ImageURL    string     `json:"image_url" validate:"omitempty,url"`
	Difficulty  Difficulty `json:"difficulty" validate:"required,oneof=easy medium hard"`
	Tags        []string   `json:"tags" validate:"omitempty,dive,max=50"`
	Status      Status     `json:"status" validate:"omitempty,oneof=published draft"`
	IsPremium   bool       `json:"is_premium"`
}

// UpdateQuestionInput changes question fields; nil fields are kept.
type UpdateQuestionInput struct {
	SeqNo       *int        `json:"seq_no" validate:"omitempty,min=1"`
	Topic       *string     `json:"topic" validate:"omitempty,min=1"`
	Question    *string     `json:"question" validate:"omitempty,min=1"`
	Answer      *int        `json:"answer"`
	Options     *[]Option   `json:"options" validate:"omitempty,min=1,dive"`
	Explanation *string     `json:"explanation"`
	ImageURL    *string     `json:"image_url" validate:"omitempty,url"`
	Difficulty  *Difficulty `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Tags        *[]string   `json:"tags" validate:"omitempty,dive,max=50"`
	Status      *Status     `json:"status" validate:"omitempty,oneof=published draft"`
	IsPremium   *bool       `json:"is_premium"`
}

// QuestionQuery selects one page of a topic's questions. Empty Tags means
// no tag filter.
type QuestionQuery struct {
	TopicSlug string
	Index     int
	Limit     int
	Tags      []string
}
