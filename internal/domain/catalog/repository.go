package catalog

import "context"

// ProviderRepository is the durable store for providers. Lookups by id or
// slug include the provider's topics.
type ProviderRepository interface {
	CreateProvider(ctx context.Context, p Provider) (Provider, error)
	GetProviderByID(ctx context.Context, id string) (Provider, bool, error)
	GetProviderBySlug(ctx context.Context, slug string) (Provider, bool, error)
	ListProviders(ctx context.Context) ([]Provider, error)
	UpdateProvider(ctx context.Context, id string, patch ProviderPatch) (Provider, error)
	DeleteProvider(ctx context.Context, id string) error
	AdjustTopicCount(ctx context.Context, id string, delta int) error
}

// TopicRepository is the durable store for topics. Reads carry a provider
// snapshot.
type TopicRepository interface {
	CreateTopic(ctx context.Context, t Topic) (Topic, error)
	GetTopicByID(ctx context.Context, id string) (Topic, bool, error)
	GetTopicBySlug(ctx context.Context, slug string) (Topic, bool, error)
	ListTopics(ctx context.Context) ([]Topic, error)
	ListTopicsByProvider(ctx context.Context, providerID string) ([]Topic, error)
	UpdateTopic(ctx context.Context, id string, patch TopicPatch) (Topic, error)
	DeleteTopic(ctx context.Context, id string) error
	AdjustQuestionCount(ctx context.Context, id string, delta int) error
}

// QuestionRepository is the durable store for questions. Single lookups
// return questions of any status; filtered queries only see published ones.
type QuestionRepository interface {
	CreateQuestion(ctx context.Context, q Question) (Question, error)
	GetQuestionByID(ctx context.Context, id string) (Question, bool, error)
	GetQuestionBySlug(ctx context.Context, slug string) (Question, bool, error)
	UpdateQuestion(ctx context.Context, id string, patch QuestionPatch) (Question, error)
	DeleteQuestion(ctx context.Context, id string) error

	// LastSeqNo returns the highest seq_no among published questions, 0 if none.
	LastSeqNo(ctx context.Context, topicID string) (int, error)
	// ExistsAtSeqNo reports whether a published question holds seqNo.
	ExistsAtSeqNo(ctx context.Context, topicID string, seqNo int) (bool, error)
	// ShiftSeqNos adds one to seq_no of every question in the topic with
	// seq_no >= from, in a single statement.
	ShiftSeqNos(ctx context.Context, topicID string, from int) (int64, error)

	FindQuestions(ctx context.Context, filter QuestionFilter) ([]Question, error)
	CountQuestions(ctx context.Context, filter QuestionFilter) (int, error)
}

// Repository bundles the three stores, as implemented by catalogrepo.
type Repository interface {
	ProviderRepository
	TopicRepository
	QuestionRepository
}
