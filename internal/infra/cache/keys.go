package cache

import (
	"sort"
	"strconv"
	"strings"
)

// Family prefixes.
const (
	providersPrefix = "providers"
	topicsPrefix    = "topics"
	questionsPrefix = "questions"
	profilePrefix   = "profile"
)

// Patterns covering every key of a family.
const (
	ProvidersPattern = providersPrefix + ":*"
	TopicsPattern    = topicsPrefix + ":*"
	QuestionsPattern = questionsPrefix + ":*"
	ProfilePattern   = profilePrefix + ":*"
)

// ProvidersAllKey caches the full provider listing.
func ProvidersAllKey() string { return providersPrefix + ":all" }

// ProviderByIDKey caches a single provider looked up by id.
func ProviderByIDKey(id string) string { return join(providersPrefix, "id", id) }

// ProviderBySlugKey caches a single provider looked up by slug.
func ProviderBySlugKey(slug string) string { return join(providersPrefix, "slug", slug) }

// TopicsAllKey caches the full topic listing.
func TopicsAllKey() string { return topicsPrefix + ":all" }

// TopicByIDKey caches a single topic looked up by id.
func TopicByIDKey(id string) string { return join(topicsPrefix, "id", id) }

// TopicBySlugKey caches a single topic looked up by slug.
func TopicBySlugKey(slug string) string { return join(topicsPrefix, "slug", slug) }

// TopicsByProviderKey caches the topics owned by a provider.
func TopicsByProviderKey(providerID string) string {
	return join(topicsPrefix, "provider", providerID)
}

// TopicByIDPattern matches every key derived from one topic id.
func TopicByIDPattern(id string) string { return TopicByIDKey(id) + "*" }

// TopicsByProviderPattern matches every topic listing of one provider.
func TopicsByProviderPattern(providerID string) string {
	return TopicsByProviderKey(providerID) + "*"
}

// QuestionByIDKey caches a single question looked up by id.
func QuestionByIDKey(id string) string { return join(questionsPrefix, "id", id) }

// QuestionBySlugKey caches a single question looked up by slug.
func QuestionBySlugKey(slug string) string { return join(questionsPrefix, "slug", slug) }

// QuestionPageKey caches one page of a topic's published questions.
func QuestionPageKey(topicSlug string, index, limit int) string {
	return join(questionsPrefix, "topic", topicSlug, "index", strconv.Itoa(index), "limit", strconv.Itoa(limit))
}

// QuestionTagsPageKey caches one page of a topic's questions filtered by tags.
// The tag set is canonicalized so that tag order never changes the key.
func QuestionTagsPageKey(topicSlug string, tags []string, index, limit int) string {
	return join(questionsPrefix, "topic", topicSlug, "tags", CanonicalTags(tags), "index", strconv.Itoa(index), "limit", strconv.Itoa(limit))
}

// QuestionsByTopicPattern matches every page cached for one topic slug.
func QuestionsByTopicPattern(topicSlug string) string {
	return join(questionsPrefix, "topic", topicSlug) + ":*"
}

// ProfileKey caches a user's profile document.
func ProfileKey(userID string) string { return join(profilePrefix, userID) }

// CanonicalTags trims, lowercases, deduplicates and sorts tags, then joins
// them with commas.
func CanonicalTags(tags []string) string {
	return strings.Join(NormalizeTags(tags), ",")
}

// NormalizeTags returns the sorted, deduplicated, lowercased non-empty tags.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

func join(parts ...string) string {
	return strings.Join(parts, ":")
}
