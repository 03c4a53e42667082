package bookmark

import (
	"context"
	"log/slog"

	"github.com/yanqian/quiz-catalog/internal/domain/catalog"
	"github.com/yanqian/quiz-catalog/internal/infra/cache"
	apperrors "github.com/yanqian/quiz-catalog/pkg/errors"
)

// Service manages per-user, per-topic bookmark sets.
type Service interface {
	List(ctx context.Context, userID, topicSlug string) ([]int, error)
	IsBookmarked(ctx context.Context, userID, topicSlug string, seqNo int) (bool, error)
	Toggle(ctx context.Context, userID, topicSlug string, seqNo int) (bool, error)
	Clear(ctx context.Context, userID, topicSlug string) error
}

// TopicLookup resolves topics by slug; catalog.Service satisfies it.
type TopicLookup interface {
	GetTopicBySlug(ctx context.Context, slug string) (catalog.Topic, error)
}

type service struct {
	repo   Repository
	topics TopicLookup
	cache  *cache.Aside
	logger *slog.Logger
}

// NewService wires up the bookmark domain.
func NewService(repo Repository, topics TopicLookup, aside *cache.Aside, logger *slog.Logger) Service {
	return &service{
		repo:   repo,
		topics: topics,
		cache:  aside,
		logger: logger.With("component", "bookmark.service"),
	}
}

func (s *service) List(ctx context.Context, userID, topicSlug string) ([]int, error) {
	topic, err := s.topics.GetTopicBySlug(ctx, topicSlug)
	if err != nil {
		return nil, err
	}
	profile, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return profile.SeqNos(topic.ID), nil
}

func (s *service) IsBookmarked(ctx context.Context, userID, topicSlug string, seqNo int) (bool, error) {
	seqs, err := s.List(ctx, userID, topicSlug)
	if err != nil {
		return false, err
	}
	return indexOf(seqs, seqNo) >= 0, nil
}

// Toggle flips seqNo in the user's set for the topic. The upper bound is
// qn_count, which also counts draft questions.
func (s *service) Toggle(ctx context.Context, userID, topicSlug string, seqNo int) (bool, error) {
	topic, err := s.topics.GetTopicBySlug(ctx, topicSlug)
	if err != nil {
		return false, err
	}
	if seqNo < 1 || seqNo > topic.QnCount {
		return false, apperrors.Wrap(apperrors.CodeInvalidInput, "Invalid question sequence number", nil)
	}
	profile, err := s.profile(ctx, userID)
	if err != nil {
		return false, err
	}
	bookmarks, marked := toggle(profile.Bookmarks, topic.ID, seqNo)
	if err := s.save(ctx, profile, bookmarks); err != nil {
		return false, err
	}
	return marked, nil
}

func (s *service) Clear(ctx context.Context, userID, topicSlug string) error {
	topic, err := s.topics.GetTopicBySlug(ctx, topicSlug)
	if err != nil {
		return err
	}
	profile, err := s.profile(ctx, userID)
	if err != nil {
		return err
	}
	bookmarks, removed := removeTopic(profile.Bookmarks, topic.ID)
	if !removed {
		return nil
	}
	return s.save(ctx, profile, bookmarks)
}

func (s *service) save(ctx context.Context, profile Profile, bookmarks []TopicBookmarks) error {
	if _, err := s.repo.SaveBookmarks(ctx, profile.ID, bookmarks); err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, "save bookmarks failed", err)
	}
	s.cache.Invalidate(ctx, cache.ProfileKey(profile.UserID))
	return nil
}

// profile loads the cached profile, creating it on first access and running
// the legacy migration at most once.
func (s *service) profile(ctx context.Context, userID string) (Profile, error) {
	key := cache.ProfileKey(userID)
	var cached Profile
	if s.cache.Read(ctx, key, &cached) {
		return cached, nil
	}
	profile, err := s.repo.Ensure(ctx, userID)
	if err != nil {
		return Profile{}, apperrors.Wrap(apperrors.CodeInternal, "load profile failed", err)
	}
	if migrated, changed := Migrate(profile); changed {
		profile, err = s.repo.SaveBookmarks(ctx, profile.ID, migrated.Bookmarks)
		if err != nil {
			return Profile{}, apperrors.Wrap(apperrors.CodeInternal, "migrate profile failed", err)
		}
		s.logger.Info("migrated legacy bookmarks", "user_id", userID, "topics", len(profile.Bookmarks))
	}
	s.cache.Write(ctx, key, profile, s.cache.ProfileTTL())
	return profile, nil
}
