package catalogrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/quiz-catalog/internal/domain/catalog"
)

// PostgresRepository implements catalog.Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Ping checks the pool can reach the database.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

const (
	providerColumns = `p.id::text, p.provider, p.provider_slug, p.topic_count, p.created_at, p.updated_at`
	topicColumns    = `t.id::text, t.topic, t.topic_slug, t.provider_id::text, t.qn_count, t.tags, t.created_at, t.updated_at`
	questionColumns = `q.id::text, q.topic_id::text, q.seq_no, q.qn_slug, q.question, q.answer, q.options,
		q.explanation, q.image_url, q.difficulty, q.tags, q.status, q.is_premium, q.created_at, q.updated_at,
		t.topic, t.topic_slug, t.provider_id::text, t.qn_count`
)

// Providers.

func (r *PostgresRepository) CreateProvider(ctx context.Context, p catalog.Provider) (catalog.Provider, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO providers AS p (id, provider, provider_slug)
		VALUES ($1, $2, $3)
		RETURNING `+providerColumns,
		uuid.NewString(), p.Provider, p.ProviderSlug)
	created, err := scanProvider(row)
	if err != nil {
		return catalog.Provider{}, translate(err)
	}
	return created, nil
}

func (r *PostgresRepository) GetProviderByID(ctx context.Context, id string) (catalog.Provider, bool, error) {
	if !validID(id) {
		return catalog.Provider{}, false, nil
	}
	return r.getProvider(ctx, `p.id = $1`, id)
}

func (r *PostgresRepository) GetProviderBySlug(ctx context.Context, slug string) (catalog.Provider, bool, error) {
	return r.getProvider(ctx, `p.provider_slug = $1`, slug)
}

func (r *PostgresRepository) getProvider(ctx context.Context, where string, arg any) (catalog.Provider, bool, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+providerColumns+` FROM providers p WHERE `+where+` LIMIT 1`, arg)
	if err != nil {
		return catalog.Provider{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return catalog.Provider{}, false, rows.Err()
	}
	provider, err := scanProvider(rows)
	if err != nil {
		return catalog.Provider{}, false, err
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return catalog.Provider{}, false, err
	}
	topics, err := r.queryTopics(ctx, `WHERE t.provider_id = $1 ORDER BY t.created_at DESC`, provider.ID)
	if err != nil {
		return catalog.Provider{}, false, err
	}
	provider.Topics = topics
	return provider, true, nil
}

func (r *PostgresRepository) ListProviders(ctx context.Context) ([]catalog.Provider, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+providerColumns+` FROM providers p ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	providers := make([]catalog.Provider, 0)
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return providers, rows.Err()
}

func (r *PostgresRepository) UpdateProvider(ctx context.Context, id string, patch catalog.ProviderPatch) (catalog.Provider, error) {
	if !validID(id) {
		return catalog.Provider{}, catalog.ErrNotFound
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE providers AS p
		SET provider = COALESCE($2, p.provider),
			provider_slug = COALESCE($3, p.provider_slug),
			updated_at = now()
		WHERE p.id = $1
		RETURNING `+providerColumns,
		id, patch.Provider, patch.ProviderSlug)
	updated, err := scanProvider(row)
	if err != nil {
		return catalog.Provider{}, translate(err)
	}
	return updated, nil
}

func (r *PostgresRepository) DeleteProvider(ctx context.Context, id string) error {
	return r.deleteByID(ctx, `DELETE FROM providers WHERE id = $1`, id)
}

func (r *PostgresRepository) AdjustTopicCount(ctx context.Context, id string, delta int) error {
	return r.execOne(ctx, `UPDATE providers SET topic_count = topic_count + $2, updated_at = now() WHERE id = $1`, id, delta)
}

// Topics.

func (r *PostgresRepository) CreateTopic(ctx context.Context, t catalog.Topic) (catalog.Topic, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO topics (id, topic, topic_slug, provider_id, tags)
		VALUES ($1, $2, $3, $4, $5)
	`, id, t.Topic, t.TopicSlug, t.ProviderID, cloneStrings(t.Tags))
	if err != nil {
		return catalog.Topic{}, translate(err)
	}
	return r.mustTopic(ctx, id)
}

func (r *PostgresRepository) GetTopicByID(ctx context.Context, id string) (catalog.Topic, bool, error) {
	if !validID(id) {
		return catalog.Topic{}, false, nil
	}
	return r.getTopic(ctx, `WHERE t.id = $1`, id)
}

func (r *PostgresRepository) GetTopicBySlug(ctx context.Context, slug string) (catalog.Topic, bool, error) {
	return r.getTopic(ctx, `WHERE t.topic_slug = $1`, slug)
}

func (r *PostgresRepository) ListTopics(ctx context.Context) ([]catalog.Topic, error) {
	return r.queryTopics(ctx, `ORDER BY t.created_at DESC`)
}

func (r *PostgresRepository) ListTopicsByProvider(ctx context.Context, providerID string) ([]catalog.Topic, error) {
	if !validID(providerID) {
		return []catalog.Topic{}, nil
	}
	return r.queryTopics(ctx, `WHERE t.provider_id = $1 ORDER BY t.created_at DESC`, providerID)
}

func (r *PostgresRepository) UpdateTopic(ctx context.Context, id string, patch catalog.TopicPatch) (catalog.Topic, error) {
	if !validID(id) {
		return catalog.Topic{}, catalog.ErrNotFound
	}
	var tags any
	if patch.Tags != nil {
		tags = cloneStrings(*patch.Tags)
	}
	err := r.execOne(ctx, `
		UPDATE topics
		SET topic = COALESCE($2, topic),
			topic_slug = COALESCE($3, topic_slug),
			provider_id = COALESCE($4::uuid, provider_id),
			tags = COALESCE($5::text[], tags),
			updated_at = now()
		WHERE id = $1
	`, id, patch.Topic, patch.TopicSlug, patch.ProviderID, tags)
	if err != nil {
		return catalog.Topic{}, err
	}
	return r.mustTopic(ctx, id)
}

func (r *PostgresRepository) DeleteTopic(ctx context.Context, id string) error {
	return r.deleteByID(ctx, `DELETE FROM topics WHERE id = $1`, id)
}

func (r *PostgresRepository) AdjustQuestionCount(ctx context.Context, id string, delta int) error {
	return r.execOne(ctx, `UPDATE topics SET qn_count = qn_count + $2, updated_at = now() WHERE id = $1`, id, delta)
}

func (r *PostgresRepository) getTopic(ctx context.Context, where string, arg any) (catalog.Topic, bool, error) {
	topics, err := r.queryTopics(ctx, where+` LIMIT 1`, arg)
	if err != nil || len(topics) == 0 {
		return catalog.Topic{}, false, err
	}
	return topics[0], true, nil
}

func (r *PostgresRepository) mustTopic(ctx context.Context, id string) (catalog.Topic, error) {
	topic, found, err := r.GetTopicByID(ctx, id)
	if err != nil {
		return catalog.Topic{}, err
	}
	if !found {
		return catalog.Topic{}, catalog.ErrNotFound
	}
	return topic, nil
}

func (r *PostgresRepository) queryTopics(ctx context.Context, tail string, args ...any) ([]catalog.Topic, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+topicColumns+`, p.provider, p.provider_slug
		FROM topics t
		JOIN providers p ON p.id = t.provider_id
		`+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	topics := make([]catalog.Topic, 0)
	for rows.Next() {
		var (
			t   catalog.Topic
			ref catalog.ProviderRef
		)
		if err := rows.Scan(&t.ID, &t.Topic, &t.TopicSlug, &t.ProviderID, &t.QnCount, &t.Tags, &t.CreatedAt, &t.UpdatedAt,
			&ref.Provider, &ref.ProviderSlug); err != nil {
			return nil, err
		}
		ref.ID = t.ProviderID
		t.Provider = &ref
		t.Tags = cloneStrings(t.Tags)
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

// Questions.

func (r *PostgresRepository) CreateQuestion(ctx context.Context, q catalog.Question) (catalog.Question, error) {
	options, err := json.Marshal(q.Options)
	if err != nil {
		return catalog.Question{}, fmt.Errorf("encode options: %w", err)
	}
	id := uuid.NewString()
	_, err = r.pool.Exec(ctx, `
		INSERT INTO questions (id, topic_id, seq_no, qn_slug, question, answer, options, explanation,
			image_url, difficulty, tags, status, is_premium)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, id, q.TopicID, q.SeqNo, q.QnSlug, q.Question, q.Answer, options, q.Explanation,
		q.ImageURL, string(q.Difficulty), cloneStrings(q.Tags), string(q.Status), q.IsPremium)
	if err != nil {
		return catalog.Question{}, translate(err)
	}
	return r.mustQuestion(ctx, id)
}

func (r *PostgresRepository) GetQuestionByID(ctx context.Context, id string) (catalog.Question, bool, error) {
	if !validID(id) {
		return catalog.Question{}, false, nil
	}
	return r.getQuestion(ctx, `q.id = $1`, id)
}

func (r *PostgresRepository) GetQuestionBySlug(ctx context.Context, slug string) (catalog.Question, bool, error) {
	return r.getQuestion(ctx, `q.qn_slug = $1`, slug)
}

func (r *PostgresRepository) UpdateQuestion(ctx context.Context, id string, patch catalog.QuestionPatch) (catalog.Question, error) {
	if !validID(id) {
		return catalog.Question{}, catalog.ErrNotFound
	}
	var options, tags, difficulty, status any
	if patch.Options != nil {
		encoded, err := json.Marshal(*patch.Options)
		if err != nil {
			return catalog.Question{}, fmt.Errorf("encode options: %w", err)
		}
		options = encoded
	}
	if patch.Tags != nil {
		tags = cloneStrings(*patch.Tags)
	}
	if patch.Difficulty != nil {
		difficulty = string(*patch.Difficulty)
	}
	if patch.Status != nil {
		status = string(*patch.Status)
	}
	err := r.execOne(ctx, `
		UPDATE questions
		SET topic_id = COALESCE($2::uuid, topic_id),
			seq_no = COALESCE($3, seq_no),
			qn_slug = COALESCE($4, qn_slug),
			question = COALESCE($5, question),
			answer = COALESCE($6, answer),
			options = COALESCE($7::jsonb, options),
			explanation = COALESCE($8, explanation),
			image_url = COALESCE($9, image_url),
			difficulty = COALESCE($10, difficulty),
			tags = COALESCE($11::text[], tags),
			status = COALESCE($12, status),
			is_premium = COALESCE($13, is_premium),
			updated_at = now()
		WHERE id = $1
	`, id, patch.TopicID, patch.SeqNo, patch.QnSlug, patch.Question, patch.Answer, options,
		patch.Explanation, patch.ImageURL, difficulty, tags, status, patch.IsPremium)
	if err != nil {
		return catalog.Question{}, err
	}
	return r.mustQuestion(ctx, id)
}

func (r *PostgresRepository) DeleteQuestion(ctx context.Context, id string) error {
	return r.deleteByID(ctx, `DELETE FROM questions WHERE id = $1`, id)
}

func (r *PostgresRepository) LastSeqNo(ctx context.Context, topicID string) (int, error) {
	var last int
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(MAX(seq_no), 0)
		FROM questions
		WHERE topic_id = $1 AND status = 'published'
	`, topicID).Scan(&last)
	return last, err
}

func (r *PostgresRepository) ExistsAtSeqNo(ctx context.Context, topicID string, seqNo int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM questions
			WHERE topic_id = $1 AND seq_no = $2 AND status = 'published'
		)
	`, topicID, seqNo).Scan(&exists)
	return exists, err
}

func (r *PostgresRepository) ShiftSeqNos(ctx context.Context, topicID string, from int) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE questions
		SET seq_no = seq_no + 1, updated_at = now()
		WHERE topic_id = $1 AND seq_no >= $2
	`, topicID, from)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresRepository) FindQuestions(ctx context.Context, filter catalog.QuestionFilter) ([]catalog.Question, error) {
	where, args := questionPredicate(filter)
	args = append(args, filter.Skip)
	tail := fmt.Sprintf(`%s ORDER BY q.seq_no ASC OFFSET $%d`, where, len(args))
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		tail += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	return r.queryQuestions(ctx, tail, args...)
}

func (r *PostgresRepository) CountQuestions(ctx context.Context, filter catalog.QuestionFilter) (int, error) {
	where, args := questionPredicate(filter)
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM questions q `+where, args...).Scan(&count)
	return count, err
}

// questionPredicate builds the filter shared by FindQuestions and
// CountQuestions so a page and its total always agree.
func questionPredicate(filter catalog.QuestionFilter) (string, []any) {
	clauses := []string{`q.topic_id = $1`, `q.status = 'published'`}
	args := []any{filter.TopicID}
	if len(filter.Tags) > 0 {
		args = append(args, filter.Tags)
		clauses = append(clauses, fmt.Sprintf(`q.tags && $%d::text[]`, len(args)))
	}
	if len(filter.SeqNos) > 0 {
		args = append(args, filter.SeqNos)
		clauses = append(clauses, fmt.Sprintf(`q.seq_no = ANY($%d::int[])`, len(args)))
	}
	return `WHERE ` + strings.Join(clauses, ` AND `), args
}

func (r *PostgresRepository) getQuestion(ctx context.Context, where string, arg any) (catalog.Question, bool, error) {
	questions, err := r.queryQuestions(ctx, `WHERE `+where+` LIMIT 1`, arg)
	if err != nil || len(questions) == 0 {
		return catalog.Question{}, false, err
	}
	return questions[0], true, nil
}

func (r *PostgresRepository) mustQuestion(ctx context.Context, id string) (catalog.Question, error) {
	q, found, err := r.GetQuestionByID(ctx, id)
	if err != nil {
		return catalog.Question{}, err
	}
	if !found {
		return catalog.Question{}, catalog.ErrNotFound
	}
	return q, nil
}

func (r *PostgresRepository) queryQuestions(ctx context.Context, tail string, args ...any) ([]catalog.Question, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+questionColumns+`
		FROM questions q
		JOIN topics t ON t.id = q.topic_id
		`+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	questions := make([]catalog.Question, 0)
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// shared helpers

func (r *PostgresRepository) execOne(ctx context.Context, sql string, args ...any) error {
	if id, ok := args[0].(string); ok && !validID(id) {
		return catalog.ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) deleteByID(ctx context.Context, sql, id string) error {
	return r.execOne(ctx, sql, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProvider(row rowScanner) (catalog.Provider, error) {
	var p catalog.Provider
	if err := row.Scan(&p.ID, &p.Provider, &p.ProviderSlug, &p.TopicCount, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return catalog.Provider{}, err
	}
	return p, nil
}

func scanQuestion(row rowScanner) (catalog.Question, error) {
	var (
		q          catalog.Question
		ref        catalog.TopicRef
		options    []byte
		difficulty string
		status     string
	)
	err := row.Scan(&q.ID, &q.TopicID, &q.SeqNo, &q.QnSlug, &q.Question, &q.Answer, &options,
		&q.Explanation, &q.ImageURL, &difficulty, &q.Tags, &status, &q.IsPremium, &q.CreatedAt, &q.UpdatedAt,
		&ref.Topic, &ref.TopicSlug, &ref.ProviderID, &ref.QnCount)
	if err != nil {
		return catalog.Question{}, err
	}
	if len(options) > 0 {
		if err := json.Unmarshal(options, &q.Options); err != nil {
			return catalog.Question{}, fmt.Errorf("decode options of question %s: %w", q.ID, err)
		}
	}
	q.Difficulty = catalog.Difficulty(difficulty)
	q.Status = catalog.Status(status)
	q.Tags = cloneStrings(q.Tags)
	ref.ID = q.TopicID
	q.Topic = &ref
	return q, nil
}

// translate maps pgx and Postgres errors onto the catalog sentinels.
func translate(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", catalog.ErrConflict, pgErr.ConstraintName)
		case "23503":
			return fmt.Errorf("%w: %s", catalog.ErrInvalidReference, pgErr.ConstraintName)
		case "22P02":
			return catalog.ErrNotFound
		}
	}
	return err
}

// validID guards uuid columns against malformed path parameters.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

var _ catalog.Repository = (*PostgresRepository)(nil)
