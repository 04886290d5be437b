package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ShepherdDev/rock-labs-forums/internal/domain/model"
	"github.com/ShepherdDev/rock-labs-forums/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.TopicStore = (*TopicRepo)(nil)

// TopicRepo is the SQLite implementation of the TopicStore port interface.
type TopicRepo struct {
	db *DB
}

// NewTopicRepo creates a new TopicRepo backed by the given DB.
func NewTopicRepo(db *DB) *TopicRepo {
	return &TopicRepo{db: db}
}

const topicSelect = `
SELECT t.id, t.name, t.description, t.category_id,
       t.created_by_alias_id, t.created_at, t.modified_at,
       pa.person_id, p.name
FROM topics t
LEFT JOIN person_aliases pa ON pa.id = t.created_by_alias_id
LEFT JOIN persons p ON p.id = pa.person_id`

// Create inserts a topic and returns it with its assigned ID. A zero
// CreatedAt is replaced with the current UTC time.
func (r *TopicRepo) Create(ctx context.Context, topic model.Topic) (model.Topic, error) {
	const query = `INSERT INTO topics (name, description, category_id, created_by_alias_id, created_at) VALUES (?, ?, ?, ?, ?)`

	if topic.CreatedAt.IsZero() {
		topic.CreatedAt = time.Now().UTC()
	}

	result, err := r.db.writer(ctx).ExecContext(ctx, query,
		topic.Name, topic.Description, topic.CategoryID,
		topic.CreatedByAliasID, topic.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return model.Topic{}, fmt.Errorf("create topic %q: %w", topic.Name, err)
	}

	topic.ID, err = result.LastInsertId()
	if err != nil {
		return model.Topic{}, fmt.Errorf("topic insert id: %w", err)
	}

	return topic, nil
}

// Get returns a topic by id with author display data joined in.
func (r *TopicRepo) Get(ctx context.Context, id int64) (*model.Topic, error) {
	row := r.db.reader(ctx).QueryRowContext(ctx, topicSelect+` WHERE t.id = ?`, id)

	topic, err := scanTopic(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get topic %d: %w", id, driven.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get topic %d: %w", id, err)
	}

	return topic, nil
}

// ListByCategory returns topics in the category, newest first.
func (r *TopicRepo) ListByCategory(ctx context.Context, categoryID int64) ([]model.Topic, error) {
	query := topicSelect + ` WHERE t.category_id = ? ORDER BY t.created_at DESC, t.id DESC`

	rows, err := r.db.reader(ctx).QueryContext(ctx, query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list topics in category %d: %w", categoryID, err)
	}
	defer rows.Close()

	var topics []model.Topic
	for rows.Next() {
		topic, err := scanTopic(rows)
		if err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		topics = append(topics, *topic)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate topics in category %d: %w", categoryID, err)
	}

	return topics, nil
}

// Delete removes a topic by id.
func (r *TopicRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.writer(ctx).ExecContext(ctx, `DELETE FROM topics WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete topic %d: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete topic %d: %w", id, err)
	}
	if rows == 0 {
		return fmt.Errorf("delete topic %d: %w", id, driven.ErrNotFound)
	}

	return nil
}

func scanTopic(s rowScanner) (*model.Topic, error) {
	var (
		topic          model.Topic
		createdByAlias sql.NullInt64
		createdAt      string
		modifiedAt     sql.NullString
		authorPersonID sql.NullInt64
		authorName     sql.NullString
	)

	err := s.Scan(
		&topic.ID, &topic.Name, &topic.Description, &topic.CategoryID,
		&createdByAlias, &createdAt, &modifiedAt,
		&authorPersonID, &authorName,
	)
	if err != nil {
		return nil, err
	}

	if createdByAlias.Valid {
		topic.CreatedByAliasID = &createdByAlias.Int64
	}
	if authorPersonID.Valid {
		topic.AuthorPersonID = &authorPersonID.Int64
	}
	topic.AuthorName = authorName.String

	topic.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if modifiedAt.Valid {
		t, err := parseTime(modifiedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse modified_at: %w", err)
		}
		topic.ModifiedAt = &t
	}

	return &topic, nil
}
