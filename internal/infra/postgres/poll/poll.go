package infra_postgres_poll

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/humanbelnik/livepoll/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

type Driver struct {
	db  *sqlx.DB
	now func() time.Time
}

func New(db *sqlx.DB) *Driver {
	return &Driver{
		db:  db,
		now: time.Now,
	}
}

type questionsJSON []model.Question

func (q questionsJSON) Value() (driver.Value, error) {
	if q == nil {
		q = questionsJSON{}
	}
	b, err := json.Marshal([]model.Question(q))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (q *questionsJSON) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	case nil:
		*q = questionsJSON{}
		return nil
	default:
		return fmt.Errorf("unsupported questions type %T", src)
	}
	return json.Unmarshal(raw, (*[]model.Question)(q))
}

type pollDTO struct {
	ID        string        `db:"id"`
	Name      string        `db:"name"`
	Questions questionsJSON `db:"questions"`
	Status    string        `db:"status"`
	CreatedAt time.Time     `db:"created_at"`
	UpdatedAt time.Time     `db:"updated_at"`
}

type voteDTO struct {
	QuestionIndex int    `db:"question_index"`
	OptionText    string `db:"option_text"`
	Count         int    `db:"count"`
}

func (d *Driver) Create(ctx context.Context, p model.Poll) error {
	dto := pollDTO{
		ID:        string(p.ID),
		Name:      p.Name,
		Questions: questionsJSON(p.Questions),
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}

	query := `
		INSERT INTO polls (id, name, questions, status, created_at, updated_at)
		VALUES (:id, :name, :questions, :status, :created_at, :updated_at)
	`

	_, err := d.db.NamedExecContext(ctx, query, dto)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%w: poll %s already exists", model.ErrConflict, p.ID)
		}
		return persistence(err)
	}
	return nil
}

func (d *Driver) Get(ctx context.Context, id model.PollID) (model.Poll, error) {
	return load(ctx, d.db, id)
}

func (d *Driver) Delete(ctx context.Context, id model.PollID) error {
	query := `
		DELETE FROM polls
		WHERE id = $1
	`

	result, err := d.db.ExecContext(ctx, query, string(id))
	if err != nil {
		return persistence(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return persistence(err)
	}
	if rowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (d *Driver) SetStatus(ctx context.Context, id model.PollID, status model.Status) (model.Poll, error) {
	return d.inTx(ctx, id, func(tx *sqlx.Tx) error {
		query := `
			UPDATE polls
			SET status = $1
			WHERE id = $2
		`
		_, err := tx.ExecContext(ctx, query, string(status), string(id))
		return err
	})
}

// IncrementVote relies on the upsert to make the +1 atomic even without
// the application-level lock.
func (d *Driver) IncrementVote(ctx context.Context, id model.PollID, questionIndex int, option string) (model.Poll, error) {
	return d.inTx(ctx, id, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO poll_votes (poll_id, question_index, option_text, count)
			VALUES ($1, $2, $3, 1)
			ON CONFLICT (poll_id, question_index, option_text)
			DO UPDATE SET count = poll_votes.count + 1
		`
		_, err := tx.ExecContext(ctx, query, string(id), questionIndex, option)
		return err
	})
}

func (d *Driver) ResetVotes(ctx context.Context, id model.PollID) (model.Poll, error) {
	return d.inTx(ctx, id, func(tx *sqlx.Tx) error {
		query := `
			DELETE FROM poll_votes
			WHERE poll_id = $1
		`
		_, err := tx.ExecContext(ctx, query, string(id))
		return err
	})
}

// inTx locks the poll row by touching updated_at, runs fn and returns the
// snapshot as seen inside the same transaction.
func (d *Driver) inTx(ctx context.Context, id model.PollID, fn func(tx *sqlx.Tx) error) (model.Poll, error) {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Poll{}, persistence(err)
	}
	defer func() { _ = tx.Rollback() }()

	touchQuery := `
		UPDATE polls
		SET updated_at = $1
		WHERE id = $2
	`
	result, err := tx.ExecContext(ctx, touchQuery, d.now().UTC(), string(id))
	if err != nil {
		return model.Poll{}, persistence(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return model.Poll{}, persistence(err)
	}
	if rowsAffected == 0 {
		return model.Poll{}, model.ErrNotFound
	}

	if err := fn(tx); err != nil {
		return model.Poll{}, persistence(err)
	}

	p, err := load(ctx, tx, id)
	if err != nil {
		return model.Poll{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Poll{}, persistence(err)
	}
	return p, nil
}

func load(ctx context.Context, q sqlx.QueryerContext, id model.PollID) (model.Poll, error) {
	var dto pollDTO
	pollQuery := `
		SELECT id, name, questions, status, created_at, updated_at
		FROM polls
		WHERE id = $1
	`
	if err := sqlx.GetContext(ctx, q, &dto, pollQuery, string(id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Poll{}, model.ErrNotFound
		}
		return model.Poll{}, persistence(err)
	}

	var votes []voteDTO
	votesQuery := `
		SELECT question_index, option_text, count
		FROM poll_votes
		WHERE poll_id = $1
	`
	if err := sqlx.SelectContext(ctx, q, &votes, votesQuery, string(id)); err != nil {
		return model.Poll{}, persistence(err)
	}

	tally := make(map[model.TallyKey]int, len(votes))
	for _, v := range votes {
		tally[model.TallyKey{Question: v.QuestionIndex, Option: v.OptionText}] = v.Count
	}

	return model.Poll{
		ID:        model.PollID(dto.ID),
		Name:      dto.Name,
		Questions: []model.Question(dto.Questions),
		Status:    model.Status(dto.Status),
		CreatedAt: dto.CreatedAt,
		UpdatedAt: dto.UpdatedAt,
	}.WithTally(tally), nil
}

func persistence(err error) error {
	return fmt.Errorf("%w: %w", model.ErrPersistence, err)
}
