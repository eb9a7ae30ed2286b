package model

import (
	"time"

	"github.com/google/uuid"
)

type PollID string

const EmptyPollID PollID = ""

func NewPollID() PollID {
	return PollID(uuid.New().String())
}

// ParsePollID accepts only canonical UUIDs.
func ParsePollID(raw string) (PollID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return EmptyPollID, ErrInvalidInput
	}
	return PollID(id.String()), nil
}

type Question struct {
	Text           string   `json:"text"`
	Options        []string `json:"options"`
	HideAnswers    bool     `json:"hideAnswers"`
	ShowPercentage bool     `json:"showPercentage"`
}

func (q Question) HasOption(option string) bool {
	for _, o := range q.Options {
		if o == option {
			return true
		}
	}
	return false
}

// Poll is the snapshot broadcast to observers and returned by the API.
// Votes is the flat tally keyed by option text across every question,
// QuestionVotes[i] is the tally scoped to question i.
type Poll struct {
	ID            PollID           `json:"id"`
	Name          string           `json:"name"`
	Questions     []Question       `json:"questions"`
	Votes         map[string]int   `json:"votes"`
	QuestionVotes []map[string]int `json:"question_votes"`
	Status        Status           `json:"status"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func NewPoll(name string, questions []Question, now time.Time) Poll {
	return Poll{
		ID:        NewPollID(),
		Name:      name,
		Questions: questions,
		Status:    StatusPaused,
		CreatedAt: now,
		UpdatedAt: now,
	}.WithTally(nil)
}

type TallyKey struct {
	Question int
	Option   string
}

// WithTally rebuilds both views of the tally from per-question counts.
func (p Poll) WithTally(counts map[TallyKey]int) Poll {
	p.Votes = make(map[string]int)
	p.QuestionVotes = make([]map[string]int, len(p.Questions))
	for i := range p.QuestionVotes {
		p.QuestionVotes[i] = make(map[string]int)
	}

	for k, n := range counts {
		if n <= 0 {
			continue
		}
		p.Votes[k.Option] += n
		if k.Question >= 0 && k.Question < len(p.QuestionVotes) {
			p.QuestionVotes[k.Question][k.Option] += n
		}
	}
	return p
}

// Clone deep-copies slices and maps so snapshots can be shared across goroutines.
func (p Poll) Clone() Poll {
	out := p

	out.Questions = make([]Question, len(p.Questions))
	for i, q := range p.Questions {
		q.Options = append([]string(nil), q.Options...)
		out.Questions[i] = q
	}

	out.Votes = make(map[string]int, len(p.Votes))
	for k, v := range p.Votes {
		out.Votes[k] = v
	}

	out.QuestionVotes = make([]map[string]int, len(p.QuestionVotes))
	for i, m := range p.QuestionVotes {
		cp := make(map[string]int, len(m))
		for k, v := range m {
			cp[k] = v
		}
		out.QuestionVotes[i] = cp
	}
	return out
}

func (p Poll) TotalVotes() int {
	total := 0
	for _, n := range p.Votes {
		total += n
	}
	return total
}

// OptionResult is one row of the exported results.
type OptionResult struct {
	Option string
	Votes  int
}

// ValidatePollInput checks a poll definition before it is stored.
func ValidatePollInput(name string, questions []Question) error {
	if name == "" {
		return errorf(ErrInvalidInput, "poll name is required")
	}
	if len(questions) == 0 {
		return errorf(ErrInvalidInput, "at least one question is required")
	}
	for i, q := range questions {
		if q.Text == "" {
			return errorf(ErrInvalidInput, "question %d: text is required", i)
		}
		if len(q.Options) == 0 {
			return errorf(ErrInvalidInput, "question %d: at least one option is required", i)
		}
		for j, o := range q.Options {
			if o == "" {
				return errorf(ErrInvalidInput, "question %d: option %d is empty", i, j)
			}
		}
	}
	return nil
}
