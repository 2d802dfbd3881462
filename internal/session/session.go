// Package session runs a candidate's exam attempt: identity, countdown,
// answers, and a submission that fires at most once at a time.
package session

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/istanbulinstitute/educrm-exam/internal/model"
	"github.com/rs/zerolog"
)

// State is a session phase. Transitions only move forward.
type State int

const (
	StateInfo State = iota
	StateExam
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateInfo:
		return "info"
	case StateExam:
		return "exam"
	case StateCompleted:
		return "completed"
	}
	return "unknown"
}

var validate = validator.New()

// Session is safe for concurrent use by an input loop and its own timer.
type Session struct {
	client Client
	tick   time.Duration
	log    zerolog.Logger

	onTick       func(remaining int)
	onAutoSubmit func(*model.SubmitResult, error)

	mu         sync.Mutex
	state      State
	exam       *model.PublicExam
	identity   model.CandidateInfo
	answers    map[string]string
	current    int
	remaining  int
	submitting bool
	result     *model.SubmitResult
	stop       chan struct{}
	done       chan struct{}
}

// Option configures a Session.
type Option func(*Session)

// WithTick sets the countdown step. One step takes one second off the clock.
func WithTick(d time.Duration) Option {
	return func(s *Session) { s.tick = d }
}

// WithOnTick registers a callback run after every countdown step.
func WithOnTick(fn func(remaining int)) Option {
	return func(s *Session) { s.onTick = fn }
}

// WithOnAutoSubmit registers a callback for the submission fired at zero.
func WithOnAutoSubmit(fn func(*model.SubmitResult, error)) Option {
	return func(s *Session) { s.onAutoSubmit = fn }
}

// WithLogger sets the session logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) { s.log = log }
}

// New creates a session in the info state.
func New(client Client, opts ...Option) *Session {
	s := &Session{
		client:  client,
		tick:    time.Second,
		log:     zerolog.New(io.Discard),
		answers: make(map[string]string),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches the exam. A non-empty email also runs the eligibility checks.
func (s *Session) Load(ctx context.Context, code, email string) (*model.PublicExam, error) {
	s.mu.Lock()
	if s.state != StateInfo {
		s.mu.Unlock()
		return nil, ErrWrongState
	}
	s.mu.Unlock()

	exam, err := s.client.LoadExam(ctx, code, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.exam = exam
	s.mu.Unlock()
	return exam, nil
}

// Start validates the identity, moves to the exam state and starts the clock
// at duration × 60 seconds. The clock stops when ctx ends.
func (s *Session) Start(ctx context.Context, info model.CandidateInfo) error {
	info.FirstName = strings.TrimSpace(info.FirstName)
	info.LastName = strings.TrimSpace(info.LastName)
	info.Email = strings.TrimSpace(info.Email)
	if info.FirstName == "" || info.LastName == "" || validate.Var(info.Email, "required,email") != nil {
		return ErrIdentityInvalid
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInfo || s.exam == nil {
		return ErrWrongState
	}
	s.identity = info
	s.state = StateExam
	s.current = 0
	s.remaining = s.exam.DurationSeconds()
	s.stop = make(chan struct{})

	go s.runClock(ctx, s.stop)
	s.log.Debug().Str("exam_code", s.exam.ExamCode).Int("seconds", s.remaining).Msg("Exam started")
	return nil
}

func (s *Session) runClock(ctx context.Context, stop <-chan struct{}) {
	t := time.NewTicker(s.tick)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-t.C:
		}

		s.mu.Lock()
		if s.state != StateExam {
			s.mu.Unlock()
			return
		}
		s.remaining--
		left := s.remaining
		s.mu.Unlock()

		if s.onTick != nil {
			s.onTick(left)
		}
		if left <= 0 {
			res, err := s.submit(ctx)
			if errors.Is(err, ErrSubmitInFlight) || errors.Is(err, ErrWrongState) {
				return
			}
			if s.onAutoSubmit != nil {
				s.onAutoSubmit(res, err)
			}
			return
		}
	}
}

// Answer records or revises the answer for a question.
func (s *Session) Answer(questionID, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateExam {
		return ErrWrongState
	}
	if s.remaining <= 0 {
		return ErrTimeUp
	}
	s.answers[questionID] = answer
	return nil
}

// AnswerCurrent records an answer for the question at the cursor.
func (s *Session) AnswerCurrent(answer string) error {
	s.mu.Lock()
	if s.exam == nil || len(s.exam.Questions) == 0 {
		s.mu.Unlock()
		return ErrNoSuchQuestion
	}
	id := s.exam.Questions[s.current].ID.String()
	s.mu.Unlock()
	return s.Answer(id, answer)
}

// Next moves the cursor forward, stopping at the last question.
func (s *Session) Next() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exam != nil && s.current < len(s.exam.Questions)-1 {
		s.current++
	}
	return s.current
}

// Prev moves the cursor back, stopping at the first question.
func (s *Session) Prev() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current > 0 {
		s.current--
	}
	return s.current
}

// JumpTo moves the cursor to a zero-based question index.
func (s *Session) JumpTo(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exam == nil || i < 0 || i >= len(s.exam.Questions) {
		return ErrNoSuchQuestion
	}
	s.current = i
	return nil
}

// Current returns the cursor index and question.
func (s *Session) Current() (int, *model.PublicQuestion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exam == nil || len(s.exam.Questions) == 0 {
		return 0, nil
	}
	q := s.exam.Questions[s.current]
	return s.current, &q
}

// AnswerFor returns the recorded answer for a question.
func (s *Session) AnswerFor(questionID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.answers[questionID]
	return a, ok
}

// Answered returns how many questions have an answer.
func (s *Session) Answered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answers)
}

// Remaining returns the seconds left on the clock.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// State returns the current phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Result returns the graded result once completed.
func (s *Session) Result() *model.SubmitResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Done is closed when the session reaches the completed state.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Finish submits the answers. It fails with ErrSubmitInFlight while another
// submission is outstanding. A failed submission leaves the session in the
// exam state so the candidate can try again; nothing is retried automatically.
func (s *Session) Finish(ctx context.Context) (*model.SubmitResult, error) {
	return s.submit(ctx)
}

func (s *Session) submit(ctx context.Context) (*model.SubmitResult, error) {
	s.mu.Lock()
	if s.state != StateExam {
		s.mu.Unlock()
		return nil, ErrWrongState
	}
	if s.submitting {
		s.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	s.submitting = true

	answers := make(map[string]string, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}
	info := s.identity
	req := &model.SubmitRequest{ExamID: s.exam.ID.String(), StudentInfo: &info, Answers: answers}
	s.mu.Unlock()

	res, err := s.client.Submit(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
	if err != nil {
		s.log.Warn().Err(err).Msg("Submission failed")
		return nil, err
	}
	s.state = StateCompleted
	s.result = res
	close(s.stop)
	close(s.done)
	return res, nil
}
