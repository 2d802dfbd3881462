package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/istanbulinstitute/educrm-exam/internal/i18n"
	"github.com/istanbulinstitute/educrm-exam/internal/model"
	"github.com/istanbulinstitute/educrm-exam/internal/session"
)

// runner drives a session from line-based terminal input. Output is shared
// with the session clock, so every write holds mu.
type runner struct {
	lines <-chan string
	loc   *i18n.Localizer

	// checkEligibility sends the email with the exam fetch. Off lets a
	// first-time candidate start; submission registers them.
	checkEligibility bool

	// autoFailed receives the error of a failed timer submission.
	autoFailed chan error

	mu  sync.Mutex
	out io.Writer

	count int
}

func newRunner(in io.Reader, out io.Writer, loc *i18n.Localizer) *runner {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()
	return &runner{lines: lines, loc: loc, out: out, autoFailed: make(chan error, 1)}
}

func (r *runner) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, format, args...)
}

func (r *runner) println(s string) { r.printf("%s\n", s) }

func (r *runner) run(ctx context.Context, sess *session.Session, code string, info model.CandidateInfo) error {
	info, err := r.askIdentity(ctx, info)
	if err != nil {
		return err
	}

	email := ""
	if r.checkEligibility {
		email = info.Email
	}
	exam, err := sess.Load(ctx, code, email)
	if err != nil {
		r.println(r.describe(err))
		return err
	}
	r.count = len(exam.Questions)
	r.println(r.loc.Td("cli.exam_header", map[string]any{
		"Title": exam.Title, "Count": r.count, "Minutes": exam.Duration,
	}))

	if err := sess.Start(ctx, info); err != nil {
		r.println(r.describe(err))
		return err
	}
	r.println(r.loc.T("cli.help"))
	r.show(sess)

	lines := r.lines
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sess.Done():
			r.printResult(sess.Result())
			return nil
		case err := <-r.autoFailed:
			// With input still open the candidate can retry with f.
			if lines == nil {
				return err
			}
		case line, ok := <-lines:
			if !ok {
				// Input closed: hand in what was answered.
				lines = nil
				if sess.State() == session.StateCompleted {
					continue
				}
				if _, err := sess.Finish(ctx); err != nil && !errors.Is(err, session.ErrSubmitInFlight) {
					r.println(r.describe(err))
					return err
				}
				continue
			}
			if err := r.handle(ctx, sess, line); err != nil {
				r.println(r.describe(err))
			}
		}
	}
}

func (r *runner) askIdentity(ctx context.Context, info model.CandidateInfo) (model.CandidateInfo, error) {
	fields := []struct {
		msgID string
		dst   *string
	}{
		{"cli.enter_first_name", &info.FirstName},
		{"cli.enter_last_name", &info.LastName},
		{"cli.enter_email", &info.Email},
	}
	for _, f := range fields {
		if strings.TrimSpace(*f.dst) != "" {
			continue
		}
		r.printf("%s: ", r.loc.T(f.msgID))
		select {
		case <-ctx.Done():
			return info, ctx.Err()
		case line, ok := <-r.lines:
			if !ok {
				return info, io.ErrUnexpectedEOF
			}
			*f.dst = strings.TrimSpace(line)
		}
	}
	return info, nil
}

func (r *runner) handle(ctx context.Context, sess *session.Session, line string) error {
	line = strings.TrimSpace(line)
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "":
		return nil
	case "n":
		sess.Next()
		r.show(sess)
	case "p":
		sess.Prev()
		r.show(sess)
	case "j":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return session.ErrNoSuchQuestion
		}
		if err := sess.JumpTo(n - 1); err != nil {
			return err
		}
		r.show(sess)
	case "a":
		if err := sess.AnswerCurrent(arg); err != nil {
			return err
		}
		r.println(r.loc.T("cli.answer_saved"))
	case "f":
		_, err := sess.Finish(ctx)
		return err
	default:
		r.println(r.loc.T("cli.help"))
	}
	return nil
}

func (r *runner) show(sess *session.Session) {
	idx, q := sess.Current()
	if q == nil {
		return
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(r.loc.Td("cli.question_header", map[string]any{
		"Index": idx + 1, "Count": r.count, "Points": q.Points,
	}))
	b.WriteString("\n" + q.QuestionText + "\n")

	switch q.QuestionType {
	case model.QuestionTypeMultipleChoice:
		labels := make([]string, 0, len(q.Options))
		for l := range q.Options {
			labels = append(labels, l)
		}
		sort.Strings(labels)
		for _, l := range labels {
			fmt.Fprintf(&b, "  %s) %s\n", l, q.Options[l])
		}
	case model.QuestionTypeTrueFalse:
		b.WriteString("  Doğru / Yanlış\n")
	}

	if a, ok := sess.AnswerFor(q.ID.String()); ok {
		fmt.Fprintf(&b, "> %s\n", a)
	}
	b.WriteString(r.loc.Td("cli.time_left", map[string]any{"Time": clock(sess.Remaining())}))
	r.println(b.String())
}

// onTick reports the clock once a minute and during the last ten seconds.
func (r *runner) onTick(remaining int) {
	switch {
	case remaining <= 0:
		r.println(r.loc.T("cli.time_up"))
	case remaining%60 == 0 || remaining <= 10:
		r.println(r.loc.Td("cli.time_left", map[string]any{"Time": clock(remaining)}))
	}
}

func (r *runner) onAutoSubmit(_ *model.SubmitResult, err error) {
	if err == nil {
		return
	}
	r.println(r.describe(err))
	r.println(r.loc.T("cli.help"))
	select {
	case r.autoFailed <- err:
	default:
	}
}

func (r *runner) printResult(res *model.SubmitResult) {
	if res == nil {
		return
	}
	r.println(r.loc.Td("cli.score", map[string]any{
		"Score": res.Score, "Total": res.TotalScore, "Passing": res.PassingScore,
	}))
	if res.Message != "" {
		r.println(res.Message)
	}
}

// sentinelMessages maps session errors to catalog IDs, checked in order.
var sentinelMessages = []struct {
	err   error
	msgID string
}{
	{session.ErrIdentityInvalid, "cli.identity_invalid"},
	{session.ErrTimeUp, "cli.time_up"},
	{session.ErrExamNotFound, "PUBLIC_EXAM_NOT_FOUND"},
	{session.ErrCandidateUnknown, "CANDIDATE_UNKNOWN"},
	{session.ErrNotRegistered, "NOT_REGISTERED"},
	{session.ErrPaymentIncomplete, "PAYMENT_INCOMPLETE"},
	{session.ErrAlreadySubmitted, "ALREADY_SUBMITTED"},
	{session.ErrTimeExpired, "EXAM_TIME_EXPIRED"},
	{session.ErrRateLimited, "RATE_LIMIT_EXCEEDED"},
	{session.ErrWrongState, "cli.wrong_state"},
	{session.ErrSubmitInFlight, "cli.submit_in_flight"},
	{session.ErrNoSuchQuestion, "cli.no_such_question"},
}

// describe turns an error into a line for the candidate. API errors already
// carry a localized message from the server.
func (r *runner) describe(err error) string {
	var apiErr *session.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	for _, m := range sentinelMessages {
		if errors.Is(err, m.err) {
			return r.loc.T(m.msgID)
		}
	}
	return err.Error()
}

func clock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
