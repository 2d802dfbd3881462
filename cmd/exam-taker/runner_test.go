package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/istanbulinstitute/educrm-exam/internal/i18n"
	"github.com/istanbulinstitute/educrm-exam/internal/model"
	"github.com/istanbulinstitute/educrm-exam/internal/response"
	"github.com/istanbulinstitute/educrm-exam/internal/session"
)

type stubClient struct {
	exam    *model.PublicExam
	loadErr error
	// knownEmails rejects any other non-empty email as the server does for
	// people it has never seen.
	knownEmails map[string]bool

	// submitErr fails every submission. When release is set the first
	// submission signals entered and waits for release.
	submitErr error
	entered   chan struct{}
	release   chan struct{}

	mu        sync.Mutex
	email     string
	calls     int
	submitted *model.SubmitRequest
}

func (c *stubClient) LoadExam(_ context.Context, _, email string) (*model.PublicExam, error) {
	c.mu.Lock()
	c.email = email
	c.mu.Unlock()
	if email != "" && c.knownEmails != nil && !c.knownEmails[email] {
		return nil, session.ErrCandidateUnknown
	}
	return c.exam, c.loadErr
}

func (c *stubClient) Submit(_ context.Context, req *model.SubmitRequest) (*model.SubmitResult, error) {
	c.mu.Lock()
	c.calls++
	first := c.calls == 1
	c.submitted = req
	c.mu.Unlock()
	if first && c.release != nil {
		close(c.entered)
		<-c.release
	}
	if c.submitErr != nil {
		return nil, c.submitErr
	}
	score := 0
	if req.Answers[c.exam.Questions[0].ID.String()] == "A" {
		score += 10
	}
	return &model.SubmitResult{ResultID: uuid.New(), Score: score, TotalScore: 20, PassingScore: 10, IsPassed: score >= 10, Message: "done"}, nil
}

func stubExam() *model.PublicExam {
	return &model.PublicExam{
		ID: uuid.New(), ExamCode: "KOD234", Title: "Go Temelleri", Duration: 5, TotalScore: 20,
		Questions: []model.PublicQuestion{
			{ID: uuid.New(), QuestionText: "Başkent?", QuestionType: model.QuestionTypeMultipleChoice, Options: map[string]string{"B": "İzmir", "A": "Ankara"}, Points: 10, Order: 1},
			{ID: uuid.New(), QuestionText: "Go derlenir.", QuestionType: model.QuestionTypeTrueFalse, Points: 10, Order: 2},
		},
	}
}

func runWith(t *testing.T, c *stubClient, input string, info model.CandidateInfo) (string, error) {
	t.Helper()
	return runOpts(t, c, strings.NewReader(input), info, false)
}

func runOpts(t *testing.T, c *stubClient, in io.Reader, info model.CandidateInfo, checkEligibility bool, opts ...session.Option) (string, error) {
	t.Helper()
	bundle, err := i18n.New("tr")
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	r := newRunner(in, &out, bundle.Localizer("en"))
	r.checkEligibility = checkEligibility
	opts = append([]session.Option{session.WithOnTick(r.onTick), session.WithOnAutoSubmit(r.onAutoSubmit)}, opts...)
	sess := session.New(c, opts...)
	err = r.run(t.Context(), sess, "kod234", info)

	r.mu.Lock()
	defer r.mu.Unlock()
	return out.String(), err
}

func TestRunnerFullAttempt(t *testing.T) {
	c := &stubClient{exam: stubExam()}
	input := "Ayşe\nKaya\nayse@example.com\na A\nn\na Doğru\nj 1\nf\n"

	out, err := runWith(t, c, input, model.CandidateInfo{})
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	if c.email != "" {
		t.Errorf("eligibility email sent without being asked: %q", c.email)
	}
	q := c.exam.Questions
	if c.submitted == nil || c.submitted.Answers[q[0].ID.String()] != "A" || c.submitted.Answers[q[1].ID.String()] != "Doğru" {
		t.Fatalf("submitted = %+v", c.submitted)
	}
	if c.submitted.StudentInfo.FirstName != "Ayşe" {
		t.Errorf("identity = %+v", c.submitted.StudentInfo)
	}
	for _, want := range []string{"Go Temelleri", "A) Ankara", "Answer saved.", "10/20", "done"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "A) Ankara") > strings.Index(out, "B) İzmir") {
		t.Errorf("options not sorted:\n%s", out)
	}
}

func TestRunnerSubmitsOnEndOfInput(t *testing.T) {
	c := &stubClient{exam: stubExam()}
	info := model.CandidateInfo{FirstName: "Ali", LastName: "Demir", Email: "ali@example.com"}

	out, err := runWith(t, c, "a B\n", info)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	if c.submitted == nil || c.submitted.Answers[c.exam.Questions[0].ID.String()] != "B" {
		t.Errorf("submitted = %+v", c.submitted)
	}
	if !strings.Contains(out, "0/20") {
		t.Errorf("output missing score:\n%s", out)
	}
}

func TestRunnerFirstTimeCandidate(t *testing.T) {
	c := &stubClient{exam: stubExam(), knownEmails: map[string]bool{}}

	out, err := runWith(t, c, "Yeni\nAday\nyeni@example.com\na A\nf\n", model.CandidateInfo{})
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	if c.submitted == nil || c.submitted.StudentInfo.Email != "yeni@example.com" {
		t.Fatalf("submitted = %+v", c.submitted)
	}
	if !strings.Contains(out, "10/20") {
		t.Errorf("output missing score:\n%s", out)
	}
}

func TestRunnerChecksEligibilityWhenAsked(t *testing.T) {
	info := model.CandidateInfo{FirstName: "Ali", LastName: "Demir", Email: "ali@example.com"}

	known := &stubClient{exam: stubExam(), knownEmails: map[string]bool{"ali@example.com": true}}
	if out, err := runOpts(t, known, strings.NewReader("f\n"), info, true); err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	if known.email != "ali@example.com" {
		t.Errorf("eligibility email = %q", known.email)
	}

	unknown := &stubClient{exam: stubExam(), knownEmails: map[string]bool{}}
	out, err := runOpts(t, unknown, strings.NewReader("f\n"), info, true)
	if !errors.Is(err, session.ErrCandidateUnknown) {
		t.Fatalf("err = %v, want ErrCandidateUnknown", err)
	}
	if !strings.Contains(out, "No student is registered") {
		t.Errorf("output = %q", out)
	}
	if unknown.submitted != nil {
		t.Error("unknown candidate submitted answers")
	}
}

func TestRunnerReturnsWhenTimerSubmitFailsAfterInputEnds(t *testing.T) {
	exam := stubExam()
	exam.Duration = 1
	c := &stubClient{
		exam:      exam,
		submitErr: &session.APIError{Status: 500, Code: response.ErrInternal, Message: "Sunucu hatası oluştu."},
		entered:   make(chan struct{}),
		release:   make(chan struct{}),
	}
	info := model.CandidateInfo{FirstName: "Ali", LastName: "Demir", Email: "ali@example.com"}
	pr, pw := io.Pipe()

	type outcome struct {
		out string
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		out, err := runOpts(t, c, pr, info, false, session.WithTick(time.Millisecond))
		done <- outcome{out, err}
	}()

	select {
	case <-c.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("timer never submitted")
	}
	pw.Close()
	time.Sleep(20 * time.Millisecond)
	close(c.release)

	select {
	case o := <-done:
		if o.err == nil || !strings.Contains(o.out, "Sunucu hatası oluştu.") {
			t.Errorf("err = %v, output:\n%s", o.err, o.out)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after the timer submission failed")
	}
}

func TestRunnerReportsServerRejection(t *testing.T) {
	c := &stubClient{loadErr: &session.APIError{Status: 403, Code: response.ErrPaymentIncomplete, Message: "Ödeme tamamlanmadı"}}
	info := model.CandidateInfo{FirstName: "Ali", LastName: "Demir", Email: "ali@example.com"}

	out, err := runWith(t, c, "", info)
	if !errors.Is(err, session.ErrPaymentIncomplete) {
		t.Fatalf("err = %v, want ErrPaymentIncomplete", err)
	}
	if !strings.Contains(out, "Ödeme tamamlanmadı") {
		t.Errorf("output = %q", out)
	}
}

func TestRunnerRejectsInvalidIdentity(t *testing.T) {
	c := &stubClient{exam: stubExam()}
	info := model.CandidateInfo{FirstName: "Ali", LastName: "Demir", Email: "not-an-email"}

	out, err := runWith(t, c, "", info)
	if !errors.Is(err, session.ErrIdentityInvalid) {
		t.Fatalf("err = %v, want ErrIdentityInvalid", err)
	}
	if !strings.Contains(out, "valid email") {
		t.Errorf("output = %q", out)
	}
	if c.submitted != nil {
		t.Error("invalid identity submitted answers")
	}
}

func TestDescribeLocalizesSessionErrors(t *testing.T) {
	bundle, err := i18n.New("tr")
	if err != nil {
		t.Fatal(err)
	}
	r := newRunner(strings.NewReader(""), io.Discard, bundle.Localizer("tr"))

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"candidate unknown", session.ErrCandidateUnknown, "Bu e-posta adresiyle kayıtlı bir öğrenci bulunamadı. Lütfen kurumla iletişime geçin."},
		{"wrong state", session.ErrWrongState, "Bu işlem şu anda yapılamaz."},
		{"wrapped", fmt.Errorf("jump: %w", session.ErrNoSuchQuestion), "Böyle bir soru yok."},
		{"in flight", session.ErrSubmitInFlight, "Cevaplarınız gönderiliyor, lütfen bekleyin."},
		{"server message", &session.APIError{Status: 409, Code: response.ErrAlreadySubmitted, Message: "Sunucudan"}, "Sunucudan"},
		{"server code only", &session.APIError{Status: 403, Code: response.ErrPaymentIncomplete}, "Sınava girebilmek için eğitim ödemenizi tamamlamanız gerekmektedir."},
		{"identity", session.ErrIdentityInvalid, "Lütfen ad, soyad ve geçerli bir e-posta adresi girin."},
		{"transport", errors.New("dial tcp: connection refused"), "dial tcp: connection refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.describe(tt.err); got != tt.want {
				t.Errorf("describe(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestClock(t *testing.T) {
	tests := map[int]string{0: "00:00", -3: "00:00", 59: "00:59", 3600: "60:00", 125: "02:05"}
	for in, want := range tests {
		if got := clock(in); got != want {
			t.Errorf("clock(%d) = %q, want %q", in, got, want)
		}
	}
}
