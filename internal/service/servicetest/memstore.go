// Package servicetest provides in-memory stores for exercising services
// and handlers without PostgreSQL or Redis.
package servicetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/istanbulinstitute/educrm-exam/internal/cache"
	"github.com/istanbulinstitute/educrm-exam/internal/model"
	"github.com/istanbulinstitute/educrm-exam/internal/repository"
)

// DB is an in-memory stand-in for PostgreSQL. It enforces the same
// uniqueness rules as the schema and keeps exam totals the same way the
// question repository does.
type DB struct {
	mu        sync.Mutex
	courses   map[uuid.UUID]*model.Course
	exams     map[uuid.UUID]*model.Exam
	questions map[uuid.UUID]*model.Question
	persons   map[string]*model.Person
	regs      []model.Registration
	results   map[uuid.UUID]*model.ExamResult
	users     map[string]*model.User
}

func NewDB() *DB {
	return &DB{
		courses:   map[uuid.UUID]*model.Course{},
		exams:     map[uuid.UUID]*model.Exam{},
		questions: map[uuid.UUID]*model.Question{},
		persons:   map[string]*model.Person{},
		results:   map[uuid.UUID]*model.ExamResult{},
		users:     map[string]*model.User{},
	}
}

func (db *DB) AddCourse(name string) uuid.UUID {
	db.mu.Lock()
	defer db.mu.Unlock()
	c := &model.Course{ID: uuid.New(), Name: name}
	db.courses[c.ID] = c
	return c.ID
}

func (db *DB) AddExam(e model.Exam) *model.Exam {
	db.mu.Lock()
	defer db.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	cp := e
	db.exams[e.ID] = &cp
	return &e
}

func (db *DB) AddPerson(email string) *model.Person {
	db.mu.Lock()
	defer db.mu.Unlock()
	p := &model.Person{ID: uuid.New(), FirstName: "Ayşe", LastName: "Yılmaz", Email: email}
	db.persons[strings.ToLower(email)] = p
	return p
}

func (db *DB) AddRegistration(personID, courseID uuid.UUID, st model.RegistrationStatus, pay model.PaymentStatus) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.regs = append(db.regs, model.Registration{
		ID: uuid.New(), PersonID: personID, CourseID: courseID, Status: st, PaymentStatus: pay, CreatedAt: time.Now(),
	})
}

// UpdateExam mutates a stored exam in place.
func (db *DB) UpdateExam(id uuid.UUID, fn func(*model.Exam)) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if e, ok := db.exams[id]; ok {
		fn(e)
	}
}

func (db *DB) Total(examID uuid.UUID) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.exams[examID].TotalScore
}

func (db *DB) SumPoints(examID uuid.UUID) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	sum := 0
	for _, q := range db.questions {
		if q.ExamID == examID {
			sum += q.Points
		}
	}
	return sum
}

func (db *DB) ResultCount(examID uuid.UUID) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	n := 0
	for _, r := range db.results {
		if r.ExamID == examID {
			n++
		}
	}
	return n
}

func (db *DB) Exams() Exams                 { return Exams{db} }
func (db *DB) Questions() Questions         { return Questions{db} }
func (db *DB) Results() Results             { return Results{db} }
func (db *DB) Persons() Persons             { return Persons{db} }
func (db *DB) Registrations() Registrations { return Registrations{db} }
func (db *DB) Courses() Courses             { return Courses{db} }
func (db *DB) Users() Users                 { return Users{db} }

// ─── Exams ──────────────────────────────────────────────────────────

type Exams struct{ db *DB }

func (m Exams) Create(_ context.Context, e *model.Exam) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, other := range m.db.exams {
		if other.ExamCode == e.ExamCode {
			return repository.ErrDuplicateExamCode
		}
	}
	if _, ok := m.db.courses[e.CourseID]; !ok {
		return repository.ErrInvalidReference
	}
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	cp := *e
	m.db.exams[e.ID] = &cp
	return nil
}

func (m Exams) GetByID(_ context.Context, id uuid.UUID) (*model.Exam, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	e, ok := m.db.exams[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m Exams) GetActiveByCode(_ context.Context, code string) (*model.Exam, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, e := range m.db.exams {
		if e.ExamCode == strings.ToUpper(code) && e.IsActive {
			cp := *e
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m Exams) List(_ context.Context, f model.ExamFilter) ([]model.Exam, int, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []model.Exam
	for _, e := range m.db.exams {
		if f.Search != "" && !strings.Contains(strings.ToLower(e.Title), strings.ToLower(f.Search)) {
			continue
		}
		if f.CourseID != nil && e.CourseID != *f.CourseID {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	total := len(out)
	start := (f.Page - 1) * f.PerPage
	if start > total {
		start = total
	}
	end := min(start+f.PerPage, total)
	return out[start:end], total, nil
}

func (m Exams) Update(_ context.Context, e *model.Exam) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	cur, ok := m.db.exams[e.ID]
	if !ok {
		return repository.ErrNotFound
	}
	total := cur.TotalScore
	cp := *e
	cp.TotalScore = total
	m.db.exams[e.ID] = &cp
	e.TotalScore = total
	return nil
}

func (m Exams) Delete(_ context.Context, id uuid.UUID) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if _, ok := m.db.exams[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.db.exams, id)
	for qid, q := range m.db.questions {
		if q.ExamID == id {
			delete(m.db.questions, qid)
		}
	}
	for rid, r := range m.db.results {
		if r.ExamID == id {
			delete(m.db.results, rid)
		}
	}
	return nil
}

func (m Exams) RecalculateTotal(_ context.Context, id uuid.UUID) (int, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	e, ok := m.db.exams[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	sum := 0
	for _, q := range m.db.questions {
		if q.ExamID == id {
			sum += q.Points
		}
	}
	e.TotalScore = sum
	return sum, nil
}

// ─── Questions ──────────────────────────────────────────────────────

type Questions struct{ db *DB }

func (m Questions) ListByExam(_ context.Context, examID uuid.UUID) ([]model.Question, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	out := []model.Question{}
	for _, q := range m.db.questions {
		if q.ExamID == examID {
			out = append(out, *q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (m Questions) GetByID(_ context.Context, id uuid.UUID) (*model.Question, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	q, ok := m.db.questions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *q
	return &cp, nil
}

// insertLocked mirrors the unique (exam_id, order_num) index.
func (m Questions) insertLocked(q *model.Question) error {
	for _, other := range m.db.questions {
		if other.ExamID == q.ExamID && other.Order == q.Order {
			return repository.ErrDuplicateOrder
		}
	}
	q.ID = uuid.New()
	cp := *q
	m.db.questions[q.ID] = &cp
	return nil
}

func (m Questions) nextOrderLocked(examID uuid.UUID) int {
	next := 1
	for _, q := range m.db.questions {
		if q.ExamID == examID && q.Order >= next {
			next = q.Order + 1
		}
	}
	return next
}

func (m Questions) Create(_ context.Context, q *model.Question) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	e, ok := m.db.exams[q.ExamID]
	if !ok {
		return repository.ErrNotFound
	}
	if q.Order == 0 {
		q.Order = m.nextOrderLocked(q.ExamID)
	}
	if err := m.insertLocked(q); err != nil {
		return err
	}
	e.TotalScore += q.Points
	return nil
}

func (m Questions) CreateBatch(_ context.Context, examID uuid.UUID, qs []model.Question) (int, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	e, ok := m.db.exams[examID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	next := m.nextOrderLocked(examID)
	var inserted []uuid.UUID
	added := 0
	for i := range qs {
		q := &qs[i]
		q.ExamID = examID
		if q.Order == 0 {
			q.Order = next
			next++
		}
		if err := m.insertLocked(q); err != nil {
			for _, id := range inserted {
				delete(m.db.questions, id)
			}
			return 0, err
		}
		inserted = append(inserted, q.ID)
		added += q.Points
	}
	e.TotalScore += added
	return added, nil
}

func (m Questions) Update(_ context.Context, q *model.Question) (int, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	cur, ok := m.db.questions[q.ID]
	if !ok || cur.ExamID != q.ExamID {
		return 0, repository.ErrNotFound
	}
	for _, other := range m.db.questions {
		if other.ID != q.ID && other.ExamID == q.ExamID && other.Order == q.Order {
			return 0, repository.ErrDuplicateOrder
		}
	}
	delta := q.Points - cur.Points
	cp := *q
	m.db.questions[q.ID] = &cp
	m.db.exams[q.ExamID].TotalScore += delta
	return delta, nil
}

func (m Questions) Delete(_ context.Context, examID, id uuid.UUID) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	q, ok := m.db.questions[id]
	if !ok || q.ExamID != examID {
		return repository.ErrNotFound
	}
	delete(m.db.questions, id)
	m.db.exams[examID].TotalScore -= q.Points
	return nil
}

func (m Questions) DeleteAllByExam(_ context.Context, examID uuid.UUID) (int, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	e, ok := m.db.exams[examID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	n := 0
	for id, q := range m.db.questions {
		if q.ExamID == examID {
			delete(m.db.questions, id)
			n++
		}
	}
	e.TotalScore = 0
	return n, nil
}

// ─── results, people, registrations, courses, users ──

type Results struct{ db *DB }

func (m Results) Create(_ context.Context, res *model.ExamResult) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, r := range m.db.results {
		if r.ExamID == res.ExamID && r.PersonID == res.PersonID {
			return repository.ErrDuplicateResult
		}
	}
	res.ID = uuid.New()
	res.CreatedAt = time.Now()
	cp := *res
	m.db.results[res.ID] = &cp
	return nil
}

func (m Results) GetByID(_ context.Context, id uuid.UUID) (*model.ExamResult, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	r, ok := m.db.results[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m Results) ListByExam(_ context.Context, examID uuid.UUID) ([]model.ExamResult, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []model.ExamResult
	for _, r := range m.db.results {
		if r.ExamID == examID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m Results) Stats(ctx context.Context, examID uuid.UUID) (*model.ResultStats, error) {
	rs, _ := m.ListByExam(ctx, examID)
	s := &model.ResultStats{Total: len(rs)}
	for i, r := range rs {
		if r.IsPassed {
			s.Passed++
		}
		s.AverageScore += float64(r.Score)
		if i == 0 || r.Score > s.HighestScore {
			s.HighestScore = r.Score
		}
		if i == 0 || r.Score < s.LowestScore {
			s.LowestScore = r.Score
		}
	}
	s.Failed = s.Total - s.Passed
	if s.Total > 0 {
		s.AverageScore /= float64(s.Total)
		s.PassRate = float64(s.Passed) / float64(s.Total) * 100
	}
	return s, nil
}

func (m Results) ExistsForPerson(_ context.Context, examID, personID uuid.UUID) (bool, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, r := range m.db.results {
		if r.ExamID == examID && r.PersonID == personID {
			return true, nil
		}
	}
	return false, nil
}

type Persons struct{ db *DB }

func (m Persons) GetByEmail(_ context.Context, email string) (*model.Person, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	p, ok := m.db.persons[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m Persons) GetOrCreate(_ context.Context, p *model.Person) (bool, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	key := strings.ToLower(strings.TrimSpace(p.Email))
	if cur, ok := m.db.persons[key]; ok {
		*p = *cur
		return false, nil
	}
	p.ID = uuid.New()
	p.Email = key
	p.CreatedAt = time.Now()
	cp := *p
	m.db.persons[key] = &cp
	return true, nil
}

type Registrations struct{ db *DB }

func (m Registrations) FindForCourse(_ context.Context, personID, courseID uuid.UUID) (*model.Registration, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var best *model.Registration
	rank := func(r *model.Registration) int {
		n := 0
		if r.Active() {
			n += 2
		}
		if r.PaymentStatus == model.PaymentPaid {
			n++
		}
		return n
	}
	for i := range m.db.regs {
		r := &m.db.regs[i]
		if r.PersonID != personID || r.CourseID != courseID {
			continue
		}
		if best == nil || rank(r) > rank(best) {
			best = r
		}
	}
	if best == nil {
		return nil, repository.ErrNotFound
	}
	cp := *best
	return &cp, nil
}

type Courses struct{ db *DB }

func (m Courses) GetByID(_ context.Context, id uuid.UUID) (*model.Course, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	c, ok := m.db.courses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

type Users struct{ db *DB }

func (m Users) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	u, ok := m.db.users[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m Users) Create(_ context.Context, u *model.User) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	key := strings.ToLower(u.Email)
	if _, ok := m.db.users[key]; ok {
		return repository.ErrDuplicateEmail
	}
	u.ID = uuid.New()
	u.Email = key
	cp := *u
	m.db.users[key] = &cp
	return nil
}

// ─── cache and publisher ────────────────────────────────────────────

// Cache is an in-memory public exam cache.
type Cache struct {
	mu          sync.Mutex
	entries     map[string]*model.PublicExam
	invalidated []string
	hits        int
}

func NewCache() *Cache {
	return &Cache{entries: map[string]*model.PublicExam{}}
}

func (c *Cache) Get(_ context.Context, code string) (*model.PublicExam, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[strings.ToUpper(code)]
	if !ok {
		return nil, cache.ErrMiss
	}
	c.hits++
	return e, nil
}

func (c *Cache) Set(_ context.Context, exam *model.PublicExam) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[exam.ExamCode] = exam
	return nil
}

func (c *Cache) Invalidate(_ context.Context, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, strings.ToUpper(code))
	c.invalidated = append(c.invalidated, code)
	return nil
}

// Publisher records published result events.
type Publisher struct {
	mu     sync.Mutex
	events []model.ResultEvent
}

func (p *Publisher) PublishResult(_ context.Context, ev model.ResultEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (c *Cache) Hits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits
}

// Invalidated returns the codes passed to Invalidate, in call order.
func (c *Cache) Invalidated() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.invalidated...)
}

func (p *Publisher) Events() []model.ResultEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.ResultEvent(nil), p.events...)
}
