package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/vedran77/skillshare/internal/domain"
	"github.com/vedran77/skillshare/internal/mail"
)

var errStore = errors.New("store unavailable")

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
	err   error
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return domain.ErrEmailTaken
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[id].PasswordHash = hash
	return nil
}

func (r *fakeUserRepo) UpdateProfileImage(_ context.Context, id uuid.UUID, key *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[id].ProfileImage = key
	return nil
}

func (r *fakeUserRepo) SetRole(_ context.Context, id uuid.UUID, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[id].Role = role
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context) ([]domain.User, error) {
	return r.ListRecent(ctx, 0)
}

func (r *fakeUserRepo) ListRecent(_ context.Context, limit int) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeUserRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	return len(r.users), nil
}

type fakeWorkshopRepo struct {
	mu        sync.Mutex
	users     *fakeUserRepo
	workshops map[uuid.UUID]*domain.Workshop
	regs      []domain.Registration
	err       error
}

func newFakeWorkshopRepo(users *fakeUserRepo, workshops ...*domain.Workshop) *fakeWorkshopRepo {
	r := &fakeWorkshopRepo{users: users, workshops: make(map[uuid.UUID]*domain.Workshop)}
	for _, w := range workshops {
		r.workshops[w.ID] = w
	}
	return r
}

func (r *fakeWorkshopRepo) Create(_ context.Context, w *domain.Workshop) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *w
	r.workshops[w.ID] = &cp
	return nil
}

func (r *fakeWorkshopRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Workshop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	w, ok := r.workshops[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *fakeWorkshopRepo) summary(w *domain.Workshop) domain.WorkshopSummary {
	s := domain.WorkshopSummary{Workshop: *w}
	if host, ok := r.users.users[w.HostID]; ok {
		s.HostName = host.Name
	}
	for _, reg := range r.regs {
		if reg.WorkshopID == w.ID {
			s.ParticipantCount++
			s.RegistrantIDs = append(s.RegistrantIDs, reg.UserID)
		}
	}
	return s
}

func (r *fakeWorkshopRepo) GetSummary(_ context.Context, id uuid.UUID) (*domain.WorkshopSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workshops[id]
	if !ok {
		return nil, nil
	}
	s := r.summary(w)
	return &s, nil
}

func (r *fakeWorkshopRepo) sorted(less func(a, b *domain.Workshop) bool) []domain.WorkshopSummary {
	ws := make([]*domain.Workshop, 0, len(r.workshops))
	for _, w := range r.workshops {
		ws = append(ws, w)
	}
	sort.Slice(ws, func(i, j int) bool { return less(ws[i], ws[j]) })
	out := make([]domain.WorkshopSummary, 0, len(ws))
	for _, w := range ws {
		out = append(out, r.summary(w))
	}
	return out
}

func byDate(a, b *domain.Workshop) bool { return a.DateTime.Before(b.DateTime) }

func (r *fakeWorkshopRepo) List(_ context.Context, offset, limit int) ([]domain.WorkshopSummary, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, 0, r.err
	}
	all := r.sorted(byDate)
	if offset >= len(all) {
		return nil, len(all), nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], len(all), nil
}

func (r *fakeWorkshopRepo) ListByStatus(_ context.Context, status domain.WorkshopStatus) ([]domain.WorkshopSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []domain.WorkshopSummary
	for _, s := range r.sorted(byDate) {
		if s.Status == status {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeWorkshopRepo) ListRecent(_ context.Context, limit int) ([]domain.WorkshopSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	all := r.sorted(func(a, b *domain.Workshop) bool { return a.CreatedAt.After(b.CreatedAt) })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *fakeWorkshopRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to domain.WorkshopStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workshops[id]
	if !ok || w.Status != from {
		return false, nil
	}
	w.Status = to
	return true, nil
}

func (r *fakeWorkshopRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	return len(r.workshops), nil
}

func (r *fakeWorkshopRepo) CountByStatus(_ context.Context, status domain.WorkshopStatus) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, w := range r.workshops {
		if w.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *fakeWorkshopRepo) Register(_ context.Context, reg *domain.Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}

	w, ok := r.workshops[reg.WorkshopID]
	switch {
	case !ok:
		return domain.ErrWorkshopNotFound
	case w.HostID == reg.UserID:
		return domain.ErrOwnWorkshop
	case w.Status != domain.WorkshopScheduled:
		return domain.ErrWorkshopClosed
	}

	s := r.summary(w)
	if s.IsRegistered(reg.UserID) {
		return domain.ErrAlreadyRegistered
	}
	if s.IsFull() {
		return domain.ErrWorkshopFull
	}

	r.regs = append(r.regs, *reg)
	return nil
}

func (r *fakeWorkshopRepo) ListParticipants(_ context.Context, workshopID uuid.UUID) ([]domain.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Participant
	for _, reg := range r.regs {
		if reg.WorkshopID == workshopID {
			out = append(out, domain.Participant{Registration: reg, UserName: r.users.users[reg.UserID].Name})
		}
	}
	return out, nil
}

func (r *fakeWorkshopRepo) ListRecentRegistrations(_ context.Context, limit int) ([]domain.RegistrationActivity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.RegistrationActivity
	for i := len(r.regs) - 1; i >= 0 && len(out) < limit; i-- {
		reg := r.regs[i]
		out = append(out, domain.RegistrationActivity{
			Registration:  reg,
			UserName:      r.users.users[reg.UserID].Name,
			WorkshopTitle: r.workshops[reg.WorkshopID].Title,
		})
	}
	return out, nil
}

func (r *fakeWorkshopRepo) CountRegistrations(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.regs), nil
}

type fakeArticleRepo struct {
	mu       sync.Mutex
	articles map[uuid.UUID]*domain.KnowledgeArticle
	comments []domain.ArticleComment
}

func newFakeArticleRepo() *fakeArticleRepo {
	return &fakeArticleRepo{articles: make(map[uuid.UUID]*domain.KnowledgeArticle)}
}

func (r *fakeArticleRepo) Create(_ context.Context, a *domain.KnowledgeArticle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.articles[a.ID] = &cp
	return nil
}

func (r *fakeArticleRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.KnowledgeArticle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.articles[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *fakeArticleRepo) Update(_ context.Context, a *domain.KnowledgeArticle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.articles[a.ID] = &cp
	return nil
}

func (r *fakeArticleRepo) IncrementViews(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.articles[id]
	if !ok {
		return false, nil
	}
	a.Views++
	return true, nil
}

func (r *fakeArticleRepo) List(_ context.Context, f domain.ArticleFilter) ([]domain.KnowledgeArticle, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []domain.KnowledgeArticle
	for _, a := range r.articles {
		if !a.IsPublished || (f.Category != "" && a.Category != f.Category) {
			continue
		}
		if f.Search != "" {
			q := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(a.Title), q) && !strings.Contains(strings.ToLower(a.Content), q) {
				continue
			}
		}
		all = append(all, *a)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if f.Offset >= len(all) {
		return nil, len(all), nil
	}
	return all[f.Offset:min(f.Offset+f.Limit, len(all))], len(all), nil
}

func (r *fakeArticleRepo) CreateComment(_ context.Context, c *domain.ArticleComment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.comments = append(r.comments, *c)
	return nil
}

func (r *fakeArticleRepo) ListComments(_ context.Context, articleID uuid.UUID) ([]domain.ArticleComment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ArticleComment
	for _, c := range r.comments {
		if c.ArticleID == articleID {
			out = append(out, c)
		}
	}
	return out, nil
}

type recordingNotifier struct {
	mu            sync.Mutex
	created       []uuid.UUID
	registrations []int
	statuses      []domain.WorkshopStatus
	articles      []uuid.UUID
	comments      []uuid.UUID
}

func (n *recordingNotifier) NotifyWorkshopCreated(w *domain.WorkshopSummary) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, w.ID)
}

func (n *recordingNotifier) NotifyRegistration(_ uuid.UUID, count, _ int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.registrations = append(n.registrations, count)
}

func (n *recordingNotifier) NotifyWorkshopStatus(_ uuid.UUID, status domain.WorkshopStatus) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statuses = append(n.statuses, status)
}

func (n *recordingNotifier) NotifyArticlePublished(a *domain.KnowledgeArticle) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.articles = append(n.articles, a.ID)
}

func (n *recordingNotifier) NotifyArticleComment(c *domain.ArticleComment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.comments = append(n.comments, c.ID)
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) last() (mail.Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return mail.Message{}, false
	}
	return m.sent[len(m.sent)-1], true
}

type fakeAvatars struct {
	uploads []string
}

func (f *fakeAvatars) PresignUpload(_ context.Context, key, contentType string) (string, error) {
	f.uploads = append(f.uploads, key)
	return "https://bucket.example/" + key + "?upload&ct=" + contentType, nil
}

func (f *fakeAvatars) PresignDownload(_ context.Context, key string) (string, error) {
	return "https://bucket.example/" + key, nil
}
