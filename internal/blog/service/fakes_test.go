package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/blogcraftai/blogcraft-backend/internal/blog/domain"
	"github.com/blogcraftai/blogcraft-backend/internal/blog/events"
	seodomain "github.com/blogcraftai/blogcraft-backend/internal/seo_suggestions/domain"
	seoservice "github.com/blogcraftai/blogcraft-backend/internal/seo_suggestions/service"
)

type memoryPosts struct {
	mu     sync.Mutex
	nextID int64
	bySlug map[string]*domain.Post
}

func newMemoryPosts(posts ...domain.Post) *memoryPosts {
	m := &memoryPosts{bySlug: map[string]*domain.Post{}}
	for i := range posts {
		p := posts[i]
		m.nextID++
		if p.ID == 0 {
			p.ID = m.nextID
		}
		if p.Tags == nil {
			p.Tags = []string{}
		}
		m.bySlug[p.Slug] = &p
	}
	return m
}

func (m *memoryPosts) Create(_ context.Context, p *domain.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.bySlug[p.Slug]; taken {
		p.Slug += "-x1y2z3"
	}
	m.nextID++
	p.ID = m.nextID
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	m.bySlug[p.Slug] = &cp
	return nil
}

func (m *memoryPosts) GetBySlug(_ context.Context, slug string) (*domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.bySlug[slug]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memoryPosts) List(_ context.Context, f domain.PostFilter) ([]domain.Post, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Post
	for _, p := range m.bySlug {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if !visible(f.Viewer, p) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (m *memoryPosts) ListByAuthor(_ context.Context, uid string) ([]domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Post
	for _, p := range m.bySlug {
		if p.AuthorUID == uid {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memoryPosts) CountByStatus(_ context.Context, uid string) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[string]int{}
	for _, p := range m.bySlug {
		if p.AuthorUID == uid {
			counts[p.Status]++
		}
	}
	return counts, nil
}

func (m *memoryPosts) Update(_ context.Context, p *domain.Post, tags *[]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.bySlug[p.Slug]
	if !ok {
		return domain.ErrPostNotFound
	}
	if tags != nil {
		p.Tags = *tags
	} else {
		p.Tags = stored.Tags
	}
	p.UpdatedAt = time.Now()
	cp := *p
	m.bySlug[p.Slug] = &cp
	return nil
}

func (m *memoryPosts) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for slug, p := range m.bySlug {
		if p.ID == id {
			delete(m.bySlug, slug)
			return nil
		}
	}
	return domain.ErrPostNotFound
}

type memoryComments struct {
	mu     sync.Mutex
	nextID int64
	items  []domain.Comment
}

func (m *memoryComments) Create(_ context.Context, c *domain.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c.ID = m.nextID
	m.items = append(m.items, *c)
	return nil
}

func (m *memoryComments) GetByID(_ context.Context, id int64) (*domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.items {
		if c.ID == id {
			cp := c
			return &cp, nil
		}
	}
	return nil, domain.ErrCommentNotFound
}

func (m *memoryComments) ListVisible(_ context.Context, viewer domain.Actor, postSlug string) ([]domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Comment
	for _, c := range m.items {
		if postSlug != "" && c.PostSlug != postSlug {
			continue
		}
		if c.IsPublic || viewer.Staff || (viewer.Authenticated() && c.AuthorUID == viewer.UID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memoryComments) Update(_ context.Context, c *domain.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == c.ID {
			m.items[i] = *c
			return nil
		}
	}
	return domain.ErrCommentNotFound
}

func (m *memoryComments) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return domain.ErrCommentNotFound
}

type memoryReactions struct {
	mu     sync.Mutex
	nextID int64
	items  []domain.Reaction
}

func (m *memoryReactions) Upsert(_ context.Context, r *domain.Reaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].PostID == r.PostID && m.items[i].UserUID == r.UserUID {
			m.items[i].Reaction = r.Reaction
			r.ID = m.items[i].ID
			return nil
		}
	}
	m.nextID++
	r.ID = m.nextID
	m.items = append(m.items, *r)
	return nil
}

func (m *memoryReactions) GetByID(_ context.Context, id int64) (*domain.Reaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.items {
		if r.ID == id {
			cp := r
			return &cp, nil
		}
	}
	return nil, domain.ErrReactionNotFound
}

func (m *memoryReactions) ListByUser(_ context.Context, uid, postSlug string) ([]domain.Reaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Reaction{}
	for _, r := range m.items {
		if r.UserUID == uid && (postSlug == "" || r.PostSlug == postSlug) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryReactions) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return domain.ErrReactionNotFound
}

func (m *memoryReactions) CountsForPost(_ context.Context, postID int64) (domain.ReactionCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var c domain.ReactionCounts
	for _, r := range m.items {
		if r.PostID != postID {
			continue
		}
		if r.Reaction == domain.ReactionLike {
			c.Like++
		} else {
			c.Dislike++
		}
	}
	return c, nil
}

type memoryTags struct {
	mu    sync.Mutex
	items map[string]domain.Tag
}

func (m *memoryTags) List(_ context.Context, _ string) ([]domain.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Tag{}
	for _, t := range m.items {
		out = append(out, t)
	}
	return out, nil
}

func (m *memoryTags) GetBySlug(_ context.Context, slug string) (*domain.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.items[slug]
	if !ok {
		return nil, domain.ErrTagNotFound
	}
	return &t, nil
}

func (m *memoryTags) Create(_ context.Context, name string) (*domain.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.items == nil {
		m.items = map[string]domain.Tag{}
	}
	for _, t := range m.items {
		if t.Name == name {
			return nil, domain.ErrTagExists
		}
	}
	t := domain.Tag{ID: int64(len(m.items) + 1), Name: name, Slug: domain.Slugify(name)}
	m.items[t.Slug] = t
	return &t, nil
}

func (m *memoryTags) Rename(_ context.Context, slug, name string) (*domain.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.items[slug]
	if !ok {
		return nil, domain.ErrTagNotFound
	}
	t.Name = name
	m.items[slug] = t
	return &t, nil
}

func (m *memoryTags) Delete(_ context.Context, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[slug]; !ok {
		return domain.ErrTagNotFound
	}
	delete(m.items, slug)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type stubSuggester struct {
	mu       sync.Mutex
	requests []seoservice.Request
	result   []seodomain.Suggestion
	err      error
}

func (s *stubSuggester) Suggest(_ context.Context, req seoservice.Request) ([]seodomain.Suggestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	return s.result, s.err
}

type failingRenderer struct{}

func (failingRenderer) ToHTML(string) (string, error) { return "", errors.New("render failed") }
