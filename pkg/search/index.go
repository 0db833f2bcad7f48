package search

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"

	"github.com/ngolasuite/ngola/pkg/domain"
)

// Kind is the type of an indexed document.
type Kind string

const (
	KindProject Kind = "project"
	KindTask    Kind = "task"
)

// Document is one searchable entity.
type Document struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	OwnerID   string    `json:"owner_id"`
	ProjectID string    `json:"project_id,omitempty"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Status    string    `json:"status,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Query selects documents of one owner. All whitespace separated terms of
// Text must match. Empty Kinds means every kind; Limit defaults to 20.
type Query struct {
	OwnerID string
	Text    string
	Kinds   []Kind
	Limit   int
}

func (q Query) limit() int {
	if q.Limit <= 0 {
		return 20
	}
	return q.Limit
}

// Hit is a matching document with its relevance score.
type Hit struct {
	Document
	Score float64
}

// Index stores and queries documents.
type Index interface {
	Index(ctx context.Context, docs ...Document) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, q Query) ([]Hit, error)
}

// ProjectDocument converts a project for indexing.
func ProjectDocument(p domain.Project) Document {
	return Document{
		ID:        p.ID,
		Kind:      KindProject,
		OwnerID:   p.OwnerID,
		ProjectID: p.ID,
		Title:     p.Name,
		Body:      strings.TrimSpace(p.Description + " " + p.Location),
		Status:    string(p.Status),
		UpdatedAt: p.UpdatedAt,
	}
}

// TaskDocument converts a task for indexing. Tasks are owned by the owner of
// their project.
func TaskDocument(t domain.Task, ownerID string) Document {
	return Document{
		ID:        t.ID,
		Kind:      KindTask,
		OwnerID:   ownerID,
		ProjectID: t.ProjectID,
		Title:     t.Title,
		Body:      strings.TrimSpace(t.Description + " " + t.Phase),
		Status:    string(t.Status),
		UpdatedAt: t.UpdatedAt,
	}
}

// MemoryIndex scores a term found in the title 2 and one found only in the
// body 1. Ties go to the most recently updated document.
type MemoryIndex struct {
	mu   sync.RWMutex
	docs map[string]Document
}

var _ Index = (*MemoryIndex)(nil)

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{docs: make(map[string]Document)}
}

func (m *MemoryIndex) Index(_ context.Context, docs ...Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range docs {
		m.docs[d.ID] = d
	}
	return nil
}

func (m *MemoryIndex) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, id)
	return nil
}

func (m *MemoryIndex) Search(_ context.Context, q Query) ([]Hit, error) {
	if q.OwnerID == "" {
		return nil, ErrMissingOwner
	}
	fold := cases.Fold()
	terms := strings.Fields(fold.String(q.Text))

	m.mu.RLock()
	var hits []Hit
	for _, d := range m.docs {
		if d.OwnerID != q.OwnerID || (len(q.Kinds) > 0 && !slices.Contains(q.Kinds, d.Kind)) {
			continue
		}
		if score, ok := match(fold.String(d.Title), fold.String(d.Body), terms); ok {
			hits = append(hits, Hit{Document: d, Score: score})
		}
	}
	m.mu.RUnlock()

	slices.SortFunc(hits, func(a, b Hit) int {
		return cmp.Or(
			cmp.Compare(b.Score, a.Score),
			b.UpdatedAt.Compare(a.UpdatedAt),
			cmp.Compare(a.ID, b.ID),
		)
	})
	if len(hits) > q.limit() {
		hits = hits[:q.limit()]
	}
	return hits, nil
}

func match(title, body string, terms []string) (float64, bool) {
	var score float64
	for _, t := range terms {
		switch {
		case strings.Contains(title, t):
			score += 2
		case strings.Contains(body, t):
			score++
		default:
			return 0, false
		}
	}
	return score, true
}
