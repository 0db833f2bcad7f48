package workspace

import (
	"context"
	"strings"

	"github.com/ngolasuite/ngola/pkg/logger"
	"github.com/ngolasuite/ngola/pkg/repository"
	"github.com/ngolasuite/ngola/pkg/search"
)

// Search finds the actor's projects and tasks matching text. An empty kinds
// list searches both.
func (s *Service) Search(ctx context.Context, a Actor, text string, kinds ...search.Kind) ([]search.Hit, error) {
	userID, err := userOf(a)
	if err != nil {
		return nil, err
	}
	if s.index == nil {
		return nil, ErrSearchDisabled
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	return s.index.Search(ctx, search.Query{OwnerID: userID, Text: text, Kinds: kinds})
}

// Reindex pushes every project and task of the actor to the index. It
// returns the number of documents written.
func (s *Service) Reindex(ctx context.Context, a Actor) (int, error) {
	userID, err := userOf(a)
	if err != nil {
		return 0, err
	}
	if s.index == nil {
		return 0, ErrSearchDisabled
	}

	projects, err := s.repos.Projects.List(ctx, repository.ProjectQuery{OwnerID: userID})
	if err != nil {
		return 0, err
	}
	ids := make([]string, 0, len(projects))
	docs := make([]search.Document, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
		docs = append(docs, search.ProjectDocument(p))
	}
	tasks, err := s.repos.Tasks.List(ctx, repository.TaskQuery{ProjectIDs: ids})
	if err != nil {
		return 0, err
	}
	for _, t := range tasks {
		docs = append(docs, search.TaskDocument(t, userID))
	}

	if len(docs) == 0 {
		return 0, nil
	}
	if err := s.index.Index(ctx, docs...); err != nil {
		return 0, err
	}
	s.logger.InfoContext(ctx, "search index rebuilt", logger.UserID(userID), "documents", len(docs))
	return len(docs), nil
}
