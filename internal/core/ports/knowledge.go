package ports

import (
	"context"

	"github.com/akilawedasinghe/symetrix/internal/core/domain"
)

// ArticleFilter narrows a knowledge base listing. Empty fields match all.
type ArticleFilter struct {
	Search    string // case-insensitive match on title or description
	Category  string // case-insensitive category name
	ERPSystem domain.ERPSystem
}

// ArticleRepository reads the knowledge base.
type ArticleRepository interface {
	// List returns the matching articles in catalogue order.
	List(ctx context.Context, filter ArticleFilter) ([]domain.Article, error)
}

// CategoryCount is one knowledge base category and its article count.
type CategoryCount struct {
	Name  string
	Count int
}

// KnowledgeResult is a filtered listing plus the category tally of the
// whole catalogue.
type KnowledgeResult struct {
	Articles   []domain.Article
	Categories []CategoryCount
}

// KnowledgeService exposes the knowledge base to every authenticated role.
type KnowledgeService interface {
	ListArticles(ctx context.Context, filter ArticleFilter) (*KnowledgeResult, error)
}
