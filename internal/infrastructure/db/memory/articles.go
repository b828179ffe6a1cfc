package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/akilawedasinghe/symetrix/internal/core/domain"
	"github.com/akilawedasinghe/symetrix/internal/core/ports"
)

// ArticleRepository keeps the knowledge base in catalogue order.
type ArticleRepository struct {
	mu       sync.RWMutex
	articles []domain.Article
}

// NewArticleRepository returns a repository holding a copy of articles.
func NewArticleRepository(articles []domain.Article) *ArticleRepository {
	out := make([]domain.Article, len(articles))
	copy(out, articles)
	return &ArticleRepository{articles: out}
}

func (r *ArticleRepository) List(_ context.Context, f ports.ArticleFilter) ([]domain.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(f.Search)
	matched := make([]domain.Article, 0, len(r.articles))
	for _, a := range r.articles {
		if f.Category != "" && !strings.EqualFold(a.Category, f.Category) {
			continue
		}
		if f.ERPSystem != "" && a.ERPSystem != f.ERPSystem {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(a.Title), search) &&
			!strings.Contains(strings.ToLower(a.Description), search) {
			continue
		}
		matched = append(matched, a)
	}
	return matched, nil
}
