package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/akilawedasinghe/symetrix/internal/core/domain"
	"github.com/akilawedasinghe/symetrix/internal/core/ports"
)

// KnowledgeService lists the knowledge base.
type KnowledgeService struct {
	repo ports.ArticleRepository
	log  zerolog.Logger
}

func NewKnowledgeService(repo ports.ArticleRepository, log zerolog.Logger) *KnowledgeService {
	return &KnowledgeService{repo: repo, log: log}
}

// ListArticles returns the articles matching filter. "all" in Category or
// ERPSystem is the same as leaving it empty. Categories always tallies the
// whole catalogue so every category stays selectable.
func (s *KnowledgeService) ListArticles(ctx context.Context, filter ports.ArticleFilter) (*ports.KnowledgeResult, error) {
	if strings.EqualFold(filter.Category, "all") {
		filter.Category = ""
	}
	if filter.ERPSystem == "all" {
		filter.ERPSystem = ""
	}
	if filter.ERPSystem != "" && !filter.ERPSystem.Valid() {
		return nil, fmt.Errorf("%w: erp system %q", domain.ErrInvalidField, filter.ERPSystem)
	}
	filter.Search = strings.TrimSpace(filter.Search)

	articles, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	all, err := s.repo.List(ctx, ports.ArticleFilter{})
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}

	s.log.Debug().
		Str("search", filter.Search).
		Str("category", filter.Category).
		Str("erp_system", string(filter.ERPSystem)).
		Int("matched", len(articles)).
		Msg("knowledge base searched")

	return &ports.KnowledgeResult{Articles: articles, Categories: tally(all)}, nil
}

// tally counts articles per category, known categories first in display
// order, then any others in the order they appear.
func tally(articles []domain.Article) []ports.CategoryCount {
	counts := make(map[string]int, len(domain.KnowledgeCategories))
	var extra []string
	known := make(map[string]bool, len(domain.KnowledgeCategories))
	for _, c := range domain.KnowledgeCategories {
		known[c] = true
	}
	for _, a := range articles {
		if !known[a.Category] && counts[a.Category] == 0 {
			extra = append(extra, a.Category)
		}
		counts[a.Category]++
	}

	out := make([]ports.CategoryCount, 0, len(domain.KnowledgeCategories)+len(extra))
	for _, c := range append(append([]string{}, domain.KnowledgeCategories...), extra...) {
		out = append(out, ports.CategoryCount{Name: c, Count: counts[c]})
	}
	return out
}
