package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/akilawedasinghe/symetrix/internal/core/domain"
	"github.com/akilawedasinghe/symetrix/internal/core/ports"
)

// KnowledgeHandler serves the knowledge base.
type KnowledgeHandler struct {
	service ports.KnowledgeService
}

func NewKnowledgeHandler(service ports.KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{service: service}
}

type listArticlesQuery struct {
	Search    string `query:"search"`
	Category  string `query:"category"`
	ERPSystem string `query:"erp_system" validate:"omitempty,oneof=all s4_hana sap_bydesign acumatica"`
}

type articleResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Views       int       `json:"views"`
	Helpful     int       `json:"helpful"`
	ERPSystem   string    `json:"erp_system,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type categoryResponse struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type listArticlesResponse struct {
	Data       []articleResponse  `json:"data"`
	Categories []categoryResponse `json:"categories"`
}

// List handles GET /v1/knowledge.
//
// @Summary      Search the knowledge base
// @Description  Category and erp_system accept "all". Categories always tally the whole catalogue.
// @Tags         knowledge
// @Produce      json
// @Security     BearerAuth
// @Param        search      query     string  false  "Partial match on title or description"
// @Param        category    query     string  false  "Category name, case-insensitive"
// @Param        erp_system  query     string  false  "all, s4_hana, sap_bydesign or acumatica"
// @Success      200         {object}  listArticlesResponse
// @Failure      400         {object}  errorResponse
// @Failure      401         {object}  errorResponse
// @Router       /v1/knowledge [get]
func (h *KnowledgeHandler) List(c echo.Context) error {
	if _, err := ctxSession(c); err != nil {
		return err
	}

	var q listArticlesQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	result, err := h.service.ListArticles(c.Request().Context(), ports.ArticleFilter{
		Search:    q.Search,
		Category:  q.Category,
		ERPSystem: domain.ERPSystem(q.ERPSystem),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toArticlesResponse(result))
}

func toArticlesResponse(r *ports.KnowledgeResult) listArticlesResponse {
	out := listArticlesResponse{
		Data:       make([]articleResponse, 0, len(r.Articles)),
		Categories: make([]categoryResponse, 0, len(r.Categories)),
	}
	for _, a := range r.Articles {
		out.Data = append(out.Data, articleResponse{
			ID:          a.ID,
			Title:       a.Title,
			Description: a.Description,
			Category:    a.Category,
			Views:       a.Views,
			Helpful:     a.Helpful,
			ERPSystem:   string(a.ERPSystem),
			UpdatedAt:   a.UpdatedAt,
		})
	}
	for _, c := range r.Categories {
		out.Categories = append(out.Categories, categoryResponse{Name: c.Name, Count: c.Count})
	}
	return out
}
