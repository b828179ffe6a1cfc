package domain

import "time"

// Article is a knowledge base entry. ERPSystem is empty for articles that
// apply to every system.
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Views       int       `json:"views"`
	Helpful     int       `json:"helpful"`
	ERPSystem   ERPSystem `json:"erp_system,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// KnowledgeCategories lists the knowledge base categories in display order.
var KnowledgeCategories = []string{
	"Getting Started",
	"Ticketing System",
	"ERP Systems",
	"Troubleshooting",
	"Best Practices",
	"Implementation",
	"Security",
	"Integration",
}
