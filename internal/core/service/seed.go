package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/akilawedasinghe/symetrix/internal/core/domain"
	"github.com/akilawedasinghe/symetrix/internal/core/ports"
)

// DemoUsers is the directory the portal ships with. Ids 1..5 are reserved
// for these identities; every other identity gets a UUID.
func DemoUsers() []domain.User {
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }
	return []domain.User{
		{ID: "1", Name: "Admin User", Email: "admin@example.com", Role: domain.RoleAdmin, CreatedAt: day(2023, 1, 1)},
		{ID: "2", Name: "Support User", Email: "support@example.com", Role: domain.RoleSupport, CreatedAt: day(2023, 1, 2)},
		{ID: "3", Name: "Client User", Email: "client@example.com", Role: domain.RoleClient, ERPSystem: domain.ERPS4Hana, CreatedAt: day(2023, 1, 3)},
		{ID: "4", Name: "Jane Smith", Email: "jane@example.com", Role: domain.RoleClient, ERPSystem: domain.ERPSAPByDesign, CreatedAt: day(2023, 2, 15)},
		{ID: "5", Name: "Robert Johnson", Email: "robert@example.com", Role: domain.RoleSupport, CreatedAt: day(2023, 3, 10)},
	}
}

// SeedDirectory inserts every demo identity whose email is not registered
// yet, all sharing password. It returns how many identities were added.
func SeedDirectory(ctx context.Context, repo ports.UserRepository, password string, cost int) (int, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return 0, fmt.Errorf("seed directory: %w", err)
	}

	added := 0
	for _, u := range DemoUsers() {
		_, err := repo.FindByEmail(ctx, u.Email)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return added, fmt.Errorf("seed directory: %w", err)
		}

		u.PasswordHash = string(hash)
		u.Status = domain.UserActive
		u.UpdatedAt = u.CreatedAt
		if err := repo.Create(ctx, &u); err != nil {
			return added, fmt.Errorf("seed directory: %w", err)
		}
		added++
	}
	return added, nil
}

// DemoArticles is the knowledge base the portal ships with, dated relative
// to now.
func DemoArticles(now time.Time) []domain.Article {
	ago := func(days int) time.Time { return now.AddDate(0, 0, -days) }
	return []domain.Article{
		{ID: "1", Title: "Getting Started with Your Support Portal", Description: "Learn how to set up your account, manage preferences, and submit your first ticket.", Category: "Getting Started", Views: 3240, Helpful: 156, UpdatedAt: ago(2)},
		{ID: "2", Title: "Understanding Priority Levels for Support Tickets", Description: "Learn about different priority levels and how they affect response times.", Category: "Ticketing System", Views: 1890, Helpful: 124, UpdatedAt: ago(7)},
		{ID: "3", Title: "S/4 HANA Finance Module Overview", Description: "A comprehensive guide to the finance module in SAP S/4 HANA.", Category: "ERP Systems", Views: 2150, Helpful: 178, ERPSystem: domain.ERPS4Hana, UpdatedAt: ago(3)},
		{ID: "4", Title: "Common SAP ByDesign Configuration Issues", Description: "Troubleshooting guide for typical configuration problems in SAP ByDesign.", Category: "Troubleshooting", Views: 1675, Helpful: 142, ERPSystem: domain.ERPSAPByDesign, UpdatedAt: ago(7)},
		{ID: "5", Title: "Acumatica Reporting Best Practices", Description: "Learn how to create effective reports in Acumatica ERP.", Category: "Best Practices", Views: 1230, Helpful: 98, ERPSystem: domain.ERPAcumatica, UpdatedAt: ago(5)},
		{ID: "6", Title: "S/4 HANA Implementation Checklist", Description: "Key considerations and steps for a successful S/4 HANA implementation.", Category: "Implementation", Views: 1845, Helpful: 156, ERPSystem: domain.ERPS4Hana, UpdatedAt: ago(14)},
		{ID: "7", Title: "SAP ByDesign User Access Management", Description: "Guide to managing user roles and permissions in SAP ByDesign.", Category: "Security", Views: 1320, Helpful: 110, ERPSystem: domain.ERPSAPByDesign, UpdatedAt: ago(7)},
		{ID: "8", Title: "Acumatica Integration Options", Description: "Overview of integration approaches for connecting Acumatica with other systems.", Category: "Integration", Views: 1580, Helpful: 132, ERPSystem: domain.ERPAcumatica, UpdatedAt: ago(3)},
	}
}
