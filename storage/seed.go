package storage

import (
	"context"
	"fmt"

	"pharmaevents/event"
	"pharmaevents/user"
)

// SeedOptions are the defaults written into an empty database.
type SeedOptions struct {
	AdminEmail        string
	AdminPasswordHash string
	AppName           string
	ThemeColor        string
}

// SeedResult reports what Seed created.
type SeedResult struct {
	AdminCreated      bool
	CategoriesCreated int
	TypesCreated      int
}

// Seed creates the admin account when there are no users, and the default
// categories and event types when their tables are empty.
func (s *Store) Seed(ctx context.Context, opts SeedOptions) (SeedResult, error) {
	result := SeedResult{}

	count, err := s.CountUsers(ctx)
	if err != nil {
		return result, err
	}
	if count == 0 && opts.AdminEmail != "" && opts.AdminPasswordHash != "" {
		if _, err := s.CreateUser(ctx, user.NewUser{
			Email:        opts.AdminEmail,
			PasswordHash: opts.AdminPasswordHash,
			Role:         user.RoleAdmin,
		}); err != nil {
			return result, fmt.Errorf("seed admin user: %w", err)
		}
		result.AdminCreated = true
	}

	categories, err := s.ListCategories(ctx)
	if err != nil {
		return result, err
	}
	if len(categories) == 0 {
		for _, name := range event.DefaultCategories() {
			if _, err := s.CreateCategory(ctx, name, ""); err != nil {
				return result, fmt.Errorf("seed category %s: %w", name, err)
			}
			result.CategoriesCreated++
		}
	}

	types, err := s.ListEventTypes(ctx)
	if err != nil {
		return result, err
	}
	if len(types) == 0 {
		for _, name := range event.DefaultTypes() {
			if _, err := s.CreateEventType(ctx, name, ""); err != nil {
				return result, fmt.Errorf("seed event type %s: %w", name, err)
			}
			result.TypesCreated++
		}
	}

	defaults := map[string]string{
		SettingAppName:    opts.AppName,
		SettingThemeColor: opts.ThemeColor,
	}
	existing, err := s.Settings(ctx)
	if err != nil {
		return result, err
	}
	for key, value := range defaults {
		if value == "" {
			continue
		}
		if _, ok := existing[key]; ok {
			continue
		}
		if err := s.SetSetting(ctx, key, value); err != nil {
			return result, err
		}
	}

	return result, nil
}
