package identity

import (
	"context"
	"strings"

	"github.com/studyhive/server/model"
	"gorm.io/gorm"
)

// PlaceholderName is used when no directory or profile row resolves an ID.
const PlaceholderName = "Unknown User"

// Identity is the resolved display view of a user ID.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Resolver resolves user IDs to display identities with ordered fallbacks:
// directory (users) → profiles → placeholder. The fallback policy lives
// here and nowhere else.
type Resolver struct {
	db *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// Resolve maps each requested ID to an Identity. Every requested ID is
// present in the result; unresolvable IDs map to the placeholder.
func (r *Resolver) Resolve(ctx context.Context, ids []string) (map[string]Identity, error) {
	out := make(map[string]Identity, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	unique := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id != "" && !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	var users []model.User
	if err := r.db.WithContext(ctx).
		Select("id", "name", "email").
		Where("id IN ?", unique).
		Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = Identity{ID: u.ID, Name: displayName(u.Name, u.Email), Email: u.Email}
	}

	var missing []string
	for _, id := range unique {
		if _, ok := out[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		var profiles []model.Profile
		if err := r.db.WithContext(ctx).
			Where("user_id IN ?", missing).
			Find(&profiles).Error; err != nil {
			return nil, err
		}
		for _, p := range profiles {
			out[p.UserID] = Identity{ID: p.UserID, Name: displayName(p.Name, p.Email), Email: p.Email}
		}
	}

	for _, id := range unique {
		if _, ok := out[id]; !ok {
			out[id] = Identity{ID: id, Name: PlaceholderName}
		}
	}
	return out, nil
}

// One resolves a single ID.
func (r *Resolver) One(ctx context.Context, id string) (Identity, error) {
	m, err := r.Resolve(ctx, []string{id})
	if err != nil {
		return Identity{}, err
	}
	return m[id], nil
}

// displayName prefers the stored name, then the email local part.
func displayName(name, email string) string {
	if name != "" {
		return name
	}
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return PlaceholderName
}
