package services

import (
	"context"

	"github.com/shashiranjanraj/kashvi-shop/app/models"
	"github.com/shashiranjanraj/kashvi-shop/app/repositories"
	"github.com/shashiranjanraj/kashvi-shop/pkg/middleware"
)

// PrincipalResolver turns the authenticated request principal into a user.
type PrincipalResolver struct {
	users *repositories.UserRepository
}

func NewPrincipalResolver(users *repositories.UserRepository) *PrincipalResolver {
	return &PrincipalResolver{users: users}
}

// UserID is the caller's id without a database round trip.
func (p *PrincipalResolver) UserID(ctx context.Context) (uint, error) {
	pr, ok := middleware.PrincipalFrom(ctx)
	if !ok {
		return 0, ErrUnauthenticated
	}
	return pr.UserID, nil
}

// CurrentUser loads the caller. A token for a deleted account resolves to
// ErrUnauthenticated.
func (p *PrincipalResolver) CurrentUser(ctx context.Context) (*models.User, error) {
	id, err := p.UserID(ctx)
	if err != nil {
		return nil, err
	}
	u, err := p.users.FindByID(ctx, id)
	if err != nil {
		if notFound(err) == ErrNotFound {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	return u, nil
}
