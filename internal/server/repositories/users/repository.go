package users

import (
	"context"

	"github.com/dmitrijs2005/filekeeper/internal/server/models"
)

// Repository persists User records. Implementations must report
// common.ErrorAlreadyExists on a duplicate username and
// common.ErrorNotFound on a missing one, so callers can match with
// errors.Is.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
}
