package services

import (
	"fmt"

	"github.com/ghuser/contractflow/pkg/app"
	"github.com/ghuser/contractflow/services/user/infrastructure/persistence/gormrepo"
)

// Services is the application-layer service container for the user
// bounded context.
type Services struct {
	User *UserService
}

// New wires the user services over a gorm handle sharing the application pool.
func New(a *app.Application) (*Services, error) {
	db, err := gormrepo.Open(a.Db, a.Logger)
	if err != nil {
		return nil, fmt.Errorf("user services: %w", err)
	}
	return &Services{
		User: NewUserService(gormrepo.NewUserRepository(db, a.EventBus), a.Logger),
	}, nil
}
