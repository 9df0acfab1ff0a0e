package auth

import (
	"github.com/go-playground/validator/v10"

	usersdomain "giftboard/internal/domain/users"
	"giftboard/pkg/logger"
)

type Handlers struct {
	Users    *usersdomain.Service
	validate *validator.Validate
	log      logger.Logger
}

func New(users *usersdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Users:    users,
		validate: validator.New(),
		log:      log,
	}
}
