package app

import (
	"github.com/yungbote/mlcatalog-backend/internal/middleware"
	"github.com/yungbote/mlcatalog-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *middleware.AuthMiddleware
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: middleware.NewAuthMiddleware(log, cfg.AdminToken),
	}
}
