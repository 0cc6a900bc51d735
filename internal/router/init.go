package router

import (
	userapp "github.com/oksasatya/user-account-service/internal/application"
	"github.com/oksasatya/user-account-service/internal/container"
	pginfra "github.com/oksasatya/user-account-service/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/user-account-service/internal/interface/http"
	"github.com/oksasatya/user-account-service/internal/router/modules"
)

func buildUserModule() Module {
	cfg := container.GetConfig()

	repo := pginfra.NewUserRepository(container.GetPGPool())
	service := userapp.NewService(
		repo,
		container.GetRedis(),
		cfg.ProfileCacheTTL,
		container.GetGCS(),
		cfg.GCSBucket,
		container.GetES(),
		cfg.ESUsersIndex,
		container.GetNotifyPub(),
		container.GetLogger(),
	)
	handler := handlers.NewUserHandler(service, container.GetLogger())

	return modules.NewUserModule(handler, container.GetJWT())
}

// InitModules initializes all application modules and registers them with the
// router registry. Called once during startup.
func InitModules(r *Registry) {
	r.Add(buildUserModule())
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
