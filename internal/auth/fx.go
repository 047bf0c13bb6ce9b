package auth

import (
	"github.com/vyapardesk/vyapardesk/internal/auth/repository"
	"github.com/vyapardesk/vyapardesk/internal/auth/service"
	"github.com/vyapardesk/vyapardesk/internal/auth/session"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.ProvideUserRepository),
	fx.Provide(repository.ProvideSessionRepository),
	fx.Provide(session.NewManager),
	fx.Provide(service.New),
)
