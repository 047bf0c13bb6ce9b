package dashboard

import (
	"github.com/vyapardesk/vyapardesk/internal/dashboard/repository"
	"github.com/vyapardesk/vyapardesk/internal/dashboard/service"
	"go.uber.org/fx"
)

var Module = fx.Module("dashboard.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
