package organization

import (
	"github.com/vyapardesk/vyapardesk/internal/organization/repository"
	"github.com/vyapardesk/vyapardesk/internal/organization/service"
	"go.uber.org/fx"
)

var Module = fx.Module("organization.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
