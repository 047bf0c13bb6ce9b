package employee

import (
	"github.com/vyapardesk/vyapardesk/internal/employee/repository"
	"github.com/vyapardesk/vyapardesk/internal/employee/service"
	"go.uber.org/fx"
)

var Module = fx.Module("employee.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
