package customer

import (
	"github.com/vyapardesk/vyapardesk/internal/customer/repository"
	"github.com/vyapardesk/vyapardesk/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
