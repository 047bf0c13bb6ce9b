package invoice

import (
	"github.com/vyapardesk/vyapardesk/internal/invoice/repository"
	"github.com/vyapardesk/vyapardesk/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
