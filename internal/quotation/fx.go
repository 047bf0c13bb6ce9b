package quotation

import (
	"github.com/vyapardesk/vyapardesk/internal/quotation/repository"
	"github.com/vyapardesk/vyapardesk/internal/quotation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("quotation.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
