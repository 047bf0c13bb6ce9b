package pdf

import (
	"context"
	"io"

	"go.uber.org/fx"
)

// Provider renders billing documents. Renderers take flat, pre-formatted
// view data so the layout code never touches domain types.
type Provider interface {
	RenderInvoice(ctx context.Context, doc InvoiceDocument) (io.Reader, error)
	RenderQuotation(ctx context.Context, doc QuotationDocument) (io.Reader, error)
}

var Module = fx.Module("providers.pdf",
	fx.Provide(New),
)
