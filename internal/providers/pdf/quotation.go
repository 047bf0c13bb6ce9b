package pdf

import (
	"context"
	"io"

	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type QuotationDocument struct {
	OrgName    string
	OrgAddress string
	OrgGSTIN   string

	QuotationNumber string
	Date            string
	ValidUntil      string
	Status          string

	CustomerName  string
	CustomerState string
	CustomerGSTIN string

	Items []LineRow

	Subtotal string
	CGST     string
	SGST     string
	IGST     string
	Tax      string
	Grand    string
}

func (p *marotoProvider) RenderQuotation(ctx context.Context, doc QuotationDocument) (io.Reader, error) {
	m := newDocument()

	addHeader(m, "Quotation", doc.OrgName, doc.OrgAddress, doc.OrgGSTIN)

	validity := "Valid until: " + doc.ValidUntil
	if doc.ValidUntil == "" {
		validity = "Status: " + doc.Status
	}
	m.AddRow(16,
		col.New(6).Add(
			text.New("Quotation number: "+doc.QuotationNumber, props.Text{Size: 9}),
			text.New("Date: "+doc.Date, props.Text{Size: 9, Top: 4}),
			text.New(validity, props.Text{Size: 9, Top: 8}),
		),
		col.New(6).Add(
			text.New("Prepared for", props.Text{Size: 9, Style: fontstyle.Bold}),
			text.New(doc.CustomerName, props.Text{Size: 9, Top: 4}),
			text.New(customerTaxLine(doc.CustomerState, doc.CustomerGSTIN), props.Text{Size: 9, Top: 8}),
		),
	)

	addItemTable(m, doc.Items)
	addTotals(m, doc.Subtotal, doc.CGST, doc.SGST, doc.IGST, doc.Tax, doc.Grand)

	return render(m)
}
