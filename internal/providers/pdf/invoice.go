package pdf

import (
	"bytes"
	"context"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type InvoiceDocument struct {
	OrgName    string
	OrgAddress string
	OrgState   string
	OrgGSTIN   string

	InvoiceNumber string
	IssueDate     string

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

	PaymentPlan      string
	DownPayment      string
	RemainingBalance string
	Installments     []InstallmentRow
}

type LineRow struct {
	Name     string
	HSNCode  string
	Quantity string
	UnitRate string
	Slab     string
	Amount   string
}

type InstallmentRow struct {
	Number  string
	DueDate string
	Amount  string
	Status  string
}

type marotoProvider struct{}

func New() Provider {
	return &marotoProvider{}
}

func (p *marotoProvider) RenderInvoice(ctx context.Context, doc InvoiceDocument) (io.Reader, error) {
	m := newDocument()

	addHeader(m, "Tax Invoice", doc.OrgName, doc.OrgAddress, doc.OrgGSTIN)

	m.AddRow(16,
		col.New(6).Add(
			text.New("Invoice number: "+doc.InvoiceNumber, props.Text{Size: 9}),
			text.New("Date of issue: "+doc.IssueDate, props.Text{Size: 9, Top: 4}),
			text.New("Payment plan: "+doc.PaymentPlan, props.Text{Size: 9, Top: 8}),
		),
		col.New(6).Add(
			text.New("Bill to", props.Text{Size: 9, Style: fontstyle.Bold}),
			text.New(doc.CustomerName, props.Text{Size: 9, Top: 4}),
			text.New(customerTaxLine(doc.CustomerState, doc.CustomerGSTIN), props.Text{Size: 9, Top: 8}),
		),
	)

	addItemTable(m, doc.Items)
	addTotals(m, doc.Subtotal, doc.CGST, doc.SGST, doc.IGST, doc.Tax, doc.Grand)

	if doc.RemainingBalance != "" {
		m.AddRow(8,
			col.New(6),
			text.NewCol(3, "Down payment", props.Text{Size: 9}),
			text.NewCol(3, doc.DownPayment, props.Text{Size: 9, Align: align.Right}),
		)
		m.AddRow(8,
			col.New(6),
			text.NewCol(3, "Balance due", props.Text{Size: 9, Style: fontstyle.Bold}),
			text.NewCol(3, doc.RemainingBalance, props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		)
	}

	if len(doc.Installments) > 0 {
		m.AddRow(10,
			text.NewCol(12, "Installment schedule", props.Text{Size: 10, Style: fontstyle.Bold, Top: 4}),
		)
		m.AddRow(8,
			text.NewCol(2, "#", props.Text{Size: 9, Style: fontstyle.Bold}),
			text.NewCol(4, "Due date", props.Text{Size: 9, Style: fontstyle.Bold}),
			text.NewCol(3, "Amount", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
			text.NewCol(3, "Status", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		)
		for _, row := range doc.Installments {
			m.AddRow(7,
				text.NewCol(2, row.Number, props.Text{Size: 9}),
				text.NewCol(4, row.DueDate, props.Text{Size: 9}),
				text.NewCol(3, row.Amount, props.Text{Size: 9, Align: align.Right}),
				text.NewCol(3, row.Status, props.Text{Size: 9, Align: align.Right}),
			)
		}
	}

	return render(m)
}

func newDocument() core.Maroto {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()
	return maroto.New(cfg)
}

func addHeader(m core.Maroto, title, orgName, orgAddress, orgGSTIN string) {
	m.AddRow(12,
		text.NewCol(12, title, props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)
	m.AddRow(18,
		col.New(12).Add(
			text.New(orgName, props.Text{Size: 10, Style: fontstyle.Bold}),
			text.New(orgAddress, props.Text{Size: 9, Top: 5}),
			text.New("GSTIN: "+orgGSTIN, props.Text{Size: 9, Top: 10}),
		),
	)
}

func customerTaxLine(state, gstin string) string {
	line := state
	if gstin != "" {
		if line != "" {
			line += " / "
		}
		line += "GSTIN " + gstin
	}
	return line
}

func addItemTable(m core.Maroto, items []LineRow) {
	m.AddRow(8,
		text.NewCol(4, "Item", props.Text{Size: 9, Style: fontstyle.Bold}),
		text.NewCol(2, "HSN", props.Text{Size: 9, Style: fontstyle.Bold}),
		text.NewCol(1, "Qty", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Rate", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(1, "GST", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
	)
	for _, item := range items {
		m.AddRow(7,
			text.NewCol(4, item.Name, props.Text{Size: 9}),
			text.NewCol(2, item.HSNCode, props.Text{Size: 9}),
			text.NewCol(1, item.Quantity, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.UnitRate, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(1, item.Slab, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.Amount, props.Text{Size: 9, Align: align.Right}),
		)
	}
}

func addTotals(m core.Maroto, subtotal, cgst, sgst, igst, tax, grand string) {
	totalRow := func(label, value string, bold bool) {
		style := fontstyle.Normal
		if bold {
			style = fontstyle.Bold
		}
		m.AddRow(7,
			col.New(6),
			text.NewCol(3, label, props.Text{Size: 9, Style: style}),
			text.NewCol(3, value, props.Text{Size: 9, Style: style, Align: align.Right}),
		)
	}

	totalRow("Subtotal", subtotal, false)
	if igst != "" {
		totalRow("IGST", igst, false)
	} else {
		totalRow("CGST", cgst, false)
		totalRow("SGST", sgst, false)
	}
	totalRow("Total tax", tax, false)
	totalRow("Grand total", grand, true)
}

func render(m core.Maroto) (io.Reader, error) {
	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}
