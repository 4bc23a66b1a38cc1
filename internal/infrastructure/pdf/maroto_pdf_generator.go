// Package pdf implementa la representación PDF de una tagihan iuran.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Nombre del komplek  │  TAGIHAN + periodo           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  WARGA: Nombre + Blok / No. rumah + contacto                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  DETALLE: Iuran | Periodo | Jatuh tempo | Jumlah             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL + ESTADO                                              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con la referencia de pago + leyenda              │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	appbilling "github.com/jhoicas/komplek-api/internal/application/billing"
	"github.com/jhoicas/komplek-api/internal/domain/entity"
)

var _ appbilling.InvoicePDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 105, Blue: 92}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorAlert   = &props.Color{Red: 190, Green: 30, Blue: 45}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa billing.InvoicePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateInvoicePDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateInvoicePDF(_ context.Context, data appbilling.InvoicePDF) ([]byte, error) {
	if data.Invoice == nil || data.Iuran == nil || data.Cluster == nil || data.Resident == nil {
		return nil, fmt.Errorf("pdf: datos incompletos para la tagihan")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Tagihan Iuran "+data.Invoice.BillingPeriod, true).
		WithAuthor(data.Cluster.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(data.Invoice, data.Cluster))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(residentRow(data.Resident))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(detailRow(data))

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(data))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRows(data.Invoice)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: komplek (izq) y número de tagihan + periodo (der).
func headerRow(inv *entity.Invoice, cluster *entity.Cluster) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(cluster.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Pengelola Iuran Warga", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("TAGIHAN IURAN", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("No. "+strings.ToUpper(shortRef(inv.ID)), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Periode: "+inv.BillingPeriod, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// residentRow: datos del residente facturado.
func residentRow(p *entity.Profile) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("KEPADA WARGA", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(p.Name, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("Blok: %s   |   No. Rumah: %s   |   Tel: %s",
				nonEmpty(p.Block, "-"),
				nonEmpty(p.HouseNumber, "-"),
				nonEmpty(p.Phone, "-"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Iuran", 5, align.Left),
		h("Periode", 2, align.Center),
		h("Jatuh Tempo", 2, align.Center),
		h("Jumlah", 3, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func detailRow(data appbilling.InvoicePDF) core.Row {
	inv := data.Invoice
	return row.New(7).Add(
		col.New(5).Add(text.New(data.Iuran.Name, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
		col.New(2).Add(text.New(inv.BillingPeriod, props.Text{Size: 8, Align: align.Center, Top: 1})),
		col.New(2).Add(text.New(inv.DueAt.Format("02/01/2006"), props.Text{Size: 8, Align: align.Center, Top: 1})),
		col.New(3).Add(text.New(FormatMoney(data.Currency, inv.Amount), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
	)
}

// totalsRow: total a pagar y estado de la tagihan.
func totalsRow(data appbilling.InvoicePDF) core.Row {
	statusColor := colorGray
	if data.Invoice.Status == entity.InvoiceStatusOverdue {
		statusColor = colorAlert
	}
	return row.New(16).Add(
		col.New(6),
		col.New(3).Add(
			text.New("TOTAL TAGIHAN:", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2,
			}),
			text.New("Status:", props.Text{Size: 9, Align: align.Right, Right: 2, Top: 7}),
		),
		col.New(3).Add(
			text.New(FormatMoney(data.Currency, data.Invoice.Amount), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1,
			}),
			text.New(statusLabel(data.Invoice.Status), props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 1, Top: 7, Color: statusColor,
			}),
		),
	)
}

// footerRows: QR con la referencia de pago + leyenda.
func footerRows(inv *entity.Invoice) []core.Row {
	return []core.Row{
		row.New(40).Add(
			col.New(3).Add(code.NewQr(PaymentReference(inv), props.Rect{Percent: 95, Center: true})),
			col.New(9).Add(
				text.New("Referensi pembayaran:", props.Text{Style: fontstyle.Bold, Size: 8, Top: 4, Left: 3}),
				text.New(PaymentReference(inv), props.Text{Size: 7, Top: 9, Left: 3, Color: colorGray}),
				text.New("Cantumkan referensi ini saat melakukan pembayaran kepada pengelola.", props.Text{
					Size: 8, Top: 16, Left: 3, Color: colorGray,
				}),
			),
		),
		row.New(8).Add(col.New(12).Add(
			text.New("Dokumen ini diterbitkan secara otomatis dan sah tanpa tanda tangan.", props.Text{
				Size: 6.5, Color: colorGray, Top: 2,
			}),
		)),
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

// PaymentReference referencia que identifica la tagihan en el cobro.
func PaymentReference(inv *entity.Invoice) string {
	return fmt.Sprintf("IURAN/%s/%s/%s", inv.BillingPeriod, strings.ToUpper(shortRef(inv.ResidentID)), strings.ToUpper(shortRef(inv.ID)))
}

// FormatMoney formatea el monto con separadores de miles indonesios: "Rp 50.000".
func FormatMoney(currency string, amount decimal.Decimal) string {
	symbol := currency
	if currency == "" || currency == "IDR" {
		symbol = "Rp"
	}
	p := message.NewPrinter(language.Indonesian)
	if amount.Equal(amount.Truncate(0)) {
		return symbol + " " + p.Sprintf("%d", amount.IntPart())
	}
	f, _ := amount.Round(2).Float64()
	return symbol + " " + p.Sprintf("%.2f", f)
}

func statusLabel(s entity.InvoiceStatus) string {
	switch s {
	case entity.InvoiceStatusPaid:
		return "LUNAS"
	case entity.InvoiceStatusOverdue:
		return "JATUH TEMPO"
	case entity.InvoiceStatusCancelled:
		return "DIBATALKAN"
	default:
		return "BELUM DIBAYAR"
	}
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func shortRef(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
