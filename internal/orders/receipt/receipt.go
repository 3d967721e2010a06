// Package receipt renders order receipts as PDF documents.
package receipt

import (
	"bytes"
	"fmt"
	"time"

	"github.com/dejobratic/orderbot/internal/orders/domain"
	"github.com/go-pdf/fpdf"
)

const (
	timestampLayout = "2006-01-02 15:04:05"
	lineHeight      = 7.0
)

// Filename is the attachment name used when a receipt is sent.
func Filename(orderID string) string {
	return fmt.Sprintf("receipt_%s.pdf", orderID)
}

// Renderer produces a fixed-layout receipt. Output is byte-for-byte stable for
// the same order and clock reading.
type Renderer struct {
	now func() time.Time
}

// NewRenderer returns a renderer stamping receipts with now(). A nil now uses the wall clock in UTC.
func NewRenderer(now func() time.Time) *Renderer {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Renderer{now: now}
}

// Render lays out order on a single letter page, continuing on further pages for long carts.
func (r *Renderer) Render(order domain.Order) ([]byte, error) {
	renderedAt := r.now()

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetCompression(false)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(renderedAt)
	pdf.SetModificationDate(renderedAt)
	pdf.SetTitle("Order Receipt "+order.ID, true)
	pdf.SetMargins(25, 25, 25)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	line := func(text string) {
		pdf.CellFormat(0, lineHeight, tr(text), "", 1, "L", false, 0, "")
	}
	heading := func(text string) {
		pdf.Ln(lineHeight / 2)
		pdf.SetFont("Helvetica", "B", 13)
		line(text)
		pdf.SetFont("Helvetica", "", 11)
	}

	pdf.SetFont("Helvetica", "B", 20)
	line("ORDER RECEIPT")
	pdf.Ln(lineHeight / 2)

	pdf.SetFont("Helvetica", "", 11)
	line("Order ID: " + order.ID)
	line("Date: " + renderedAt.Format(timestampLayout))

	heading("Customer Information")
	line("Name: " + order.Customer.Name)
	line("Phone: " + order.Customer.Phone)
	pdf.MultiCell(0, lineHeight, tr("Address: "+order.Customer.Address.String()), "", "L", false)

	heading("Order Items")
	for _, item := range order.Items {
		line(fmt.Sprintf("- %s x %d - %s", item.ProductName, item.Quantity, item.LineTotal().StringFixed(2)))
	}

	pdf.Ln(lineHeight / 2)
	line("Delivery Type: " + order.DeliveryType.Label())

	pdf.SetFont("Helvetica", "B", 14)
	line("TOTAL: " + order.TotalCost.StringFixed(2))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt for %s: %w", order.ID, err)
	}
	return buf.Bytes(), nil
}
