package receipt

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/dejobratic/orderbot/internal/orders/domain"
	"github.com/shopspring/decimal"
)

func sampleOrder(t *testing.T, items int) domain.Order {
	t.Helper()
	cart := make([]domain.CartItem, 0, items)
	for i := range items {
		cart = append(cart, domain.CartItem{
			ProductID:   "P1",
			ProductName: "Green Tea",
			Quantity:    i + 1,
			Price:       decimal.RequireFromString("10.00"),
		})
	}

	order, err := domain.NewOrder("ORD-100", 42,
		domain.CustomerProfile{
			Name:  "Ann",
			Phone: "09123",
			Address: domain.Address{
				HouseNo: "12", Street: "Main", Ward: "3", Township: "Downtown", City: "Yangon",
			},
		},
		cart, domain.DeliveryExpressCars,
		time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("NewOrder() error = %v", err)
	}
	return order
}

func fixedClock() time.Time {
	return time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
}

func TestRender(t *testing.T) {
	renderer := NewRenderer(fixedClock)

	data, err := renderer.Render(sampleOrder(t, 1))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("expected PDF header, got %q", data[:8])
	}

	content := string(data)
	for _, want := range []string{
		"ORDER RECEIPT",
		"Order ID: ORD-100",
		"Date: 2024-05-01 10:30:00",
		"Name: Ann",
		"Phone: 09123",
		"12, Main, 3, Downtown, Yangon",
		"Green Tea x 1 - 10.00",
		"Delivery Type: Express Cars",
		"TOTAL: 10.00",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("expected receipt to contain %q", want)
		}
	}
}

func TestRender_Deterministic(t *testing.T) {
	renderer := NewRenderer(fixedClock)
	order := sampleOrder(t, 3)

	first, err := renderer.Render(order)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	second, err := renderer.Render(order)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Error("expected identical output for identical input and clock")
	}
}

func TestRender_LongCartSpansPages(t *testing.T) {
	data, err := NewRenderer(fixedClock).Render(sampleOrder(t, 60))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	content := string(data)
	if pages := strings.Count(content, "/Type /Page") - strings.Count(content, "/Type /Pages"); pages < 2 {
		t.Errorf("expected at least 2 pages, got %d", pages)
	}
	if !strings.Contains(content, "TOTAL: 18300.00") {
		t.Error("expected total on the last page")
	}
}

func TestFilename(t *testing.T) {
	if got := Filename("ORD-7"); got != "receipt_ORD-7.pdf" {
		t.Errorf("Filename() = %s", got)
	}
}
