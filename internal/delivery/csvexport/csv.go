package csvexport

import (
	"encoding/csv"
	"io"

	"github.com/shelfscout/backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Header is the column order of exported rows
var Header = []string{
	"ASIN", "JAN", "Title", "Brand", "Category",
	"Rank", "Price", "PriceSource", "PointsRate", "FeeRate",
	"Seller", "PackageSize", "Shipping",
}

// utf8BOM makes spreadsheet applications detect UTF-8 for Japanese titles
const utf8BOM = "\ufeff"

// Writer streams product records as CSV rows
type Writer struct {
	csv *csv.Writer
}

// NewWriter writes the BOM and header row to w
func NewWriter(w io.Writer) (*Writer, error) {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return nil, err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return nil, err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	return &Writer{csv: cw}, nil
}

// Write appends one record and flushes it
func (w *Writer) Write(r *domain.ProductRecord) error {
	if err := w.csv.Write(Row(r)); err != nil {
		return err
	}
	w.csv.Flush()
	return w.csv.Error()
}

// WriteAll writes header and records to w
func WriteAll(w io.Writer, records []*domain.ProductRecord) error {
	cw, err := NewWriter(w)
	if err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// Row renders a record in Header order
func Row(r *domain.ProductRecord) []string {
	return []string{
		r.ASIN,
		r.JAN,
		r.Title,
		r.Brand,
		r.Category,
		r.RankDisplay,
		r.PriceDisplay,
		string(r.PriceSource),
		percent(r.PointsRate),
		percent(r.FeeRate),
		r.Seller,
		r.PackageSize,
		r.ShippingEstimate,
	}
}

func percent(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return d.String() + "%"
}
