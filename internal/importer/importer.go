package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"pos-storefront/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads a catalog CSV and upserts its products.
type CSVImporter struct {
	reader      io.Reader
	productRepo ProductWriter
	placeholder string
}

func NewCSVImporter(r io.Reader, repo ProductWriter, placeholder string) *CSVImporter {
	return &CSVImporter{
		reader:      r,
		productRepo: repo,
		placeholder: placeholder,
	}
}

// Run parses the file and upserts every well-formed product. Malformed rows
// are returned as warnings and do not stop the import.
func (i *CSVImporter) Run(ctx context.Context) (int, []error, error) {
	entries, err := ReadCSV(i.reader)
	if err != nil {
		return 0, nil, err
	}
	products, warnings := Normalize(entries, i.placeholder)

	imported := 0
	for _, p := range products {
		if _, err := i.productRepo.Upsert(ctx, p); err != nil {
			return imported, warnings, fmt.Errorf("upsert product %q: %w", p.ID, err)
		}
		imported++
	}
	return imported, warnings, nil
}

// ReadCSV parses a catalog file with a header row. Recognised columns are
// id, name, price, category and image; any other column is ignored. When
// the file has no id column the 0-based row index is used.
func ReadCSV(r io.Reader) ([]Entry, error) {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true

	headers, err := csvr.Read()
	if err != nil {
		return nil, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["name"]; !ok {
		return nil, errors.New("missing name column")
	}
	if _, ok := index["price"]; !ok {
		return nil, errors.New("missing price column")
	}
	_, hasID := index["id"]

	var entries []Entry
	for row := 0; ; row++ {
		record, err := csvr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return entries, fmt.Errorf("read row %d: %w", row, err)
		}

		e := Entry{
			Name:     pick(record, index, "name"),
			Price:    pick(record, index, "price"),
			Category: pick(record, index, "category"),
			Image:    pick(record, index, "image"),
		}
		if hasID {
			e.ID = pick(record, index, "id")
		} else {
			e.ID = strconv.Itoa(row)
		}
		e.HasID = e.ID != ""
		entries = append(entries, e)
	}
	return entries, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
