package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"pos-storefront/internal/domain"
	"pos-storefront/internal/money"
	"pos-storefront/internal/validate"
)

// Entry is a raw catalog record before validation. Price is kept as text so
// that both CSV cells and JSON numbers go through the same decimal parser.
type Entry struct {
	ID       string
	HasID    bool
	Name     string
	Price    string
	Category string
	Image    string
}

// DecodeJSON reads a JSON array of product objects. Anything other than an
// array is rejected as a whole. synthesized reports that no object carried
// an id and sequential ids starting at 1 were assigned.
func DecodeJSON(r io.Reader) (entries []Entry, synthesized bool, err error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, false, fmt.Errorf("decode catalog: %w", err)
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, false, fmt.Errorf("catalog payload is %s, not an array", jsonKind(raw))
	}

	entries = make([]Entry, 0, len(items))
	anyID := false
	for _, item := range items {
		obj, _ := item.(map[string]interface{})
		e := Entry{
			Name:     scalar(obj["name"]),
			Price:    scalar(obj["price"]),
			Category: scalar(obj["category"]),
			Image:    scalar(obj["image"]),
		}
		if id, ok := obj["id"]; ok && id != nil {
			e.ID = scalar(id)
			e.HasID = e.ID != ""
		}
		anyID = anyID || e.HasID
		entries = append(entries, e)
	}

	if !anyID && len(entries) > 0 {
		for i := range entries {
			entries[i].ID = strconv.Itoa(i + 1)
			entries[i].HasID = true
		}
		synthesized = true
	}
	return entries, synthesized, nil
}

// Normalize validates entries and converts them into products in input
// order. Malformed entries are skipped and reported in the returned slice.
func Normalize(entries []Entry, placeholder string) ([]domain.Product, []error) {
	products := make([]domain.Product, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	var warnings []error

	for i, e := range entries {
		if !e.HasID {
			warnings = append(warnings, &domain.MalformedEntryError{Index: i, Reason: "missing id"})
			continue
		}
		if _, dup := seen[e.ID]; dup {
			warnings = append(warnings, &domain.MalformedEntryError{Index: i, Reason: fmt.Sprintf("duplicate id %q", e.ID)})
			continue
		}
		cents, err := money.Parse(e.Price)
		if err != nil {
			warnings = append(warnings, &domain.MalformedEntryError{Index: i, Reason: fmt.Sprintf("price: %v", err)})
			continue
		}

		p := domain.Product{
			ID:         e.ID,
			Name:       e.Name,
			PriceCents: cents,
			Category:   e.Category,
			Image:      ImageOrPlaceholder(e.Image, placeholder),
			Position:   len(products),
		}
		if err := validate.Check(p); err != nil {
			warnings = append(warnings, &domain.MalformedEntryError{Index: i, Reason: err.Error()})
			continue
		}
		seen[e.ID] = struct{}{}
		products = append(products, p)
	}
	return products, warnings
}

// ImageOrPlaceholder returns ref when it is a usable http(s) URL or relative
// path and placeholder otherwise.
func ImageOrPlaceholder(ref, placeholder string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.EqualFold(ref, "nan") {
		return placeholder
	}
	u, err := url.Parse(ref)
	if err != nil {
		return placeholder
	}
	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return placeholder
		}
		return ref
	case "":
		if strings.HasPrefix(u.Path, "/") || strings.Contains(u.Path, "..") {
			return placeholder
		}
		return ref
	default:
		return placeholder
	}
}

func scalar(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		b, _ := json.Marshal(t)
		return string(bytes.TrimSpace(b))
	}
}

func jsonKind(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]interface{}:
		return "an object"
	case string:
		return "a string"
	case json.Number:
		return "a number"
	case bool:
		return "a boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
