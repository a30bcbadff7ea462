// Package aggregate turns a week's orders into per-supplier purchase lists.
// The fold is pure and order-independent, so callers can re-run it on every
// snapshot refresh.
package aggregate

import (
	"sort"
	"strings"

	"github.com/example/weekmarket/pkg/models"
)

// UnknownSupplier buckets line items whose snapshot carries no supplier.
const UnknownSupplier = "Unknown"

// Comment is one customer remark attributed to the ordering company.
type Comment struct {
	Company string `json:"company"`
	Comment string `json:"comment"`
}

// Entry is the derived purchase line for one (supplier, product) pair. Item
// is the first snapshot encountered; its price is display-only — callers
// needing the authoritative catalog price must fetch the product separately.
type Entry struct {
	Item     models.LineItem `json:"item"`
	Quantity int             `json:"quantity"`
	Comments []Comment       `json:"comments,omitempty"`
}

// Result maps supplier -> product id -> aggregate entry.
type Result map[string]map[string]*Entry

// Orders sums line-item quantities across all orders of a week, grouped by
// supplier then product id. Quantities are summed regardless of delivery
// status; purchasing decisions are made before deliveries complete. Negative
// quantities contribute nothing.
func Orders(orders []models.Order) Result {
	result := make(Result)

	for _, order := range orders {
		for _, item := range order.Items {
			supplier := item.Supplier
			if supplier == "" {
				supplier = UnknownSupplier
			}

			bySupplier, ok := result[supplier]
			if !ok {
				bySupplier = make(map[string]*Entry)
				result[supplier] = bySupplier
			}

			qty := item.Quantity
			if qty < 0 {
				qty = 0
			}

			entry, ok := bySupplier[item.ID]
			if !ok {
				entry = &Entry{Item: item, Quantity: qty}
				bySupplier[item.ID] = entry
			} else {
				entry.Quantity += qty
			}

			if comment := strings.TrimSpace(item.Comment); comment != "" {
				entry.Comments = append(entry.Comments, Comment{
					Company: attribution(order),
					Comment: comment,
				})
			}
		}
	}

	return result
}

// attribution names the order's company for comment display, falling back to
// the email and then to the unknown bucket.
func attribution(order models.Order) string {
	if order.CompanyName != "" {
		return order.CompanyName
	}
	if order.Email != "" {
		return order.Email
	}
	return UnknownSupplier
}

// Suppliers returns the supplier names of a result in stable order.
func (r Result) Suppliers() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entries returns one supplier's purchase lines sorted by product id, so
// rendered lists and serialized responses come out in a stable order.
func (r Result) Entries(supplier string) []*Entry {
	bySupplier := r[supplier]
	ids := make([]string, 0, len(bySupplier))
	for id := range bySupplier {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	entries := make([]*Entry, len(ids))
	for i, id := range ids {
		entries[i] = bySupplier[id]
	}
	return entries
}

// ProductIDs returns every distinct product id in the result, for batch
// catalog lookups.
func (r Result) ProductIDs() []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, bySupplier := range r {
		for id := range bySupplier {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	sort.Strings(ids)
	return ids
}
