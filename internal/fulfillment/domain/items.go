package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// UnknownItemTitle is the display title for cart records that carry neither
// a title nor a name.
const UnknownItemTitle = "Unknown Item"

// FromCartPayload normalizes cart-shaped line items. Records without a
// usable id are dropped; title falls back title -> name -> UnknownItemTitle,
// quantity to 1 when absent, non-numeric or non-positive, price to 0.
// Partial output is acceptable degraded behavior, so malformed records never
// produce an error.
func FromCartPayload(raw []map[string]any) []OrderItem {
	items := make([]OrderItem, 0, len(raw))
	for _, rec := range raw {
		id, ok := asID(rec["id"])
		if !ok {
			continue
		}

		title := UnknownItemTitle
		if s, ok := asString(rec["title"]); ok {
			title = s
		} else if s, ok := asString(rec["name"]); ok {
			title = s
		}

		// a zero or negative quantity would turn the decrement into a
		// stock increase; treat it as malformed like a non-numeric one
		qty := 1
		if n, ok := asNumber(rec["quantity"]); ok && n >= 1 {
			qty = int(n)
		}

		var price float64
		if n, ok := asNumber(rec["price"]); ok {
			price = n
		}

		items = append(items, OrderItem{BookID: id, Title: title, Quantity: qty, Price: price})
	}
	return items
}

// FromPaymentMetadata normalizes the payment-provider encoding. A length
// mismatch between the two lists yields an empty result rather than an
// error; entries with an empty id or a non-positive quantity are dropped.
// Metadata carries no titles, so one is synthesized.
func FromPaymentMetadata(bookIDs, quantities string) []OrderItem {
	ids := strings.Split(bookIDs, ",")
	qtys := strings.Split(quantities, ",")
	if len(ids) != len(qtys) {
		return []OrderItem{}
	}

	items := make([]OrderItem, 0, len(ids))
	for i, rawID := range ids {
		id := strings.TrimSpace(rawID)
		qty, err := strconv.Atoi(strings.TrimSpace(qtys[i]))
		if id == "" || err != nil || qty <= 0 {
			continue
		}
		items = append(items, OrderItem{BookID: id, Title: "Book " + id, Quantity: qty})
	}
	return items
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// asID accepts string ids and numeric ids; legacy cart rows stored book ids
// as JSON numbers.
func asID(v any) (string, bool) {
	if s, ok := asString(v); ok {
		return s, true
	}
	if n, ok := asNumber(v); ok {
		return strconv.FormatFloat(n, 'f', -1, 64), true
	}
	return "", false
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
