package pricing

import (
	"sort"
	"strconv"
	"strings"
)

// PriceInfo is one vendor quote as returned by the backend: the price stays a
// display string because vendors format INR inconsistently.
type PriceInfo struct {
	Pharmacy string `json:"pharmacy"`
	Price    string `json:"price"`
	Discount string `json:"discount,omitempty"`
}

// ComparisonEntry is a quote enriched for chart rendering.
type ComparisonEntry struct {
	PriceInfo
	Value    float64 `json:"value"`
	BarWidth float64 `json:"barWidth"`
	Cheapest bool    `json:"cheapest"`
}

const minBarWidth = 5

// Compare parses each quote into a numeric value, drops unparseable entries
// from the comparison, and computes relative bar widths. Entries come back
// sorted ascending by value; every entry equal to the minimum is flagged
// cheapest.
func Compare(prices []PriceInfo) []ComparisonEntry {
	entries := make([]ComparisonEntry, 0, len(prices))
	for _, p := range prices {
		value, ok := ParsePrice(p.Price)
		if !ok {
			continue
		}
		entries = append(entries, ComparisonEntry{PriceInfo: p, Value: value})
	}
	if len(entries) == 0 {
		return entries
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Value < entries[j].Value
	})

	minVal := entries[0].Value
	maxVal := entries[len(entries)-1].Value

	// Leave headroom above the tallest bar when values differ, so the chart
	// never renders a full-width bar next to shorter ones.
	scale := 1.0
	if maxVal > minVal {
		scale = 0.95
	}

	for i := range entries {
		width := 0.0
		if maxVal != 0 {
			width = entries[i].Value / maxVal * 100 * scale
		}
		if width < minBarWidth {
			width = minBarWidth
		}
		entries[i].BarWidth = width
		entries[i].Cheapest = entries[i].Value == minVal
	}
	return entries
}

// ParsePrice extracts a float from a currency-formatted string such as
// "₹15.50" or "Rs. 1,230". It reports false when no numeric token survives.
func ParsePrice(price string) (float64, bool) {
	var b strings.Builder
	for _, r := range price {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
