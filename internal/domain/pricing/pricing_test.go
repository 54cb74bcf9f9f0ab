package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		input string
		value float64
		ok    bool
	}{
		{"₹15.50", 15.50, true},
		{"Rs. 1230", 1230, true},
		{"Rs 99", 99, true},
		{"₹1,234.56", 1234.56, true},
		{"free", 0, false},
		{"", 0, false},
		{"₹", 0, false},
	}
	for _, tc := range tests {
		value, ok := ParsePrice(tc.input)
		require.Equal(t, tc.ok, ok, "input %q", tc.input)
		if tc.ok {
			require.InDelta(t, tc.value, value, 0.001, "input %q", tc.input)
		}
	}
}

func TestCompareSortsAscendingAndFlagsCheapest(t *testing.T) {
	entries := Compare([]PriceInfo{
		{Pharmacy: "NetMeds", Price: "₹30.00"},
		{Pharmacy: "Tata 1mg", Price: "₹10.00"},
		{Pharmacy: "Apollo", Price: "₹20.00"},
	})
	require.Len(t, entries, 3)
	require.Equal(t, "Tata 1mg", entries[0].Pharmacy)
	require.Equal(t, "Apollo", entries[1].Pharmacy)
	require.Equal(t, "NetMeds", entries[2].Pharmacy)
	require.True(t, entries[0].Cheapest)
	require.False(t, entries[1].Cheapest)
	require.False(t, entries[2].Cheapest)

	// Bar widths are monotonic non-decreasing with value.
	require.LessOrEqual(t, entries[0].BarWidth, entries[1].BarWidth)
	require.LessOrEqual(t, entries[1].BarWidth, entries[2].BarWidth)
	// Headroom scale applies when values differ.
	require.InDelta(t, 95.0, entries[2].BarWidth, 0.001)
}

func TestCompareTiesAllFlaggedCheapest(t *testing.T) {
	entries := Compare([]PriceInfo{
		{Pharmacy: "A", Price: "₹10"},
		{Pharmacy: "B", Price: "₹10"},
		{Pharmacy: "C", Price: "₹25"},
	})
	require.Len(t, entries, 3)
	require.True(t, entries[0].Cheapest)
	require.True(t, entries[1].Cheapest)
	require.False(t, entries[2].Cheapest)
}

func TestCompareDropsUnparseableEntries(t *testing.T) {
	entries := Compare([]PriceInfo{
		{Pharmacy: "A", Price: "price on request"},
		{Pharmacy: "B", Price: "₹42"},
	})
	require.Len(t, entries, 1)
	require.Equal(t, "B", entries[0].Pharmacy)
	require.True(t, entries[0].Cheapest)
}

func TestCompareSingleEntryFullWidth(t *testing.T) {
	entries := Compare([]PriceInfo{{Pharmacy: "A", Price: "₹42"}})
	require.Len(t, entries, 1)
	require.InDelta(t, 100.0, entries[0].BarWidth, 0.001)
}

func TestCompareMinimumBarWidth(t *testing.T) {
	entries := Compare([]PriceInfo{
		{Pharmacy: "A", Price: "₹1"},
		{Pharmacy: "B", Price: "₹1000"},
	})
	require.Len(t, entries, 2)
	require.InDelta(t, 5.0, entries[0].BarWidth, 0.001)
}
