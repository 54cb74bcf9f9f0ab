package search

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSectionsFallbackWithoutHeadings(t *testing.T) {
	content := "Paracetamol is a common analgesic.\nIt is widely available."
	sections := parseSections(content)
	require.Len(t, sections, 1)
	require.True(t, sections[0].Paragraph)
	require.Equal(t, content, sections[0].Text)
}

func TestParseSectionsPriceRowsSortedAndFlagged(t *testing.T) {
	content := "## A\n* **Prices**:\n* **X**: ₹10\n* **Y**: ₹20"
	sections := parseSections(content)
	require.Len(t, sections, 1)
	require.Equal(t, "A", sections[0].Title)
	require.Len(t, sections[0].Prices, 2)
	require.Equal(t, "X", sections[0].Prices[0].Pharmacy)
	require.True(t, sections[0].Prices[0].Cheapest)
	require.Equal(t, "Y", sections[0].Prices[1].Pharmacy)
	require.False(t, sections[0].Prices[1].Cheapest)
}

func TestParseSectionsDetailAndDedicatedFields(t *testing.T) {
	content := `## Branded Medicine: Calpol 650
* **Salt Composition**: Paracetamol 650mg
* **Regulatory Status**: CDSCO Approved (Schedule H)
* **Recall/Warning**: Batch 42 recalled in 2025
* **Manufacturer**: GSK`
	sections := parseSections(content)
	require.Len(t, sections, 1)
	section := sections[0]
	require.Equal(t, "Branded Medicine: Calpol 650", section.Title)
	require.Equal(t, "CDSCO Approved (Schedule H)", section.RegulatoryStatus)
	require.Equal(t, "Batch 42 recalled in 2025", section.RecallWarning)
	require.Equal(t, []DetailRow{
		{Label: "Salt Composition", Value: "Paracetamol 650mg"},
		{Label: "Manufacturer", Value: "GSK"},
	}, section.Details)
}

func TestParseSectionsRecallNoneIsAbsent(t *testing.T) {
	for _, value := range []string{"None", "none", "NONE"} {
		content := "## A\n* **Recall/Warning**: " + value
		sections := parseSections(content)
		require.Len(t, sections, 1)
		require.Empty(t, sections[0].RecallWarning, "value %q", value)
	}
}

func TestParseSectionsDuplicateSingletonLastWriteWins(t *testing.T) {
	content := "## A\n* **Regulatory Status**: OTC\n* **Regulatory Status**: Schedule H"
	sections := parseSections(content)
	require.Equal(t, "Schedule H", sections[0].RegulatoryStatus)
}

func TestParseSectionsMarkdownLinkLabelReducedToAnchorText(t *testing.T) {
	content := "## A\n* **[Tata 1mg](https://www.1mg.com)**: ₹15.50"
	sections := parseSections(content)
	require.Len(t, sections[0].Prices, 1)
	require.Equal(t, "Tata 1mg", sections[0].Prices[0].Pharmacy)
	require.Equal(t, "₹15.50", sections[0].Prices[0].Price)
}

func TestParseSectionsSaltComparisonIsParagraph(t *testing.T) {
	content := "## Salt Comparison\nBoth contain the same active ingredient.\n* **Not**: parsed"
	sections := parseSections(content)
	require.Len(t, sections, 1)
	require.True(t, sections[0].Paragraph)
	require.Contains(t, sections[0].Text, "same active ingredient")
	require.Empty(t, sections[0].Details)
}

func TestParseSectionsRsPrefixCountsAsPrice(t *testing.T) {
	content := "## A\n* **NetMeds**: Rs. 99.50"
	sections := parseSections(content)
	require.Len(t, sections[0].Prices, 1)
	require.Equal(t, "Rs. 99.50", sections[0].Prices[0].Price)
}

func TestExtractNote(t *testing.T) {
	content := "**Note:** An exact match for \"Xyz\" was not found. Showing results for the most similar medicine, Abc.\n## Branded Medicine: Abc\n* **Form**: Tablet"
	note, rest := extractNote(content)
	require.Equal(t, `Note: An exact match for "Xyz" was not found. Showing results for the most similar medicine, Abc.`, note)
	require.True(t, len(rest) > 0)
	require.Equal(t, "## Branded Medicine: Abc\n* **Form**: Tablet", rest)

	note, rest = extractNote("## Heading\nbody")
	require.Empty(t, note)
	require.Equal(t, "## Heading\nbody", rest)
}

func TestDedupeSources(t *testing.T) {
	sources := dedupeSources([]Source{
		{URI: "https://a.example", Title: "A"},
		{URI: "https://a.example", Title: "A again"},
		{URI: "", Title: "empty"},
		{URI: "https://b.example", Title: "B"},
	})
	require.Equal(t, []Source{
		{URI: "https://a.example", Title: "A"},
		{URI: "https://b.example", Title: "B"},
	}, sources)
}

func TestCanonicalizeQuery(t *testing.T) {
	require.Equal(t, "calpol 650", canonicalizeQuery("  Calpol-650! "))
	require.Equal(t, "dolo 650", canonicalizeQuery("DOLO   650"))
	require.Equal(t, "", canonicalizeQuery("  ??? "))
}
