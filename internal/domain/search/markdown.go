package search

import (
	"regexp"
	"strings"

	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/domain/pricing"
)

var (
	bulletRe   = regexp.MustCompile(`^\s*\*\s*\*\*(.*?)\*\*:\s*(.*)`)
	currencyRe = regexp.MustCompile(`^(₹|Rs\.?)\s*[\d,]+\.?\d*`)
	mdLinkRe   = regexp.MustCompile(`\[(.*?)\]\(.*?\)`)
)

const notePrefix = "**Note:**"

// extractNote splits a leading one-line disambiguation note from the answer
// body. The note is emitted by the backend when the exact query had no match.
func extractNote(content string) (note, rest string) {
	if !strings.HasPrefix(content, notePrefix) {
		return "", content
	}
	lines := strings.Split(content, "\n")
	note = strings.TrimSpace(strings.ReplaceAll(lines[0], "**", ""))
	rest = strings.TrimSpace(strings.Join(lines[1:], "\n"))
	return note, rest
}

// parseSections slices the fixed markdown grammar into display sections. A
// level-2 heading opens a section; non-blank lines accumulate into it. When
// the input contains no level-2 heading at all, the raw text comes back as a
// single paragraph section so minor backend format drift never renders blank.
func parseSections(content string) []Section {
	type rawSection struct {
		title string
		lines []string
	}

	var (
		sections []rawSection
		current  *rawSection
	)
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "## ") {
			if current != nil {
				sections = append(sections, *current)
			}
			current = &rawSection{title: strings.TrimSpace(line[3:])}
			continue
		}
		if current != nil && strings.TrimSpace(line) != "" {
			current.lines = append(current.lines, strings.TrimSpace(line))
		}
	}
	if current != nil {
		sections = append(sections, *current)
	}

	if len(sections) == 0 {
		return []Section{{Paragraph: true, Text: content}}
	}

	out := make([]Section, 0, len(sections))
	for _, raw := range sections {
		out = append(out, buildSection(raw.title, raw.lines))
	}
	return out
}

func buildSection(title string, lines []string) Section {
	// Salt comparison reads better as prose; skip key/value extraction.
	if strings.Contains(strings.ToLower(title), "salt comparison") {
		return Section{Title: title, Paragraph: true, Text: strings.Join(lines, "\n")}
	}

	section := Section{Title: title}
	var prices []pricing.PriceInfo

	for _, line := range lines {
		match := bulletRe.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		label := strings.TrimSpace(match[1])
		value := strings.TrimSpace(match[2])

		switch strings.ToLower(label) {
		case "prices":
			// header row above the per-vendor bullets, nothing to record
		case "regulatory status":
			// last write wins for the singleton fields
			section.RegulatoryStatus = value
		case "recall/warning":
			if strings.EqualFold(value, "none") {
				section.RecallWarning = ""
			} else {
				section.RecallWarning = value
			}
		default:
			if token := currencyRe.FindString(value); token != "" {
				pharmacy := mdLinkRe.ReplaceAllString(label, "$1")
				prices = append(prices, pricing.PriceInfo{Pharmacy: pharmacy, Price: token})
			} else {
				section.Details = append(section.Details, DetailRow{Label: label, Value: value})
			}
		}
	}

	section.Prices = pricing.Compare(prices)
	return section
}

// dedupeSources drops repeated citations; the URI is the identity.
func dedupeSources(sources []Source) []Source {
	seen := make(map[string]struct{}, len(sources))
	out := make([]Source, 0, len(sources))
	for _, src := range sources {
		if src.URI == "" {
			continue
		}
		if _, ok := seen[src.URI]; ok {
			continue
		}
		seen[src.URI] = struct{}{}
		out = append(out, src)
	}
	return out
}
