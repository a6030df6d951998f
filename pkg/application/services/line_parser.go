package services

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/VincentNinIA/butv2/pkg/domain/entities"
	"github.com/VincentNinIA/butv2/pkg/domain/repositories"
)

// ParseFailureReason is attached to lines no grammar pattern matched.
const ParseFailureReason = "line format not recognized"

// Fragments shared by the line grammar. Quantity and price tolerate comma
// or dot decimal separators and an optional trailing currency marker; the
// price is anchored at end of line so an amount like "12€" can never be
// captured as a quantity.
const (
	qtyFrag          = `(?:Qt[ée]\.?|Qty|Quantit[ée])\s*:?\s*(\d+)`
	priceColonFrag   = `(?:Prix|Price)\s*:\s*(\d+(?:[.,]\d+)?)\s*(?:€|EUR|euros?)?`
	priceNoColonFrag = `(?:Prix|Price)\s+(\d+(?:[.,]\d+)?)\s*(?:€|EUR|euros?)?`
)

// Ordered grammar, most specific first. Groups are always
// (identifier, designation, quantity, price).
var linePatterns = []*regexp.Regexp{
	// 1. Two-token numeric identifier, labeled quantity and colon price.
	regexp.MustCompile(`(?i)^(\d+\s+\d+)\s+(.+?)\s+` + qtyFrag + `\s+` + priceColonFrag + `\s*$`),
	// 2. Alphanumeric first token in a two-token identifier.
	regexp.MustCompile(`(?i)^([A-Za-z][\w-]*\s+\d+)\s+(.+?)\s+` + qtyFrag + `\s+` + priceColonFrag + `\s*$`),
	// 3. Two-token identifier without the colon before the price.
	regexp.MustCompile(`(?i)^([\w-]+\s+\d+)\s+(.+?)\s+` + qtyFrag + `\s+` + priceNoColonFrag + `\s*$`),
	// 4. Single-token identifier.
	regexp.MustCompile(`(?i)^([\w-]+)\s+(.+?)\s+` + qtyFrag + `\s+` + priceColonFrag + `\s*$`),
	// 5. Minimal fallback: token, free text, integer, amount.
	regexp.MustCompile(`(?i)^(\S+)\s+(.+?)\s+(\d+)\s+(\d+(?:[.,]\d+)?)\s*(?:€|EUR|euros?)?\s*$`),
}

// Free-standing price clauses, tried in order against the end of the line.
// The bare-amount form requires a currency marker so free text is never
// mistaken for a price.
var priceForms = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:Prix|Price)\s*:?\s*(\d+(?:[.,]\d+)?)\s*(?:€|EUR|euros?)?\s*$`),
	regexp.MustCompile(`(?i)(?:^|\s)[àa]\s+(\d+(?:[.,]\d+)?)\s*(?:€|EUR|euros?)?\s*$`),
	regexp.MustCompile(`(?i)\s(\d+(?:[.,]\d+)?)\s*(?:€|EUR|euros?)\s*$`),
}

// Grammar for a line whose price clause has already been stripped. Groups
// are (identifier, designation, quantity).
var strippedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(\d+\s+\d+)\s+(.+?)\s+` + qtyFrag + `\s*$`),
	regexp.MustCompile(`(?i)^([\w-]+\s+\d+)\s+(.+?)\s+` + qtyFrag + `\s*$`),
	regexp.MustCompile(`(?i)^([\w-]+)\s+(.+?)\s+` + qtyFrag + `\s*$`),
	regexp.MustCompile(`(?i)^(\S+)\s+(.+?)\s+(\d+)\s*$`),
}

// extractPrice pulls a free-standing price clause ("Prix : 0,7€", "à 8€",
// "12€") off the end of the line and returns the remainder. The boolean is
// false when no clause is present.
func extractPrice(line string) (decimal.Decimal, string, bool) {
	for _, form := range priceForms {
		loc := form.FindStringSubmatchIndex(line)
		if loc == nil {
			continue
		}
		price, err := parseAmount(line[loc[2]:loc[3]])
		if err != nil {
			continue
		}
		return price, strings.TrimSpace(line[:loc[0]]), true
	}
	return decimal.Zero, line, false
}

// LineParser converts one raw order line into a structured line item and
// annotates it with the catalog lookup outcome. A line that matches no
// pattern yields a failure result, never an error; a parsed line whose
// identifier is unknown is a valid outcome with ProductFound false.
type LineParser struct {
	catalog repositories.CatalogRepository
}

func NewLineParser(catalog repositories.CatalogRepository) *LineParser {
	return &LineParser{catalog: catalog}
}

// Parse applies the grammar to one trimmed line, stopping at the first
// matching pattern.
func (p *LineParser) Parse(raw string, lineNumber int) entities.OrderLine {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return entities.FailedOrderLine(raw, lineNumber, "empty line")
	}

	for _, pattern := range linePatterns {
		m := pattern.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		price, err := parseAmount(m[4])
		if err != nil {
			continue
		}
		if line, ok := p.buildLine(raw, lineNumber, m[1], m[2], m[3], price); ok {
			return line
		}
	}

	// Strip-then-extract: pull the price clause off the end and match the
	// remainder. This is what lets the "à 8€" form through, which no full
	// pattern anchors.
	if price, rest, ok := extractPrice(trimmed); ok {
		for _, pattern := range strippedPatterns {
			m := pattern.FindStringSubmatch(rest)
			if m == nil {
				continue
			}
			if line, ok := p.buildLine(raw, lineNumber, m[1], m[2], m[3], price); ok {
				return line
			}
		}
	}

	return entities.FailedOrderLine(raw, lineNumber, ParseFailureReason)
}

func (p *LineParser) buildLine(raw string, lineNumber int, id, designation, qtyText string, price decimal.Decimal) (entities.OrderLine, bool) {
	quantity, err := strconv.ParseInt(qtyText, 10, 64)
	if err != nil || quantity <= 0 {
		return entities.OrderLine{}, false
	}

	line := entities.OrderLine{
		RawText:     raw,
		LineNumber:  lineNumber,
		Parsed:      true,
		CandidateID: entities.ProductID(strings.TrimSpace(id)),
		Designation: strings.TrimSpace(designation),
		Quantity:    entities.Quantity(quantity),
		UnitPrice:   price,
		LineTotal:   price.Mul(decimal.NewFromInt(quantity)),
		PriceGiven:  true,
	}

	if p.catalog != nil {
		if _, err := p.catalog.Lookup(line.CandidateID); err == nil {
			line.ProductFound = true
		}
	}
	return line, true
}

// ParseBatch splits batch text into lines and parses each independently.
// Blank lines are skipped; line numbers refer to the original text.
func (p *LineParser) ParseBatch(batchText string) []entities.OrderLine {
	var lines []entities.OrderLine
	for i, raw := range strings.Split(batchText, "\n") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		lines = append(lines, p.Parse(raw, i+1))
	}
	return lines
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return decimal.Zero, errors.New("empty amount")
	}
	return decimal.NewFromString(s)
}
