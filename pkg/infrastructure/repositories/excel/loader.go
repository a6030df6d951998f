package excel

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/VincentNinIA/butv2/pkg/domain/entities"
	"github.com/VincentNinIA/butv2/pkg/domain/services"
)

// Canonical column keys after header normalization and renames.
const (
	colProductID     = "product_id"
	colName          = "nom"
	colStockOnHand   = "stock_magasin"
	colPendingSales  = "qte_sur_commande_vente"
	colIncoming      = "qte_sur_commande_achat"
	colDelay         = "delai_de_reappro"
	colPurchasePrice = "cout_unit_total_estime"
	colSalePrice     = "prix_de_vente_conseille"
	colMinMargin     = "marge_minimum"
)

// headerRenames maps normalized sheet headers to canonical column keys.
var headerRenames = map[string]string{
	"n":           colProductID,
	"no":          colProductID,
	"numero":      colProductID,
	"reference":   colProductID,
	"description": colName,
	"designation": colName,
}

var (
	headerAccents = strings.NewReplacer(
		"é", "e", "è", "e", "ê", "e", "ë", "e",
		"à", "a", "â", "a", "î", "i", "ï", "i",
		"ô", "o", "û", "u", "ù", "u", "ü", "u", "ç", "c",
		"°", "", "€", "",
	)
	headerJunk = regexp.MustCompile(`[^a-z0-9]+`)
)

// Pricing defaults applied when the sheet lacks explicit price columns.
var (
	defaultSaleMarkup = decimal.NewFromFloat(1.15)
	defaultMarginRate = decimal.NewFromFloat(0.15)
)

// Loader ingests a product catalog from an Articles workbook.
type Loader struct {
	delayParser *services.DelayParser
	saleMarkup  decimal.Decimal
	marginRate  decimal.Decimal
}

// NewLoader creates a loader with the standard pricing rates.
func NewLoader() *Loader {
	return NewLoaderWithRates(defaultSaleMarkup, defaultMarginRate)
}

// NewLoaderWithRates creates a loader with custom sale markup and minimum
// margin rates, both relative to the purchase price.
func NewLoaderWithRates(saleMarkup, marginRate decimal.Decimal) *Loader {
	return &Loader{
		delayParser: services.NewDelayParser(),
		saleMarkup:  saleMarkup,
		marginRate:  marginRate,
	}
}

// Load reads the first sheet of the workbook at path and returns one product
// per usable row. Rows without an identifier are skipped, missing numeric
// cells coerce to zero and missing text cells to empty, so a sparse export
// still loads.
func (l *Loader) Load(path string) ([]*entities.Product, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("catalog workbook %s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, entities.ErrEmptyCatalog
	}

	columns := mapColumns(rows[0])
	if _, ok := columns[colProductID]; !ok {
		return nil, fmt.Errorf("catalog workbook %s has no product identifier column", path)
	}

	products := make([]*entities.Product, 0, len(rows)-1)
	for i, row := range rows[1:] {
		p, err := l.buildProduct(columns, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if p == nil {
			continue
		}
		products = append(products, p)
	}
	if len(products) == 0 {
		return nil, entities.ErrEmptyCatalog
	}
	return products, nil
}

// buildProduct converts one sheet row. A nil product with nil error means
// the row carries no identifier and is skipped.
func (l *Loader) buildProduct(columns map[string]int, row []string) (*entities.Product, error) {
	id := strings.TrimSpace(cellAt(row, columns, colProductID))
	if id == "" {
		return nil, nil
	}

	purchase := decimalCell(row, columns, colPurchasePrice)

	sale := decimalCell(row, columns, colSalePrice)
	if sale.IsZero() {
		sale = purchase.Mul(l.saleMarkup)
	}
	minMargin := decimalCell(row, columns, colMinMargin)
	if minMargin.IsZero() {
		minMargin = purchase.Mul(l.marginRate)
	}

	delayText := strings.TrimSpace(cellAt(row, columns, colDelay))

	p, err := entities.NewProduct(
		entities.ProductID(id),
		strings.TrimSpace(cellAt(row, columns, colName)),
		quantityCell(row, columns, colStockOnHand),
		quantityCell(row, columns, colPendingSales),
		quantityCell(row, columns, colIncoming),
		purchase,
		sale,
		minMargin,
		delayText,
		l.delayParser.Parse(delayText),
	)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", id, err)
	}
	return p, nil
}

// mapColumns normalizes the header row and resolves business renames,
// returning canonical key to column index. The first occurrence of a
// key wins.
func mapColumns(headers []string) map[string]int {
	columns := make(map[string]int, len(headers))
	for i, h := range headers {
		key := normalizeHeader(h)
		if key == "" {
			continue
		}
		if renamed, ok := headerRenames[key]; ok {
			key = renamed
		}
		if _, taken := columns[key]; !taken {
			columns[key] = i
		}
	}
	return columns
}

func normalizeHeader(h string) string {
	s := strings.ToLower(strings.TrimSpace(h))
	s = headerAccents.Replace(s)
	s = headerJunk.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

func cellAt(row []string, columns map[string]int, key string) string {
	idx, ok := columns[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func quantityCell(row []string, columns map[string]int, key string) entities.Quantity {
	raw := strings.TrimSpace(cellAt(row, columns, key))
	if raw == "" {
		return 0
	}
	// French exports write decimal quantities with a comma.
	raw = strings.ReplaceAll(raw, ",", ".")
	raw = strings.ReplaceAll(raw, " ", "")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return entities.Quantity(v)
}

func decimalCell(row []string, columns map[string]int, key string) decimal.Decimal {
	raw := strings.TrimSpace(cellAt(row, columns, key))
	if raw == "" {
		return decimal.Zero
	}
	raw = strings.ReplaceAll(raw, "€", "")
	raw = strings.ReplaceAll(raw, ",", ".")
	raw = strings.ReplaceAll(raw, " ", "")
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}
