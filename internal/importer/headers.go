package importer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Canonical spreadsheet fields the importer understands.
const (
	fieldDate     = "date"
	fieldProduct  = "product"
	fieldPrice    = "price"
	fieldDiscount = "discount"
	fieldCost     = "cost"
	fieldSize     = "size"
	fieldColor    = "color"
	fieldCustomer = "customer"
	fieldPayment  = "payment"
	fieldStatus   = "status"
)

// headerSynonyms maps each canonical field to its accepted header spellings,
// in preference order. Matching is case and diacritic insensitive, so
// "Coût", "Cout" and "COUT" all resolve to the cost column. "name" is a
// shared fallback: it resolves to product first, customer second.
var headerSynonyms = map[string][]string{
	fieldDate:     {"date", "dat"},
	fieldProduct:  {"article", "produit", "product"},
	fieldPrice:    {"price", "prix"},
	fieldDiscount: {"discount", "remise"},
	fieldCost:     {"cost", "cout"},
	fieldSize:     {"size", "taille"},
	fieldColor:    {"color", "couleur"},
	fieldCustomer: {"customer", "client"},
	fieldPayment:  {"payment", "paiement"},
	fieldStatus:   {"status", "statut"},
}

var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldHeader lowercases and strips diacritics so French headers match their
// ASCII spellings.
func foldHeader(raw string) string {
	folded, _, err := transform.String(deaccent, strings.TrimSpace(raw))
	if err != nil {
		folded = strings.TrimSpace(raw)
	}
	return strings.ToLower(folded)
}

// resolveColumns maps canonical fields to column indexes in the header row.
// A bare "Name" column backs product and customer when neither has a
// dedicated column.
func resolveColumns(headers []string) map[string]int {
	folded := make([]string, len(headers))
	for i, h := range headers {
		folded[i] = foldHeader(h)
	}
	columns := map[string]int{}
	for field, synonyms := range headerSynonyms {
		for _, syn := range synonyms {
			if idx := indexOf(folded, syn); idx >= 0 {
				columns[field] = idx
				break
			}
		}
	}
	if nameIdx := indexOf(folded, "name"); nameIdx >= 0 {
		if _, ok := columns[fieldProduct]; !ok {
			columns[fieldProduct] = nameIdx
		}
		if _, ok := columns[fieldCustomer]; !ok {
			columns[fieldCustomer] = nameIdx
		}
	}
	return columns
}

func indexOf(values []string, want string) int {
	for i, v := range values {
		if v == want {
			return i
		}
	}
	return -1
}
