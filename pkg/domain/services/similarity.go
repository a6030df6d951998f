package services

import (
	"strings"
)

// Packaging categories recognized in product names, in match-priority
// order: a name mentioning several keywords takes the first listed
// category ("caisse carton" is a caisse). Unmatched names fall into the
// generic "emballage" bucket.
var packagingCategories = []struct {
	category string
	keywords []string
}{
	{"caisse", []string{"caisse"}},
	{"boite", []string{"boite", "boîte"}},
	{"etui", []string{"etui", "étui"}},
	{"film", []string{"film"}},
	{"sac", []string{"sac"}},
	{"palette", []string{"palette"}},
	{"carton", []string{"carton"}},
}

// Weights applied per technical-feature category when comparing two
// technical descriptions.
var featureWeights = map[string]float64{
	"dimensions":  0.4,
	"material":    0.3,
	"application": 0.2,
	"other":       0.1,
}

var accentReplacer = strings.NewReplacer(
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"à", "a", "â", "a", "ç", "c", "î", "i",
	"ï", "i", "ô", "o", "û", "u", "ù", "u",
)

// NormalizeName lowercases a product name, strips accents and collapses
// whitespace so that spelling variants compare equal.
func NormalizeName(name string) string {
	s := accentReplacer.Replace(strings.ToLower(strings.TrimSpace(name)))
	return strings.Join(strings.Fields(s), " ")
}

// ExtractCategory returns the packaging category of a product name, or
// "emballage" when none of the known keywords appear.
func ExtractCategory(productName string) string {
	name := NormalizeName(productName)
	for _, entry := range packagingCategories {
		for _, kw := range entry.keywords {
			if strings.Contains(name, accentReplacer.Replace(kw)) {
				return entry.category
			}
		}
	}
	return "emballage"
}

// NameSimilarity estimates how interchangeable two products are from their
// names alone: token overlap (Jaccard) plus a bonus when both fall in the
// same packaging category. The result is clamped to [0,1].
func NameSimilarity(name1, name2 string) float64 {
	words1 := tokenSet(NormalizeName(name1))
	words2 := tokenSet(NormalizeName(name2))

	similarity := 0.0
	if len(words1) > 0 && len(words2) > 0 {
		common := 0
		for w := range words1 {
			if _, ok := words2[w]; ok {
				common++
			}
		}
		total := len(words1) + len(words2) - common
		similarity = float64(common) / float64(total)
	}

	if ExtractCategory(name1) == ExtractCategory(name2) {
		similarity += 0.2
	}
	if similarity > 1.0 {
		similarity = 1.0
	}
	return similarity
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		set[w] = struct{}{}
	}
	return set
}

// ExtractTechnicalFeatures pulls "key: value" pairs out of a technical
// description. Lines without a colon are ignored.
func ExtractTechnicalFeatures(description string) map[string]string {
	features := make(map[string]string)
	for _, line := range strings.Split(description, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if key != "" && value != "" {
			features[key] = value
		}
	}
	return features
}

// TechnicalSimilarity compares two technical-feature sets with per-category
// weighting (dimensions over material over application). Either set being
// empty yields zero.
func TechnicalSimilarity(features1, features2 map[string]string) float64 {
	if len(features1) == 0 || len(features2) == 0 {
		return 0.0
	}

	score := 0.0
	totalWeight := 0.0

	for key1, value1 := range features1 {
		weight := featureWeights[classifyFeature(key1)]
		totalWeight += weight

		for key2, value2 := range features2 {
			k1, k2 := strings.ToLower(key1), strings.ToLower(key2)
			if !strings.Contains(k1, k2) && !strings.Contains(k2, k1) {
				continue
			}
			v1, v2 := strings.ToLower(strings.TrimSpace(value1)), strings.ToLower(strings.TrimSpace(value2))
			if v1 == v2 {
				score += weight
			} else if anyWordIn(v1, v2) {
				score += weight * 0.5
			}
			break
		}
	}

	if totalWeight == 0 {
		return 0.0
	}
	return score / totalWeight
}

func classifyFeature(key string) string {
	k := strings.ToLower(key)
	switch {
	case containsAny(k, "dimension", "taille", "longueur", "largeur", "hauteur", "mm", "cm"):
		return "dimensions"
	case containsAny(k, "carton", "plastique", "mousse", "kraft", "material", "matiere"):
		return "material"
	case containsAny(k, "application", "usage", "secteur", "utilisation"):
		return "application"
	default:
		return "other"
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func anyWordIn(words, target string) bool {
	for _, w := range strings.Fields(words) {
		if strings.Contains(target, w) {
			return true
		}
	}
	return false
}
