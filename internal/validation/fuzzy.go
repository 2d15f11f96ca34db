package validation

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// corporate suffixes stripped before vendor name comparison.
var nameSuffixes = []string{
	"private limited", "pvt ltd", "pvt. ltd.", "limited", "ltd", "llc",
	"inc", "inc.", "gmbh", "corp", "corp.", "co.", "co",
}

// normalizeName lowercases, strips punctuation and common corporate
// suffixes, and collapses whitespace.
func normalizeName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	replacer := strings.NewReplacer(".", " ", ",", " ", "-", " ", "&", " and ")
	s = replacer.Replace(s)
	s = strings.Join(strings.Fields(s), " ")
	for _, suffix := range nameSuffixes {
		s = strings.TrimSuffix(s, " "+suffix)
	}
	return strings.TrimSpace(s)
}

// namesMatch reports whether two vendor names refer to the same vendor:
// exact after normalization, one containing the other, or within the
// configured Levenshtein distance.
func namesMatch(a, b string, maxDistance int) bool {
	na, nb := normalizeName(a), normalizeName(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return true
	}
	return levenshtein.ComputeDistance(na, nb) <= maxDistance
}

// normalizeTaxID strips spaces and dashes and uppercases for comparison.
func normalizeTaxID(id string) string {
	s := strings.ReplaceAll(id, " ", "")
	s = strings.ReplaceAll(s, "-", "")
	return strings.ToUpper(s)
}
