package fincal

import "strings"

// SearchResult holds the records matching a search.
type SearchResult struct {
	Transactions []Transaction
	Obligations  []Obligation
}

// Len is the number of matching records.
func (r SearchResult) Len() int { return len(r.Transactions) + len(r.Obligations) }

// Search finds the transactions whose name, category or note contain needle,
// and the obligations whose name or note contain it. Matching ignores case.
// An empty needle matches nothing.
func Search(doc *Document, needle string) SearchResult {
	var res SearchResult
	needle = strings.ToLower(strings.TrimSpace(needle))
	if needle == "" {
		return res
	}
	match := func(fields ...string) bool {
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f), needle) {
				return true
			}
		}
		return false
	}
	for _, t := range doc.Transactions {
		if match(t.Name, t.Category, t.Note) {
			res.Transactions = append(res.Transactions, t)
		}
	}
	for _, o := range doc.Obligations {
		if match(o.Name, o.Note) {
			res.Obligations = append(res.Obligations, o)
		}
	}
	return res
}
