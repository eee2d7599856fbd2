package domain

// DomainTerm is a curated vocabulary entry with a semantic embedding,
// read-only at enrichment time.
type DomainTerm struct {
	Term       string
	Definition string
	Summary    string
}

// TermMatch is a domain term matched against an article centroid,
// ordered by vector distance.
type TermMatch struct {
	Term     string
	Summary  string
	Distance float64
}
