package candidates

import "sort"

// GroupByPage partitions candidates into per-page batches. Input order is
// preserved within each batch; batches are returned in ascending page order,
// which fixes the processing order downstream.
func GroupByPage(cands []Candidate) []PageBatch {
	byPage := make(map[int][]Candidate)
	for _, c := range cands {
		byPage[c.Page] = append(byPage[c.Page], c)
	}

	pages := make([]int, 0, len(byPage))
	for page := range byPage {
		pages = append(pages, page)
	}
	sort.Ints(pages)

	batches := make([]PageBatch, 0, len(pages))
	for _, page := range pages {
		batches = append(batches, PageBatch{Page: page, Candidates: byPage[page]})
	}
	return batches
}
