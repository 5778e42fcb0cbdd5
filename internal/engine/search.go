package engine

import "strings"

// SearchResult reports label matches. TargetFloor is set only when no match
// lives on the floor the search was run from.
type SearchResult struct {
	Term        string
	MatchingIDs map[string]struct{}
	TargetFloor *FloorKey
}

// Empty reports whether nothing matched.
func (r SearchResult) Empty() bool { return len(r.MatchingIDs) == 0 }

// Search matches term case-insensitively against every label in ds, walking
// buildings, floors and items in order. A blank term reports ok=false.
func Search(term string, ds Dataset, current FloorKey) (SearchResult, bool) {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return SearchResult{}, false
	}
	res := SearchResult{Term: term, MatchingIDs: map[string]struct{}{}}
	var first *FloorKey
	onCurrent := false
	for _, b := range ds.Buildings {
		for _, f := range b.Floors {
			key := FloorKey{Building: b.ID, Floor: f.ID}
			for _, it := range f.Items {
				if !strings.Contains(strings.ToLower(it.Label), needle) {
					continue
				}
				res.MatchingIDs[it.ID] = struct{}{}
				if key == current {
					onCurrent = true
				}
				if first == nil {
					k := key
					first = &k
				}
			}
		}
	}
	if !onCurrent && first != nil {
		res.TargetFloor = first
	}
	return res, true
}
