package manifest

import "sort"

// Rank orders routes in place by descending specificity score, with
// exact score ties broken by original declaration position, never by
// path string. Two builds from the same input order always produce the
// same manifest order.
func Rank(routes []*CompiledRoute) {
	sort.SliceStable(routes, func(i, j int) bool {
		if routes[i].Score != routes[j].Score {
			return routes[i].Score > routes[j].Score
		}
		return routes[i].SourceIndex < routes[j].SourceIndex
	})
}
