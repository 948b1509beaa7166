package trap

// Heuristic bounds. URLs matching a legitimate content pattern
// (wikis, archives, course catalogs) get the relaxed limits.
const (
	maxPathDepth           = 12
	maxPathDepthLegitimate = 15

	maxSegmentRepeats = 3

	patternLimit           = 75
	patternLimitLegitimate = 150

	paginationLimit = 200

	maxQueryLength = 200

	filterComboLimit = 4

	pathRepeatLimit           = 15
	pathRepeatLimitLegitimate = 25
)

// paginationParams are query keys whose large integer values indicate
// unbounded pagination.
var paginationParams = []string{"page", "p", "offset", "start"}

// filterParams are query keys that, combined, indicate a filter-explosion
// URL space.
var filterParams = []string{"sort", "order", "filter", "view", "display"}
