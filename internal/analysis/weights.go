package analysis

import "regexp"

// Bounds shared by every heuristic score
const (
	ComplexityCeiling = 100

	ScoreBase    = 50
	ScoreFloor   = 0
	ScoreCeiling = 100
)

// WeightedPattern contributes Weight for every occurrence of Pattern
type WeightedPattern struct {
	Category string
	Pattern  *regexp.Regexp
	Weight   int
}

// Marker adjusts a score by Delta once when Pattern is present
type Marker struct {
	Name    string
	Pattern *regexp.Regexp
	Delta   int
}

// ComplexityPatterns are counted case-insensitively; the weighted sum is capped at ComplexityCeiling.
var ComplexityPatterns = []WeightedPattern{
	{"state-management", regexp.MustCompile(`(?i)\b(?:useState|useEffect|useCallback|useMemo)\b`), 2},
	{"type-definition", regexp.MustCompile(`(?i)\b(?:interface|type)\b`), 1},
	{"styling", regexp.MustCompile(`(?i)\bclassName=`), 1},
	{"event-handler", regexp.MustCompile(`(?i)\b(?:onClick|onChange|onSubmit)\b`), 1},
	{"animation", regexp.MustCompile(`(?i)\bmotion\.|\bAnimatePresence\b`), 3},
	{"animation-import", regexp.MustCompile(`(?i)\bimport\b.*framer-motion`), 3},
	{"data-fetching", regexp.MustCompile(`(?i)\b(?:useQuery|useMutation)\b`), 2},
}

// PerformanceMarkers: memoization, lazy-loading and deferred rendering add,
// debug statements and blocking calls subtract.
var PerformanceMarkers = []Marker{
	{"memo-component", regexp.MustCompile(`\bReact\.memo\b|\bmemo\(`), 10},
	{"use-memo", regexp.MustCompile(`\buseMemo\b`), 10},
	{"use-callback", regexp.MustCompile(`\buseCallback\b`), 10},
	{"lazy", regexp.MustCompile(`\blazy\(`), 10},
	{"suspense", regexp.MustCompile(`\bSuspense\b`), 10},
	{"dynamic-import", regexp.MustCompile(`\bdynamic\(`), 10},
	{"deferred-loading", regexp.MustCompile(`\bloading\s*=`), 10},

	{"console-log", regexp.MustCompile(`\bconsole\.log\b`), -15},
	{"debugger", regexp.MustCompile(`\bdebugger\b`), -15},
	{"alert", regexp.MustCompile(`\balert\(`), -15},
	{"document-write", regexp.MustCompile(`\bdocument\.write\b`), -15},
	{"eval", regexp.MustCompile(`\beval\(`), -15},
	{"sync-call", regexp.MustCompile(`\b\w+Sync\(`), -15},
}

// ReusabilityMarkers reward generic component contracts and penalize one-off code
var ReusabilityMarkers = []Marker{
	{"type-declaration", regexp.MustCompile(`\b(?:interface|type)\s+\w+`), 15},
	{"props-contract", regexp.MustCompile(`\w*Props\b`), 10},
	{"style-override", regexp.MustCompile(`\bclassName\b`), 10},
	{"children-content", regexp.MustCompile(`children.*React\.ReactNode`), 15},

	{"hard-coded", regexp.MustCompile(`(?i)\bhard-?coded\b|\bTODO\b`), -10},
	{"one-off", regexp.MustCompile(`(?i)\b(?:specific|custom|hack)\b`), -5},
}

// Structural complexity terms: LOC + 2*hooks + 3*props + 2*state
var (
	hookPattern       = regexp.MustCompile(`use[A-Z]\w+`)
	propsTypePattern  = regexp.MustCompile(`\binterface\s+\w+Props\b`)
	statePattern      = regexp.MustCompile(`\b(?:useState|useReducer)\b`)
	importStmtPattern = regexp.MustCompile(`(?m)^\s*import[\s{*'"]`)
)

const (
	hookWeight  = 2
	propsWeight = 3
	stateWeight = 2
)
