package oracle

const (
	// MinTier is the lowest tier the oracle reports (unrated).
	MinTier = 0
	// DefaultMaxTier is Ruby I on solved.ac.
	DefaultMaxTier = 30

	DefaultWindowRadius = 1
	DefaultSort         = "level"
	DefaultDirection    = "asc"
	DefaultLimit        = 5
)

// Query describes a tag search bounded by a tier window.
type Query struct {
	Tag          string
	CenterTier   int
	WindowRadius int
	Sort         string
	Direction    string
	Limit        int
}

// NewQuery builds a query with the default radius, ordering and limit.
func NewQuery(tag string, centerTier int) Query {
	return Query{Tag: tag, CenterTier: centerTier, WindowRadius: DefaultWindowRadius}.withDefaults()
}

func (q Query) withDefaults() Query {
	if q.WindowRadius < 0 {
		q.WindowRadius = 0
	}
	if q.Sort == "" {
		q.Sort = DefaultSort
	}
	if q.Direction == "" {
		q.Direction = DefaultDirection
	}
	if q.Limit <= 0 || q.Limit > DefaultLimit {
		q.Limit = DefaultLimit
	}
	return q
}

// Window is an inclusive tier range.
type Window struct {
	Lo int
	Hi int
}

// ClampWindow returns [center-radius, center+radius] with each bound clamped
// into [MinTier, maxTier]. Bounds are clamped, never wrapped.
func ClampWindow(center, radius, maxTier int) Window {
	if radius < 0 {
		radius = 0
	}
	return Window{
		Lo: clamp(center-radius, MinTier, maxTier),
		Hi: clamp(center+radius, MinTier, maxTier),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
