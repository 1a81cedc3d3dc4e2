package ast

// Depth selects how much of an entity to load. Each level expands on the
// previous one; Historical loads everything including version history.
type Depth int

const (
	DepthSignature Depth = iota + 1
	DepthStructure
	DepthSemantic
	DepthDetailed
	DepthHistorical
)

var depthNames = map[Depth]string{
	DepthSignature:  "signature",
	DepthStructure:  "structure",
	DepthSemantic:   "semantic",
	DepthDetailed:   "detailed",
	DepthHistorical: "historical",
}

func (d Depth) String() string {
	if name, ok := depthNames[d]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether d is one of the five defined levels.
func (d Depth) Valid() bool {
	_, ok := depthNames[d]
	return ok
}

// ParseDepth resolves a depth name. It returns false for unknown names.
func ParseDepth(name string) (Depth, bool) {
	for d, n := range depthNames {
		if n == name {
			return d, true
		}
	}
	return 0, false
}

// Fields returns the projection implied by the depth level, nil when the
// level loads every field.
func (d Depth) Fields() []string {
	switch d {
	case DepthSignature:
		return []string{"id", "entity_type", "name"}
	case DepthStructure:
		return []string{"id", "entity_type", "name", "parent_id", "path"}
	case DepthSemantic:
		return []string{"id", "entity_type", "name", "parent_id", "path", "summary", "tags"}
	case DepthDetailed:
		return []string{"id", "entity_type", "name", "parent_id", "path", "summary", "tags", "content", "attributes", "updated_at"}
	default:
		return nil
	}
}

// Hints returns the advisory execution profile for the depth level.
// Shallower levels read less per row and cache more aggressively.
func (d Depth) Hints() PerformanceHints {
	switch d {
	case DepthSignature:
		return PerformanceHints{MemoryFactor: 0.05, SpeedFactor: 20, CacheStrategy: CacheAggressive}
	case DepthStructure:
		return PerformanceHints{MemoryFactor: 0.15, SpeedFactor: 8, CacheStrategy: CacheAggressive}
	case DepthSemantic:
		return PerformanceHints{MemoryFactor: 0.3, SpeedFactor: 4, CacheStrategy: CacheModerate}
	case DepthDetailed:
		return PerformanceHints{MemoryFactor: 0.7, SpeedFactor: 1.5, CacheStrategy: CacheModerate}
	default:
		return PerformanceHints{MemoryFactor: 1, SpeedFactor: 1, CacheStrategy: CacheMinimal}
	}
}
