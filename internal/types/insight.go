package types

import "fmt"

// InsightKind classifies what an Insight says about a value.
type InsightKind uint8

const (
	// InsightNone carries no extra information beyond the detected type.
	InsightNone InsightKind = iota
	// InsightNumericRange refines a numeric value by magnitude class,
	// so a small literal can prefer a narrower native parameter.
	InsightNumericRange
)

// Insight is auxiliary classification attached to a detected type. Unlike
// Descriptor it is compared by value: two insights are equal iff their
// fields are equal, which makes it usable directly in cache keys.
type Insight struct {
	Kind InsightKind
	// Rank orders values within the kind, e.g. magnitude class for
	// InsightNumericRange (0 = fits anywhere, higher = wider).
	Rank int8
}

// NoInsight is the zero insight.
var NoInsight = Insight{}

// Less gives the total order used when insights back ordered containers:
// kind first, then rank.
func (i Insight) Less(o Insight) bool {
	if i.Kind != o.Kind {
		return i.Kind < o.Kind
	}
	return i.Rank < o.Rank
}

func (i Insight) String() string {
	switch i.Kind {
	case InsightNone:
		return "insight(none)"
	case InsightNumericRange:
		return fmt.Sprintf("insight(range:%d)", i.Rank)
	default:
		return fmt.Sprintf("insight(%d:%d)", i.Kind, i.Rank)
	}
}
