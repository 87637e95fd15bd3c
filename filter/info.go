package filter

import "github.com/arrowplane/substraitplan/literal"

// Bound is one edge of a range constraint.
type Bound struct {
	Value     literal.Value
	Exclusive bool
}

// Info accumulates the constraints a conjunction places on one column.
// It is written by the accumulate pass and frozen when the build pass
// lowers it into a Subfield primitive.
//
// The lower and upper bound lists are parallel disjunct slots: entry i of
// each list contributes to range i of the lowered filter, with a missing
// entry meaning unbounded on that side. An IN value set and a not-equal
// value are exclusive with ranges and with each other; the accumulate
// pass rejects a second IN or a second not-equal on one column, and the
// build pass rejects the other combinations the lowered form cannot
// express.
type Info struct {
	lowers      []Bound
	uppers      []Bound
	notValue    *literal.Value
	values      []literal.Value
	nullAllowed bool
}

// NewInfo returns an empty record. Null values are allowed until an
// IS NOT NULL constraint forbids them.
func NewInfo() *Info {
	return &Info{nullAllowed: true}
}

// ForbidNull records an IS NOT NULL constraint.
func (i *Info) ForbidNull() { i.nullAllowed = false }

// SetLower appends a lower bound disjunct.
func (i *Info) SetLower(v literal.Value, exclusive bool) {
	i.lowers = append(i.lowers, Bound{Value: v, Exclusive: exclusive})
}

// SetUpper appends an upper bound disjunct.
func (i *Info) SetUpper(v literal.Value, exclusive bool) {
	i.uppers = append(i.uppers, Bound{Value: v, Exclusive: exclusive})
}

// SetNotValue records a NOT(col = v) constraint. At most one may exist
// per column; the normalize pass rejects further ones from pushdown.
func (i *Info) SetNotValue(v literal.Value) error {
	if i.notValue != nil {
		return notImplementedf("multiple not-equal conditions on one column")
	}
	i.notValue = &v
	return nil
}

// SetValues records an IN value set. At most one may exist per column.
func (i *Info) SetValues(values []literal.Value) error {
	if len(i.values) > 0 {
		return notImplementedf("multiple IN conditions on one column")
	}
	if len(values) == 0 {
		return notImplementedf("empty IN value list")
	}
	i.values = values
	return nil
}

// IsInitialized reports whether any constraint has been recorded.
func (i *Info) IsInitialized() bool {
	return len(i.lowers) > 0 || len(i.uppers) > 0 ||
		i.notValue != nil || len(i.values) > 0 || !i.nullAllowed
}

// RangeCount is the number of range disjuncts the bounds describe.
func (i *Info) RangeCount() int {
	if len(i.lowers) > len(i.uppers) {
		return len(i.lowers)
	}
	return len(i.uppers)
}
