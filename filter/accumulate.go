package filter

import (
	substraitpb "github.com/substrait-io/substrait-protobuf/go/substraitpb"

	"github.com/arrowplane/substraitplan/literal"
	"github.com/arrowplane/substraitplan/sexpr"
)

// accumulate folds every pushdown candidate into the per-column Info
// records. NOT applies its child with the comparison reversed; each child
// of an OR is applied onto the same column as another disjunct slot.
func (a *Analyzer) accumulate(calls []*substraitpb.Expression_ScalarFunction, cols []Column) (map[int]*Info, error) {
	infos := make(map[int]*Info, len(cols))
	ensure := func(idx int) *Info {
		if infos[idx] == nil {
			infos[idx] = NewInfo()
		}
		return infos[idx]
	}

	for _, fn := range calls {
		name, err := a.funcs.Name(fn.GetFunctionReference())
		if err != nil {
			return nil, err
		}
		switch name {
		case nameNot:
			args := sexpr.Args(fn)
			if len(args) != 1 || args[0] == nil {
				return nil, notImplementedf("not with %d arguments", len(args))
			}
			child, ok := sexpr.ScalarFunc(args[0])
			if !ok {
				return nil, notImplementedf("not over a non-call expression")
			}
			if err := a.apply(child, cols, ensure, true); err != nil {
				return nil, err
			}
		case nameOr:
			for _, arg := range sexpr.Args(fn) {
				child, ok := sexpr.ScalarFunc(arg)
				if !ok {
					return nil, notImplementedf("or over a non-call expression")
				}
				if err := a.apply(child, cols, ensure, false); err != nil {
					return nil, err
				}
			}
		default:
			if err := a.apply(fn, cols, ensure, false); err != nil {
				return nil, err
			}
		}
	}
	return infos, nil
}

// apply records one comparison into the referenced column's Info. When
// reverse is set the comparison is negated (the call sits under NOT).
func (a *Analyzer) apply(fn *substraitpb.Expression_ScalarFunction, cols []Column, ensure func(int) *Info, reverse bool) error {
	name, err := a.funcs.Name(fn.GetFunctionReference())
	if err != nil {
		return err
	}
	if name == nameIn {
		return a.applyIn(fn, ensure)
	}

	colIdx := -1
	var lit *substraitpb.Expression_Literal
	litFirst := false
	for i, arg := range sexpr.Args(fn) {
		if arg == nil {
			return notImplementedf("non-value argument of %s", name)
		}
		if idx, ok := sexpr.FieldIndex(arg); ok {
			colIdx = idx
			continue
		}
		if l, ok := sexpr.Literal(arg); ok {
			lit = l
			litFirst = i == 0
			continue
		}
		return notImplementedf("argument of %s is neither field nor literal", name)
	}
	if colIdx < 0 {
		return notImplementedf("column index expected in subfield filter creation")
	}
	if colIdx >= len(cols) {
		return notImplementedf("field reference %d outside the scan schema", colIdx)
	}
	if litFirst {
		// Canonicalize to field-on-left: 10 < c0 is c0 > 10.
		name = commute(name)
	}

	var val literal.Value
	if lit != nil {
		val, err = sexpr.ToValue(lit)
		if err != nil {
			return err
		}
	}

	info := ensure(colIdx)
	switch name {
	case nameIsNotNull:
		if reverse {
			return notImplementedf("reverse of %s", nameIsNotNull)
		}
		info.ForbidNull()
	case nameGte:
		if reverse {
			info.SetUpper(val, true)
		} else {
			info.SetLower(val, false)
		}
	case nameGt:
		if reverse {
			info.SetUpper(val, false)
		} else {
			info.SetLower(val, true)
		}
	case nameLte:
		if reverse {
			info.SetLower(val, true)
		} else {
			info.SetUpper(val, false)
		}
	case nameLt:
		if reverse {
			info.SetLower(val, false)
		} else {
			info.SetUpper(val, true)
		}
	case nameEqual:
		if reverse {
			return info.SetNotValue(val)
		}
		info.SetLower(val, false)
		info.SetUpper(val, false)
	default:
		return notImplementedf("filter name %s", name)
	}
	return nil
}

// commute swaps the comparison direction for a literal-first call.
func commute(name string) string {
	switch name {
	case nameGte:
		return nameLte
	case nameGt:
		return nameLt
	case nameLte:
		return nameGte
	case nameLt:
		return nameGt
	default:
		return name
	}
}

// applyIn records the IN value set of the referenced column.
func (a *Analyzer) applyIn(fn *substraitpb.Expression_ScalarFunction, ensure func(int) *Info) error {
	args := sexpr.Args(fn)
	if len(args) != 2 || args[0] == nil || args[1] == nil {
		return notImplementedf("in with %d arguments", len(args))
	}
	colIdx, ok := sexpr.FieldIndex(args[0])
	if !ok {
		return notImplementedf("in without a direct field reference")
	}
	lit, ok := sexpr.Literal(args[1])
	if !ok {
		return notImplementedf("in without a literal value list")
	}
	values, err := sexpr.ListValues(lit)
	if err != nil {
		return err
	}
	return ensure(colIdx).SetValues(values)
}
