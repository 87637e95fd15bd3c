// Package funcmap resolves Substrait function anchors to the compound
// function names declared in a plan's extension section.
//
// A compound name carries the argument-type signature after a colon, e.g.
// "gte:i64_i64". The map is populated once per plan and is immutable
// afterwards.
package funcmap

import (
	"errors"
	"fmt"
	"strings"

	substraitpb "github.com/substrait-io/substrait-protobuf/go/substraitpb"
)

// ErrUnknownFunction is returned when a plan references a function anchor
// with no extension declaration.
var ErrUnknownFunction = errors.New("unknown function anchor")

// UnknownFunctionError reports the offending anchor.
type UnknownFunctionError struct {
	Anchor uint32
}

func (e *UnknownFunctionError) Error() string {
	return fmt.Sprintf("unknown function anchor %d", e.Anchor)
}

func (e *UnknownFunctionError) Unwrap() error { return ErrUnknownFunction }

// Map binds function anchors to compound function names.
type Map map[uint32]string

// FromPlan collects every extension_function declaration of the plan.
// Non-function extensions (types, type variations) are skipped.
func FromPlan(plan *substraitpb.Plan) Map {
	m := make(Map)
	for _, ext := range plan.GetExtensions() {
		fn := ext.GetExtensionFunction()
		if fn == nil {
			continue
		}
		m[fn.GetFunctionAnchor()] = fn.GetName()
	}
	return m
}

// Lookup returns the compound name bound to anchor, e.g. "gte:i64_i64".
func (m Map) Lookup(anchor uint32) (string, error) {
	name, ok := m[anchor]
	if !ok {
		return "", &UnknownFunctionError{Anchor: anchor}
	}
	return name, nil
}

// Name returns the bare function name bound to anchor, with the signature
// stripped: anchor bound to "gte:i64_i64" yields "gte".
func (m Map) Name(anchor uint32) (string, error) {
	spec, err := m.Lookup(anchor)
	if err != nil {
		return "", err
	}
	name, _ := SplitSignature(spec)
	return name, nil
}

// SplitSignature splits a compound function name into the bare name and
// its argument-type tags: "gte:i32_i32" yields ("gte", ["i32", "i32"]).
// A name without a signature yields a nil tag list.
func SplitSignature(spec string) (string, []string) {
	name, sig, ok := strings.Cut(spec, ":")
	if !ok || sig == "" {
		return name, nil
	}
	return name, strings.Split(sig, "_")
}
