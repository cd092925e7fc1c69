package gridbase

import (
	"reflect"
	"time"
)

// Kind is the closed set of type tags a field's accepted-type set is drawn
// from. Acceptance is exact tag membership: a string never satisfies KindList
// even though it is iterable, and a float never satisfies KindInt.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindNil
	KindString
	KindInt
	KindFloat
	KindBool
	KindTime
	KindDuration
	KindList
	KindMap
	KindModel // a model instance (link target)
)

var kindNames = map[Kind]string{
	KindInvalid:  "invalid",
	KindNil:      "nil",
	KindString:   "string",
	KindInt:      "int",
	KindFloat:    "float",
	KindBool:     "bool",
	KindTime:     "time",
	KindDuration: "duration",
	KindList:     "list",
	KindMap:      "map",
	KindModel:    "model",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "invalid"
}

// KindOf resolves a native value to its type tag. time.Duration is matched
// before the generic int fallthrough since its underlying type is int64.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNil
	case string:
		return KindString
	case time.Duration:
		return KindDuration
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return KindInt
	case float32, float64:
		return KindFloat
	case bool:
		return KindBool
	case time.Time:
		return KindTime
	case *Instance:
		return KindModel
	case map[string]any:
		return KindMap
	case []any, []*Instance:
		return KindList
	}
	// Typed slices and maps ([]string, map[string]string, ...) still carry
	// the list/map tag.
	switch reflect.TypeOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return KindList
	case reflect.Map:
		return KindMap
	}
	return KindInvalid
}

// KindSet is an enumerable accepted-type set.
type KindSet map[Kind]struct{}

// Kinds builds a KindSet from its members.
func Kinds(ks ...Kind) KindSet {
	s := make(KindSet, len(ks))
	for _, k := range ks {
		s[k] = struct{}{}
	}
	return s
}

// Has reports tag membership.
func (s KindSet) Has(k Kind) bool {
	_, ok := s[k]
	return ok
}

// String renders the set as "a|b" in a stable tag order for error hints.
func (s KindSet) String() string {
	order := []Kind{KindString, KindInt, KindFloat, KindBool, KindTime, KindDuration, KindList, KindMap, KindModel}
	out := ""
	for _, k := range order {
		if !s.Has(k) {
			continue
		}
		if out != "" {
			out += "|"
		}
		out += k.String()
	}
	return out
}
