package core

import (
	"fmt"
	"iter"
	"reflect"
	"sort"
	"time"

	"github.com/goliatone/go-resources/codec"
)

// Encoder recursively turns an arbitrary result value into a transport-safe
// structure. Embedded resources are rendered through their own serializer
// at the access level the outer call's subject resolves to; containers are
// walked recursively; non-JSON-native scalars are boxed into tagged
// envelopes when envelope wrapping is enabled.
type Encoder struct {
	evaluator     *AccessEvaluator
	wrapEnvelopes bool
	errorFactory  ErrorFactory
}

func NewEncoder(evaluator *AccessEvaluator, wrapEnvelopes bool) *Encoder {
	if evaluator == nil {
		evaluator = NewAccessEvaluator()
	}
	return &Encoder{evaluator: evaluator, wrapEnvelopes: wrapEnvelopes}
}

// encodeState caches the access level of the dispatch subject so it is
// resolved at most once per Encode call, no matter how many resources the
// value tree embeds.
type encodeState struct {
	encoder  *Encoder
	target   AccessTarget
	env      Environment
	level    Permission
	resolved bool
}

func (s *encodeState) accessLevel() Permission {
	if !s.resolved {
		s.level, _ = s.encoder.evaluator.ResolveLevel(s.target, s.env)
		s.resolved = true
	}
	return s.level
}

// Encode never mutates its input and is deterministic for identical input
// and access level. Every nested resource is serialized at the level the
// outer subject resolves to, not its own.
func (e *Encoder) Encode(value any, target AccessTarget, env Environment) (any, error) {
	if e == nil {
		return value, nil
	}
	state := &encodeState{encoder: e, target: target, env: env}
	return e.encode(value, state)
}

func (e *Encoder) encode(value any, state *encodeState) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case Resource:
		return e.encodeResource(v, state)
	case time.Time:
		return e.box(codec.TagDatetime, codec.FormatTime(v)), nil
	case reflect.Type:
		return e.box(codec.TagType, codec.FormatType(v)), nil
	case error:
		return e.box(codec.TagException, codec.ErrorPayload(v)), nil
	case iter.Seq[any]:
		return e.encodeSeq(v, state)
	case []byte:
		return v, nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Map:
		if isSetMap(rv.Type()) {
			return e.encodeSet(rv, state)
		}
		return e.encodeMap(rv, state)
	case reflect.Slice, reflect.Array:
		return e.encodeSlice(rv, state)
	case reflect.Func:
		if isSeqFunc(rv.Type()) {
			return e.encodeSeqFunc(rv, state)
		}
	}

	return value, nil
}

func (e *Encoder) encodeResource(resource Resource, state *encodeState) (any, error) {
	serializer, ok := resource.(Serializable)
	if !ok {
		return nil, newEncodingError(e.errorFactory, resource.ResourceName())
	}
	serialized := serializer.Serialize(state.accessLevel(), state.env)
	return e.encode(serialized, state)
}

func (e *Encoder) encodeMap(rv reflect.Value, state *encodeState) (any, error) {
	encoded := make(map[string]any, rv.Len())
	iterator := rv.MapRange()
	for iterator.Next() {
		value, err := e.encode(iterator.Value().Interface(), state)
		if err != nil {
			return nil, err
		}
		encoded[mapKey(iterator.Key())] = value
	}
	return encoded, nil
}

func (e *Encoder) encodeSlice(rv reflect.Value, state *encodeState) (any, error) {
	encoded := make([]any, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		value, err := e.encode(rv.Index(i).Interface(), state)
		if err != nil {
			return nil, err
		}
		encoded = append(encoded, value)
	}
	return encoded, nil
}

// encodeSet renders a map[T]struct{} as an ordered sequence tagged "set".
// Elements are sorted by their rendered form so equal inputs encode
// identically across calls.
func (e *Encoder) encodeSet(rv reflect.Value, state *encodeState) (any, error) {
	elements := make([]any, 0, rv.Len())
	iterator := rv.MapRange()
	for iterator.Next() {
		element, err := e.encode(iterator.Key().Interface(), state)
		if err != nil {
			return nil, err
		}
		elements = append(elements, element)
	}
	sort.Slice(elements, func(i, j int) bool {
		return fmt.Sprint(elements[i]) < fmt.Sprint(elements[j])
	})
	return e.box(codec.TagSet, elements), nil
}

// isSeqFunc matches the iter.Seq and iter.Seq2 shapes: a non-variadic func
// taking a single yield func that returns bool.
func isSeqFunc(t reflect.Type) bool {
	if t.Kind() != reflect.Func || t.NumIn() != 1 || t.NumOut() != 0 || t.IsVariadic() {
		return false
	}
	yield := t.In(0)
	if yield.Kind() != reflect.Func || yield.NumOut() != 1 || yield.Out(0).Kind() != reflect.Bool {
		return false
	}
	return yield.NumIn() == 1 || yield.NumIn() == 2
}

// encodeSeqFunc drains generator instantiations other than iter.Seq[any].
// Two-value sequences render each pairing as a two-element list. The first
// element that fails to encode stops the generator.
func (e *Encoder) encodeSeqFunc(rv reflect.Value, state *encodeState) (any, error) {
	encoded := []any{}
	var encodeErr error
	yield := reflect.MakeFunc(rv.Type().In(0), func(args []reflect.Value) []reflect.Value {
		var element any
		if len(args) == 1 {
			element = args[0].Interface()
		} else {
			pair := make([]any, 0, len(args))
			for _, arg := range args {
				pair = append(pair, arg.Interface())
			}
			element = pair
		}
		value, err := e.encode(element, state)
		if err != nil {
			encodeErr = err
			return []reflect.Value{reflect.ValueOf(false)}
		}
		encoded = append(encoded, value)
		return []reflect.Value{reflect.ValueOf(true)}
	})
	rv.Call([]reflect.Value{yield})
	if encodeErr != nil {
		return nil, encodeErr
	}
	return encoded, nil
}

// encodeSeq drains a generator into a plain ordered sequence; unlike sets,
// sequences carry no envelope tag.
func (e *Encoder) encodeSeq(seq iter.Seq[any], state *encodeState) (any, error) {
	encoded := []any{}
	for element := range seq {
		value, err := e.encode(element, state)
		if err != nil {
			return nil, err
		}
		encoded = append(encoded, value)
	}
	return encoded, nil
}

func (e *Encoder) box(tag string, value any) any {
	if !e.wrapEnvelopes {
		return value
	}
	return codec.Wrap(tag, value)
}

func isSetMap(t reflect.Type) bool {
	return t.Elem().Kind() == reflect.Struct && t.Elem().NumField() == 0
}

func mapKey(key reflect.Value) string {
	if key.Kind() == reflect.String {
		return key.String()
	}
	return fmt.Sprint(key.Interface())
}
