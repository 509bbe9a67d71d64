package di

import (
	"context"
	"reflect"
	"sync"
)

var ctxType = reflect.TypeOf((*context.Context)(nil)).Elem()

// extractor derives the ordered dependency tokens of a constructor function.
// The base list comes from the constructor's reflected parameter types (a
// leading context.Context parameter is the resolution context, not a
// dependency). Explicit per-index overrides recorded with SetParamToken take
// precedence at their index. Results are memoized per function pointer since
// constructors are stable and extraction is pure.
type extractor struct {
	mu        sync.RWMutex
	overrides map[uintptr]map[int]Token
	cache     map[uintptr][]Token
}

func newExtractor() *extractor {
	return &extractor{
		overrides: make(map[uintptr]map[int]Token),
		cache:     make(map[uintptr][]Token),
	}
}

// defaultExtractor is the process-wide metadata side-table. Parameter
// overrides describe constructors, not containers, so the table is shared the
// same way the constructors themselves are.
var defaultExtractor = newExtractor()

// SetParamToken records that parameter index of ctor should be resolved with
// tok instead of the token inferred from its type. Call before the first
// resolution involving ctor.
func SetParamToken(ctor any, index int, tok Token) {
	defaultExtractor.setOverride(ctor, index, tok)
}

// DependencyTokens returns the ordered dependency tokens of ctor. A non-func
// value yields nil.
func DependencyTokens(ctor any) []Token {
	return defaultExtractor.tokens(ctor)
}

func (e *extractor) setOverride(ctor any, index int, tok Token) {
	fn := reflect.ValueOf(ctor)
	if fn.Kind() != reflect.Func || index < 0 {
		return
	}
	ptr := fn.Pointer()

	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.overrides[ptr]
	if !ok {
		m = make(map[int]Token)
		e.overrides[ptr] = m
	}
	m[index] = tok
	delete(e.cache, ptr)
}

func (e *extractor) tokens(ctor any) []Token {
	if ctor == nil {
		return nil
	}
	fn := reflect.ValueOf(ctor)
	if fn.Kind() != reflect.Func {
		return nil
	}
	ptr := fn.Pointer()

	e.mu.RLock()
	cached, ok := e.cache[ptr]
	e.mu.RUnlock()
	if ok {
		return cached
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if cached, ok := e.cache[ptr]; ok {
		return cached
	}

	base := baseTokens(fn.Type())
	result := overlay(base, e.overrides[ptr])
	e.cache[ptr] = result
	return result
}

// baseTokens reflects the constructor's parameter types into type tokens,
// skipping a leading context.Context.
func baseTokens(t reflect.Type) []Token {
	start := 0
	if t.NumIn() > 0 && t.In(0) == ctxType {
		start = 1
	}
	tokens := make([]Token, 0, t.NumIn()-start)
	for i := start; i < t.NumIn(); i++ {
		tokens = append(tokens, typeTokenFor(t.In(i)))
	}
	return tokens
}

// overlay merges per-index overrides onto the base list. The result length is
// max(len(base), highest override index + 1); indexes covered by neither side
// stay nil.
func overlay(base []Token, overrides map[int]Token) []Token {
	length := len(base)
	for idx := range overrides {
		if idx+1 > length {
			length = idx + 1
		}
	}
	if length == 0 {
		return []Token{}
	}

	result := make([]Token, length)
	copy(result, base)
	for idx, tok := range overrides {
		result[idx] = tok
	}
	return result
}
