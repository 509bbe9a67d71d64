package di

import (
	"context"
	"testing"
)

type DepOne struct{}
type DepTwo struct{}
type Product struct{}

func ctorNoArgs() *Product                        { return &Product{} }
func ctorTwoArgs(_ *DepOne, _ *DepTwo) *Product   { return &Product{} }
func ctorWithCtx(_ context.Context, _ *DepOne) *Product { return &Product{} }
func ctorForOverride(_ *DepOne, _ *DepTwo) *Product     { return &Product{} }
func ctorForGap(_ *DepOne) *Product                     { return &Product{} }

func TestDependencyTokensFromParameterTypes(t *testing.T) {
	tokens := DependencyTokens(ctorTwoArgs)
	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(tokens))
	}
	if tokens[0] != Type[*DepOne]() {
		t.Errorf("expected *DepOne token, got %v", tokens[0])
	}
	if tokens[1] != Type[*DepTwo]() {
		t.Errorf("expected *DepTwo token, got %v", tokens[1])
	}
}

func TestDependencyTokensEmptyForNoArgs(t *testing.T) {
	tokens := DependencyTokens(ctorNoArgs)
	if len(tokens) != 0 {
		t.Errorf("expected empty token list, got %v", tokens)
	}
}

func TestDependencyTokensSkipLeadingContext(t *testing.T) {
	tokens := DependencyTokens(ctorWithCtx)
	if len(tokens) != 1 {
		t.Fatalf("expected 1 token, got %d", len(tokens))
	}
	if tokens[0] != Type[*DepOne]() {
		t.Errorf("expected *DepOne token, got %v", tokens[0])
	}
}

func TestDependencyTokensNonFunction(t *testing.T) {
	if tokens := DependencyTokens(42); tokens != nil {
		t.Errorf("expected nil for non-function, got %v", tokens)
	}
	if tokens := DependencyTokens(nil); tokens != nil {
		t.Errorf("expected nil for nil, got %v", tokens)
	}
}

func TestParamTokenOverrideTakesPrecedence(t *testing.T) {
	override := Name("custom-dep-two")
	SetParamToken(ctorForOverride, 1, override)

	tokens := DependencyTokens(ctorForOverride)
	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(tokens))
	}
	if tokens[0] != Type[*DepOne]() {
		t.Errorf("expected inferred token at index 0, got %v", tokens[0])
	}
	if tokens[1] != override {
		t.Errorf("expected override at index 1, got %v", tokens[1])
	}
}

func TestParamTokenOverrideExtendsLength(t *testing.T) {
	override := Name("beyond-params")
	SetParamToken(ctorForGap, 2, override)

	tokens := DependencyTokens(ctorForGap)
	if len(tokens) != 3 {
		t.Fatalf("expected length max(base, override index+1)=3, got %d", len(tokens))
	}
	if tokens[0] != Type[*DepOne]() {
		t.Errorf("expected base token at index 0, got %v", tokens[0])
	}
	if tokens[1] != nil {
		t.Errorf("expected gap at index 1, got %v", tokens[1])
	}
	if tokens[2] != override {
		t.Errorf("expected override at index 2, got %v", tokens[2])
	}
}

func TestDependencyTokensMemoized(t *testing.T) {
	first := DependencyTokens(ctorTwoArgs)
	second := DependencyTokens(ctorTwoArgs)
	if len(first) == 0 || len(second) == 0 {
		t.Fatal("expected non-empty token lists")
	}
	if &first[0] != &second[0] {
		t.Error("expected memoized extraction to return the cached slice")
	}
}

func TestSetParamTokenInvalidatesMemo(t *testing.T) {
	e := newExtractor()

	before := e.tokens(ctorTwoArgs)
	if before[1] != Type[*DepTwo]() {
		t.Fatalf("unexpected base token: %v", before[1])
	}

	override := Name("late-override")
	e.setOverride(ctorTwoArgs, 1, override)

	after := e.tokens(ctorTwoArgs)
	if after[1] != override {
		t.Errorf("expected override after invalidation, got %v", after[1])
	}
}
