package grammar

import (
	"slices"
	"testing"
)

func TestParams(t *testing.T) {
	p := NewParams[string]().
		Set("b", "two").
		Set("a", "one").
		Set("c", "three").
		Set("b", "TWO")

	if got, want := p.Names(), []string{"b", "a", "c"}; !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	if v, ok := p.Get("b"); !ok || v != "TWO" {
		t.Errorf("Get(b) = %q, %v; want TWO, true", v, ok)
	}

	if _, ok := p.Get("z"); ok {
		t.Error("Get(z) reported a binding")
	}

	var got []string
	for name, v := range p.All() {
		got = append(got, name+"="+v)
	}

	if want := []string{"b=TWO", "a=one", "c=three"}; !slices.Equal(got, want) {
		t.Errorf("All() = %v, want %v", got, want)
	}
}

func TestParams_Nil(t *testing.T) {
	var p *Params[int]

	if p.Len() != 0 || p.Names() != nil {
		t.Error("nil Params should be empty")
	}

	if _, ok := p.Get("x"); ok {
		t.Error("nil Params reported a binding")
	}

	for range p.All() {
		t.Error("nil Params yielded a binding")
	}

	var zero Params[int]
	if zero.Set("x", 1).Len() != 1 {
		t.Error("zero Params should accept bindings")
	}
}
