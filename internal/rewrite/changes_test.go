package rewrite

import (
	"testing"

	"github.com/Gaming32/syntax-tweaker/internal/tweaks"
)

func TestChanges_CanReplace(t *testing.T) {
	c := NewChanges()
	tweaks.ReplaceText(c, tweaks.Span{Start: 4, End: 8}, "x")

	tests := []struct {
		span tweaks.Span
		want bool
	}{
		{tweaks.Span{Start: 0, End: 4}, true},
		{tweaks.Span{Start: 8, End: 10}, true},
		{tweaks.Span{Start: 4, End: 8}, false},
		{tweaks.Span{Start: 2, End: 5}, false},
		{tweaks.Span{Start: 7, End: 12}, false},
		{tweaks.Span{Start: 0, End: 20}, false},
		{tweaks.Span{Start: 4, End: 4}, true},
		{tweaks.Span{Start: 6, End: 6}, true},
		{tweaks.Span{Start: 8, End: 8}, true},
	}

	for _, tt := range tests {
		if got := c.CanReplace(tt.span); got != tt.want {
			t.Errorf("CanReplace(%v) = %v, want %v", tt.span, got, tt.want)
		}
	}
}

func TestChanges_InsertionInsideEdit(t *testing.T) {
	tests := []struct {
		name        string
		first, then tweaks.Span
	}{
		{"insertion inside edit", tweaks.Span{Start: 1, End: 5}, tweaks.Span{Start: 3, End: 3}},
		{"edit around insertion", tweaks.Span{Start: 3, End: 3}, tweaks.Span{Start: 1, End: 5}},
		{"insertion at start", tweaks.Span{Start: 1, End: 5}, tweaks.Span{Start: 1, End: 1}},
		{"insertion at end", tweaks.Span{Start: 1, End: 5}, tweaks.Span{Start: 5, End: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChanges()
			tweaks.ReplaceText(c, tt.first, "X")
			if !c.CanReplace(tt.then) {
				t.Fatalf("CanReplace(%v) = false after %v, want true", tt.then, tt.first)
			}
			tweaks.ReplaceText(c, tt.then, "Y")
			if c.Len() != 2 {
				t.Errorf("Len() = %d, want 2", c.Len())
			}
			if _, err := c.Apply("abcdefg"); err != nil {
				t.Errorf("Apply() error = %v", err)
			}
		})
	}
}

func TestChanges_ApplyInsertionInsideEdit(t *testing.T) {
	c := NewChanges()
	tweaks.ReplaceText(c, tweaks.Span{Start: 1, End: 5}, "X")
	tweaks.ReplaceText(c, tweaks.Span{Start: 3, End: 3}, "Y")

	got, err := c.Apply("abcdefg")
	if err != nil {
		t.Fatal(err)
	}
	if want := "aXYfg"; got != want {
		t.Errorf("Apply() = %q, want %q", got, want)
	}
}

func TestChanges_ApplyOrder(t *testing.T) {
	c := NewChanges()
	text := "int a = 10; int b = 20;"
	tweaks.ReplaceText(c, tweaks.Span{Start: 20, End: 22}, "0x14")
	tweaks.ReplaceText(c, tweaks.Span{Start: 8, End: 10}, "0xa")
	tweaks.ReplaceText(c, tweaks.Span{Start: 0, End: 0}, "// generated\n")

	got, err := c.Apply(text)
	if err != nil {
		t.Fatal(err)
	}
	if want := "// generated\nint a = 0xa; int b = 0x14;"; got != want {
		t.Errorf("Apply() = %q, want %q", got, want)
	}

	var spans []tweaks.Span
	for _, e := range c.Edits() {
		spans = append(spans, e.Span)
	}
	if len(spans) != 3 || spans[0].Start != 0 || spans[1].Start != 8 || spans[2].Start != 20 {
		t.Errorf("Edits() spans = %v, want ascending", spans)
	}
}

func TestChanges_SameSpanComposes(t *testing.T) {
	c := NewChanges()
	span := tweaks.Span{Start: 1, End: 2}
	tweaks.ReplaceText(c, span, "A")
	tweaks.ReplaceText(c, span, "B")

	got, err := c.Apply("xyz")
	if err != nil {
		t.Fatal(err)
	}
	if got != "xABz" {
		t.Errorf("Apply() = %q, want %q", got, "xABz")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestChanges_ProducersEvaluatedDescending(t *testing.T) {
	c := NewChanges()
	var order []int
	for _, start := range []int{0, 2, 4} {
		start := start
		c.Replace(tweaks.Span{Start: start, End: start + 1}, func() string {
			order = append(order, start)
			return "_"
		})
	}
	if _, err := c.Apply("abcdef"); err != nil {
		t.Fatal(err)
	}
	if len(order) != 3 || order[0] != 4 || order[2] != 0 {
		t.Errorf("evaluation order = %v, want [4 2 0]", order)
	}
}

func TestChanges_OverlapPanics(t *testing.T) {
	c := NewChanges()
	tweaks.ReplaceText(c, tweaks.Span{Start: 0, End: 5}, "x")

	defer func() {
		r := recover()
		if _, ok := r.(*tweaks.ContractViolation); !ok {
			t.Errorf("recover() = %v, want *tweaks.ContractViolation", r)
		}
	}()
	tweaks.ReplaceText(c, tweaks.Span{Start: 3, End: 7}, "y")
}

func TestChanges_PastEnd(t *testing.T) {
	c := NewChanges()
	tweaks.ReplaceText(c, tweaks.Span{Start: 2, End: 10}, "x")
	if _, err := c.Apply("abc"); err == nil {
		t.Error("Apply() past end of text succeeded")
	}
}
