package signature

import (
	"reflect"
	"testing"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name     string
		sig      string
		expected string
	}{
		{
			"Full signature with generics, qualification and throws",
			"public List<String> getItems(java.lang.String id) throws IOException",
			"publiclistgetitems(string)",
		},
		{
			"Simple signature",
			"void run()",
			"voidrun()",
		},
		{
			"Parameter names dropped",
			"int add(int a, int b)",
			"intadd(int,int)",
		},
		{
			"Inner class qualification stripped",
			"Outer$Inner build(com.example.Outer$Inner other)",
			"outerbuild(outer)",
		},
		{
			"Nested generics removed",
			"Map<String, List<Integer>> index(Set<Long> keys)",
			"mapindex(set)",
		},
		{
			"No parameter list",
			"SomeField",
			"somefield",
		},
	}

	norm := NewNormalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := norm.Canonicalize(tt.sig); got != tt.expected {
				t.Errorf("Canonicalize(%q) = %q, want %q", tt.sig, got, tt.expected)
			}
		})
	}
}

func TestCanonicalizeMemoized(t *testing.T) {
	norm := NewNormalizer()
	sig := "public List<String> getItems(String id)"

	first := norm.Canonicalize(sig)
	second := norm.Canonicalize(sig)
	if first != second {
		t.Errorf("memoized result changed: %q vs %q", first, second)
	}

	norm.Clear()
	if got := norm.Canonicalize(sig); got != first {
		t.Errorf("Canonicalize after Clear() = %q, want %q", got, first)
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		sig      string
		expected []string
	}{
		{"camelCase", "getItemCount", []string{"get", "item", "count"}},
		{"Acronym followed by word", "HTTPServer2", []string{"http", "server", "2"}},
		{"snake_case", "get_item", []string{"get", "item"}},
		{"Digits split", "md5Sum", []string{"md", "5", "sum"}},
		{"All caps", "MAX", []string{"max"}},
		{"Empty", "", nil},
	}

	norm := NewNormalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := norm.Tokenize(tt.sig)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.sig, got, tt.expected)
			}
		})
	}
}

func TestStripGenerics(t *testing.T) {
	tests := []struct {
		name     string
		sig      string
		expected string
	}{
		{"Flat", "List<String> items", "List items"},
		{"Nested", "Map<String, List<Integer>> m", "Map m"},
		{"No generics", "int count", "int count"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripGenerics(tt.sig); got != tt.expected {
				t.Errorf("StripGenerics(%q) = %q, want %q", tt.sig, got, tt.expected)
			}
		})
	}
}
