package arpath

import (
	"reflect"
	"testing"
)

func TestParseBuildRoundTrip(t *testing.T) {
	tests := []struct {
		path     string
		segments []string
	}{
		{"/PkgA/Sub/Element1", []string{"PkgA", "Sub", "Element1"}},
		{"/PkgA", []string{"PkgA"}},
		{"PkgA/Sub", []string{"PkgA", "Sub"}},
		{"//PkgA//Sub/", []string{"PkgA", "Sub"}},
		{"", nil},
		{"/", nil},
	}

	for _, tt := range tests {
		got := Parse(tt.path)
		if !reflect.DeepEqual(got, tt.segments) {
			t.Errorf("Parse(%q) = %v, want %v", tt.path, got, tt.segments)
		}
	}

	if got := Build([]string{"PkgA", "Sub"}); got != "/PkgA/Sub" {
		t.Errorf("Build = %q, want /PkgA/Sub", got)
	}
	if got := Build(nil); got != "" {
		t.Errorf("Build(nil) = %q, want empty", got)
	}
}

func TestResolveReference(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		base string
		want string
	}{
		{"absolute passthrough", "/PkgB/X", "/PkgA", "/PkgB/X"},
		{"relative append", "Sub/X", "/PkgA", "/PkgA/Sub/X"},
		{"parent step", "../X", "/PkgA/Sub", "/PkgA/X"},
		{"two parent steps", "../../X", "/PkgA/Sub", "/X"},
		{"parent underflow is no-op", "../../../X", "/PkgA", "/X"},
		{"empty base", "X", "", "/X"},
		{"lone parent step on root", "..", "/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveReference(tt.ref, tt.base); got != tt.want {
				t.Errorf("ResolveReference(%q, %q) = %q, want %q", tt.ref, tt.base, got, tt.want)
			}
		})
	}
}

func TestAncestry(t *testing.T) {
	if ParentOf("/PkgA/Sub/X") != "/PkgA/Sub" {
		t.Errorf("ParentOf failed: %q", ParentOf("/PkgA/Sub/X"))
	}
	if ParentOf("/PkgA") != "" {
		t.Errorf("ParentOf of top-level should be empty, got %q", ParentOf("/PkgA"))
	}
	if NameOf("/PkgA/Sub/X") != "X" {
		t.Errorf("NameOf failed: %q", NameOf("/PkgA/Sub/X"))
	}

	if !IsAncestorOf("/PkgA", "/PkgA/Sub/X") {
		t.Error("expected /PkgA to be ancestor of /PkgA/Sub/X")
	}
	if IsAncestorOf("/PkgA", "/PkgA") {
		t.Error("a path must not be its own ancestor")
	}
	if IsAncestorOf("/PkgA", "/PkgAB/X") {
		t.Error("prefix match must respect segment boundaries")
	}

	if Depth("/PkgA/Sub/X") != 3 {
		t.Errorf("Depth = %d, want 3", Depth("/PkgA/Sub/X"))
	}
}

func TestCommonAncestor(t *testing.T) {
	tests := []struct {
		paths []string
		want  string
	}{
		{[]string{"/PkgA/Sub/X", "/PkgA/Sub/Y"}, "/PkgA/Sub"},
		{[]string{"/PkgA/Sub/X", "/PkgA/Other"}, "/PkgA"},
		{[]string{"/PkgA/X", "/PkgB/Y"}, ""},
		{[]string{"/PkgA/Sub/X"}, "/PkgA/Sub"},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := CommonAncestor(tt.paths); got != tt.want {
			t.Errorf("CommonAncestor(%v) = %q, want %q", tt.paths, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		path string
		ok   bool
	}{
		{"/PkgA/Sub_1/Element1", true},
		{"/Pkg A", false},
		{"/1Pkg", false},
		{"PkgA", false},
		{"/Pkg-A", false},
	}
	for _, tt := range tests {
		ok, msg := Validate(tt.path)
		if ok != tt.ok {
			t.Errorf("Validate(%q) = %v (%s), want %v", tt.path, ok, msg, tt.ok)
		}
		if !ok && msg == "" {
			t.Errorf("Validate(%q) should name the violation", tt.path)
		}
	}

	if !ValidSegment("Name_2") || ValidSegment("2Name") || ValidSegment("") {
		t.Error("ValidSegment misclassified a segment")
	}
}
