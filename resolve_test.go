package annotate

import (
	"reflect"
	"testing"
)

func TestResolveFlagParsing(t *testing.T) {
	cases := []struct {
		value string
		set   bool
		want  bool
	}{
		{value: "true", set: true, want: true},
		{value: "T", set: true, want: true},
		{value: "YES", set: true, want: true},
		{value: "y", set: true, want: true},
		{value: "1", set: true, want: true},
		{value: "0", set: true, want: false},
		{value: "false", set: true, want: false},
		{value: "yes please", set: true, want: false},
		{value: " true", set: true, want: false},
		{value: "", set: true, want: false},
		{set: false, want: false},
	}

	for _, key := range FlagOptions() {
		if key == ExcludeScaffolds || key == ExcludeControllers || key == ExcludeHelpers {
			continue
		}
		for _, tc := range cases {
			snapshot := Snapshot{}
			if tc.set {
				snapshot[key] = tc.value
			}
			if got := Resolve(snapshot).Flag(key); got != tc.want {
				t.Fatalf("%s=%q: expected %v, got %v", key, tc.value, tc.want, got)
			}
		}
	}
}

func TestResolvePositionFallbackChain(t *testing.T) {
	for _, key := range PositionOptions() {
		if got := Resolve(Snapshot{}).Position(key); got != "before" {
			t.Fatalf("%s: expected before, got %q", key, got)
		}
		if got := Resolve(Snapshot{Position: "after"}).Position(key); got != "after" {
			t.Fatalf("%s: expected generic fallback after, got %q", key, got)
		}
		if got := Resolve(Snapshot{key: " ", Position: "after"}).Position(key); got != "after" {
			t.Fatalf("%s: expected blank own value to fall through, got %q", key, got)
		}
	}
	resolved := Resolve(Snapshot{Position: "after", PositionInTest: "top"})
	if resolved.Position(PositionInTest) != "top" || resolved.Position(PositionInClass) != "after" {
		t.Fatalf("expected own value to win per key, got %q / %q",
			resolved.Position(PositionInTest), resolved.Position(PositionInClass))
	}
}

func TestResolvePathSplitting(t *testing.T) {
	for _, key := range []Key{Require, RootDir} {
		if got := Resolve(Snapshot{key: "a,b,c"}).Paths(key); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
			t.Fatalf("%s: expected split list, got %v", key, got)
		}
		got := Resolve(Snapshot{}).Paths(key)
		if got == nil || len(got) != 0 {
			t.Fatalf("%s: expected empty non-nil list, got %#v", key, got)
		}
	}
}

func TestResolveModelDirDefault(t *testing.T) {
	if got := Resolve(Snapshot{}).ModelDirs(); !reflect.DeepEqual(got, []string{"app/models"}) {
		t.Fatalf("expected default model dir, got %v", got)
	}
	if got := Resolve(Snapshot{ModelDir: "app/models,lib/models"}).ModelDirs(); !reflect.DeepEqual(got, []string{"app/models", "lib/models"}) {
		t.Fatalf("expected explicit model dirs, got %v", got)
	}
}

func TestResolvePathSplittingDropsTrailingEmpties(t *testing.T) {
	cases := []struct {
		value string
		want  []string
	}{
		{value: "a,b,", want: []string{"a", "b"}},
		{value: "a,,", want: []string{"a"}},
		{value: "a,,b", want: []string{"a", "", "b"}},
		{value: ",a", want: []string{"", "a"}},
		{value: ",", want: []string{}},
	}
	for _, tc := range cases {
		got := Resolve(Snapshot{Require: tc.value}).Requires()
		if got == nil || !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("require=%q: expected %#v, got %#v", tc.value, tc.want, got)
		}
	}

	if got := Resolve(Snapshot{ModelDir: ","}).ModelDirs(); !reflect.DeepEqual(got, []string{"app/models"}) {
		t.Fatalf("expected default model dir for bare commas, got %v", got)
	}
	if got := Resolve(Snapshot{ModelDir: "app/models,"}).ModelDirs(); !reflect.DeepEqual(got, []string{"app/models"}) {
		t.Fatalf("expected trailing comma dropped, got %v", got)
	}
	if got := Resolve(Snapshot{AdditionalFilePatterns: "a/%MODEL_NAME%.rb,"}).AdditionalFilePatterns(); !reflect.DeepEqual(got, []string{"a/%MODEL_NAME%.rb"}) {
		t.Fatalf("expected trailing pattern dropped, got %v", got)
	}
}

func TestResolveOtherValues(t *testing.T) {
	resolved := Resolve(Snapshot{IgnoreColumns: "id,created_at"})
	if value, ok := resolved.Other(IgnoreColumns); !ok || value != "id,created_at" {
		t.Fatalf("expected raw other value, got %q %v", value, ok)
	}
	if value := resolved.Value(IgnoreRoutes); value != nil {
		t.Fatalf("expected nil for unset other key, got %#v", value)
	}
	if value, ok := resolved.Value(AdditionalFilePatterns).([]string); !ok || len(value) != 0 {
		t.Fatalf("expected empty list for additional_file_patterns, got %#v", resolved.Value(AdditionalFilePatterns))
	}
	withPatterns := Resolve(Snapshot{AdditionalFilePatterns: "spec/%MODEL_NAME%.rb,lib/%MODEL_NAME%.rb"})
	if got := withPatterns.AdditionalFilePatterns(); len(got) != 2 {
		t.Fatalf("expected two patterns, got %v", got)
	}
}

func TestResolveWrapperFallback(t *testing.T) {
	resolved := Resolve(Snapshot{Wrapper: "# ---", WrapperClose: "# end"})
	if got, _ := resolved.Other(WrapperOpen); got != "# ---" {
		t.Fatalf("expected wrapper_open to inherit wrapper, got %q", got)
	}
	if got, _ := resolved.Other(WrapperClose); got != "# end" {
		t.Fatalf("expected explicit wrapper_close kept, got %q", got)
	}
	if _, ok := Resolve(Snapshot{}).Other(WrapperOpen); ok {
		t.Fatalf("expected wrapper_open unset without wrapper")
	}
}

func TestResolveLegacyExclusionsDefaultTrue(t *testing.T) {
	for _, key := range []Key{ExcludeScaffolds, ExcludeControllers, ExcludeHelpers} {
		if !Resolve(Snapshot{}).Flag(key) {
			t.Fatalf("%s: expected true when unset", key)
		}
		if !Resolve(Snapshot{key: ""}).Flag(key) {
			t.Fatalf("%s: expected blank to fall back to true", key)
		}
		if Resolve(Snapshot{key: "false"}).Flag(key) {
			t.Fatalf("%s: expected explicit false honoured", key)
		}
		if !Resolve(Snapshot{key: "yes"}).Flag(key) {
			t.Fatalf("%s: expected explicit yes honoured", key)
		}
	}
	if Resolve(Snapshot{}).Flag(ExcludeTests) {
		t.Fatalf("other exclusion flags keep the false default")
	}
}

func TestResolvedMapCoversEveryKey(t *testing.T) {
	m := Resolve(Snapshot{}).Map()
	if len(m) != len(AllOptions()) {
		t.Fatalf("expected %d entries, got %d", len(AllOptions()), len(m))
	}
	if m["position"] != "before" || m["exclude_helpers"] != true || m["show_indexes"] != false {
		t.Fatalf("unexpected defaults: %v", m)
	}
}

func TestResolvedPathsReturnsCopy(t *testing.T) {
	resolved := Resolve(Snapshot{ModelDir: "a,b"})
	dirs := resolved.ModelDirs()
	dirs[0] = "mutated"
	if resolved.ModelDirs()[0] != "a" {
		t.Fatalf("resolved options must not be mutable through accessors")
	}
}

func TestResolvedSnapshotRoundTrip(t *testing.T) {
	original := Resolve(Snapshot{ModelDir: "a,b", ShowIndexes: "yes", Position: "after", Wrapper: "#"})
	again := Resolve(original.Snapshot())
	if !reflect.DeepEqual(original.Map(), again.Map()) {
		t.Fatalf("expected stable resolution:\n%v\n%v", original.Map(), again.Map())
	}
}
