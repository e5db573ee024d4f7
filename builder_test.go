package annotate

import (
	"reflect"
	"testing"

	"github.com/goliatone/go-annotate/pkg/envstore"
)

func TestSnapshotFromRawCoercion(t *testing.T) {
	got := SnapshotFromRaw(RawOptions{
		"model_dir":    []string{"a", "b"},
		"require":      []any{"x", nil, 3},
		"show_indexes": true,
		"position":     "after",
		"wrapper":      nil,
		"routes":       "   ",
		"bogus":        "ignored",
	})
	want := Snapshot{
		ModelDir:    "a,b",
		Require:     "x,3",
		ShowIndexes: "true",
		Position:    "after",
	}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSnapshotFromStoreSkipsBlankAndUnknown(t *testing.T) {
	store := envstore.NewMemory(map[string]string{
		"position": "after",
		"sort":     "",
		"PATH":     "/bin",
	})
	if got := SnapshotFromStore(store); !reflect.DeepEqual(got, Snapshot{Position: "after"}) {
		t.Fatalf("unexpected snapshot: %v", got)
	}
	if got := SnapshotFromStore(nil); len(got) != 0 {
		t.Fatalf("expected empty snapshot for nil store, got %v", got)
	}
}

func TestConfigBuilderIsImmutable(t *testing.T) {
	base := NewConfigBuilder().Defaults(RawOptions{"position": "before"})
	withEnv := base.Environment(envstore.NewMemory(map[string]string{"position": "after"}))
	withDotenv := base.Dotenv(map[string]string{"position": "top"})

	baseStack, err := base.Build()
	if err != nil {
		t.Fatalf("build base: %v", err)
	}
	envStack, err := withEnv.Build()
	if err != nil {
		t.Fatalf("build env: %v", err)
	}
	dotenvStack, err := withDotenv.Build()
	if err != nil {
		t.Fatalf("build dotenv: %v", err)
	}

	if baseStack.Len() != 1 || envStack.Len() != 2 || dotenvStack.Len() != 2 {
		t.Fatalf("unexpected lengths: %d %d %d", baseStack.Len(), envStack.Len(), dotenvStack.Len())
	}
	if got := envStack.Resolve().Position(Position); got != "after" {
		t.Fatalf("expected environment to win, got %q", got)
	}
	if got := dotenvStack.Resolve().Position(Position); got != "top" {
		t.Fatalf("expected dotenv to win over defaults, got %q", got)
	}
}

func TestConfigBuilderRejectsDuplicateScopes(t *testing.T) {
	_, err := NewConfigBuilder().Defaults(nil).Defaults(nil).Build()
	if err == nil {
		t.Fatalf("expected duplicate scope error")
	}
}
