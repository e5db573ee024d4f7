package annotate

import (
	"testing"
)

func BenchmarkStackTrace(b *testing.B) {
	layers := []Layer{
		NewLayer(NewScope(ScopeOverrides, ScopePriorityOverrides), Snapshot{Position: "after"}),
		NewLayer(NewScope(ScopeEnvironment, ScopePriorityEnvironment), Snapshot{ModelDir: "app/models,lib/models", ShowIndexes: "yes"}),
		NewLayer(NewScope(ScopeDotenv, ScopePriorityDotenv), Snapshot{Position: "before", Force: "1"}),
		NewLayer(NewScope(ScopeDefaults, ScopePriorityDefaults), Snapshot{Position: "before", Wrapper: "# --"}),
	}
	stack, err := NewStack(layers...)
	if err != nil {
		b.Fatalf("stack: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if trace := stack.Trace(Wrapper); !trace.Found {
			b.Fatalf("expected wrapper to be found")
		}
	}
}

func BenchmarkResolve(b *testing.B) {
	snapshot := Snapshot{
		Position:     "after",
		ModelDir:     "app/models,lib/models",
		ShowIndexes:  "yes",
		Wrapper:      "# --",
		ExcludeTests: "false",
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Resolve(snapshot)
	}
}
