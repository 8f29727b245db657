package coreir

import (
	"strings"
	"testing"
)

func TestDumpPrintsModuleAndDefNames(t *testing.T) {
	m := sampleModule()
	var b strings.Builder
	if err := Dump(&b, m); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	out := b.String()
	if !strings.Contains(out, "module demo") {
		t.Fatalf("expected module name in output, got %q", out)
	}
	if !strings.Contains(out, "identity") {
		t.Fatalf("expected def name in output, got %q", out)
	}
}

func TestDumpHandlesNilModule(t *testing.T) {
	var b strings.Builder
	if err := Dump(&b, nil); err != nil {
		t.Fatalf("Dump(nil): %v", err)
	}
	if b.Len() != 0 {
		t.Fatalf("expected no output for a nil module, got %q", b.String())
	}
}
