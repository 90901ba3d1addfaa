package natview

import "testing"

func TestCheckRuntimeReportsAvailable(t *testing.T) {
	status := CheckRuntime()
	if !status.Available {
		t.Fatalf("expected the fake runtime to report available, got %+v", status)
	}
}

func TestEnsureRuntimeIsIdempotent(t *testing.T) {
	first, err := EnsureRuntime()
	if err != nil {
		t.Fatalf("EnsureRuntime: %v", err)
	}
	second, err := EnsureRuntime()
	if err != nil {
		t.Fatalf("EnsureRuntime (second call): %v", err)
	}
	if first != second {
		t.Errorf("EnsureRuntime not idempotent: %+v vs %+v", first, second)
	}
}
