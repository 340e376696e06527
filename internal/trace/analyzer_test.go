package trace

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestProcessLines(t *testing.T) {
	a := NewAnalyzer("trace.log", nil)
	a.ProcessLines([]string{
		"[0] S foo",
		"[5] E foo",
		"[10] S bar",
		"[12] E bar",
	})

	want := map[string][]float64{
		"foo": {5},
		"bar": {2},
	}
	if !reflect.DeepEqual(a.ExecutionTimes, want) {
		t.Errorf("ExecutionTimes = %v, want %v", a.ExecutionTimes, want)
	}
}

func TestProcessLinesNested(t *testing.T) {
	a := NewAnalyzer("trace.log", nil)
	a.ProcessLines([]string{
		"[0] S outer",
		"[1] S inner",
		"[4] E inner",
		"[10] E outer",
	})

	want := map[string][]float64{
		"inner": {3},
		"outer": {10},
	}
	if !reflect.DeepEqual(a.ExecutionTimes, want) {
		t.Errorf("ExecutionTimes = %v, want %v", a.ExecutionTimes, want)
	}
}

func TestProcessLinesDropsUnmatchedExit(t *testing.T) {
	a := NewAnalyzer("trace.log", nil)
	a.ProcessLines([]string{
		"[0] S foo",
		"[3] E bar",
		"[5] E foo",
	})

	// The stray bar exit is dropped; foo still closes cleanly.
	want := map[string][]float64{
		"foo": {5},
	}
	if !reflect.DeepEqual(a.ExecutionTimes, want) {
		t.Errorf("ExecutionTimes = %v, want %v", a.ExecutionTimes, want)
	}
}

func TestProcessLinesIgnoresGarbage(t *testing.T) {
	a := NewAnalyzer("trace.log", nil)
	a.ProcessLines([]string{
		"not a trace line",
		"[0] S foo",
		"",
		"[7] E foo",
	})

	if got := a.ExecutionTimes["foo"]; len(got) != 1 || got[0] != 7 {
		t.Errorf("ExecutionTimes[foo] = %v, want [7]", got)
	}
}

func TestAnalyzeMergesFilesWithOffsetAndHashes(t *testing.T) {
	dir := t.TempDir()

	writeFile := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	writeMeta := func(name string, meta fileMetadata) {
		t.Helper()
		data, err := json.Marshal(meta)
		if err != nil {
			t.Fatal(err)
		}
		writeFile(name, string(data))
	}

	writeFile("run_0.log", "[0] S h1\n[5] E h1\n")
	writeMeta("run_0.json", fileMetadata{
		MethodSignatureHash: map[string]string{"void foo()": "h1"},
	})
	// Second file uses a clock offset; the call spans both replays.
	writeFile("run_1.log", "[100] S h2\n[104] E h2\n")
	writeMeta("run_1.json", fileMetadata{
		LogTimeDifference:   1000,
		MethodSignatureHash: map[string]string{"void bar()": "h2"},
	})
	// A log without metadata is skipped entirely.
	writeFile("run_2.log", "[0] S ghost\n[9] E ghost\n")

	a := NewAnalyzer(filepath.Join(dir, "run.log"), nil)
	if err := a.Analyze(); err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	want := map[string][]float64{
		"void foo()": {5},
		"void bar()": {4},
	}
	if !reflect.DeepEqual(a.ExecutionTimes, want) {
		t.Errorf("ExecutionTimes = %v, want %v", a.ExecutionTimes, want)
	}
}

func TestAnalyzeMissingDirectory(t *testing.T) {
	a := NewAnalyzer(filepath.Join(t.TempDir(), "nope", "run.log"), nil)
	if err := a.Analyze(); err == nil {
		t.Error("Analyze() on missing directory should fail")
	}
}
