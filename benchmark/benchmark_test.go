package main

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"imagefilter/results"
)

var records = []results.Record{
	{Mode: "s", Threads: 1, TimeElapsed: 8, TimeParallel: 0, DataDir: "small"},
	{Mode: "s", Threads: 1, TimeElapsed: 6, TimeParallel: 0, DataDir: "small"},
	{Mode: "parfiles", Threads: 2, TimeElapsed: 4, TimeParallel: 3, DataDir: "small"},
	{Mode: "parfiles", Threads: 2, TimeElapsed: 5, TimeParallel: 1, DataDir: "small"},
	{Mode: "parfiles", Threads: 4, TimeElapsed: 2, TimeParallel: 1.5, DataDir: "small"},
	{Mode: "pipe", Threads: 4, TimeElapsed: 3, TimeParallel: 2, DataDir: "big"},
}

func group(recs []results.Record) map[string][]results.Record {
	dataSets := make(map[string][]results.Record)
	for _, rec := range recs {
		dataSets[rec.Mode] = append(dataSets[rec.Mode], rec)
	}
	return dataSets
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestComputeBestTimes(t *testing.T) {
	best, parallel := ComputeBestTimes(group(records))

	tests := []struct {
		mode, dir         string
		threads           int
		total, parallTime float64
	}{
		{"s", "small", 1, 6, 0},
		{"parfiles", "small", 2, 4, 3},
		{"parfiles", "small", 4, 2, 1.5},
		{"pipe", "big", 4, 3, 2},
	}
	for _, tt := range tests {
		if got := best[tt.mode][tt.dir][tt.threads]; got != tt.total {
			t.Errorf("best[%s][%s][%d] = %v, want %v", tt.mode, tt.dir, tt.threads, got, tt.total)
		}
		if got := parallel[tt.mode][tt.dir][tt.threads]; got != tt.parallTime {
			t.Errorf("parallel[%s][%s][%d] = %v, want %v", tt.mode, tt.dir, tt.threads, got, tt.parallTime)
		}
	}
}

func TestComputeAverageTimes(t *testing.T) {
	avg := ComputeAverageTimes(group(records))
	if got := avg["s"]["small"][1]; !near(got, 7) {
		t.Errorf("s average = %v, want 7", got)
	}
	if got := avg["parfiles"]["small"][2]; !near(got, 4.5) {
		t.Errorf("parfiles/2 average = %v, want 4.5", got)
	}
}

func TestComputeSpeedups(t *testing.T) {
	best, _ := ComputeBestTimes(group(records))
	speedups := ComputeSpeedups(best)

	if _, ok := speedups["s"]; ok {
		t.Error("sequential mode has speedups")
	}
	if got := speedups["parfiles"]["small"][2]; !near(got, 1.5) {
		t.Errorf("parfiles/2 speedup = %v, want 1.5", got)
	}
	if got := speedups["parfiles"]["small"][4]; !near(got, 3) {
		t.Errorf("parfiles/4 speedup = %v, want 3", got)
	}
	// no sequential run on "big"
	if _, ok := speedups["pipe"]["big"]; ok {
		t.Error("speedup computed without a sequential time")
	}
}

func TestSaveToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "best.txt")
	best, _ := ComputeBestTimes(group(records))
	if err := saveToFile(best, path); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	var modes []string
	for dec.More() {
		var line Times
		if err := dec.Decode(&line); err != nil {
			t.Fatal(err)
		}
		for mode := range line {
			modes = append(modes, mode)
		}
	}
	want := []string{"parfiles", "pipe", "s"}
	if len(modes) != len(want) {
		t.Fatalf("modes = %v, want %v", modes, want)
	}
	for i := range want {
		if modes[i] != want[i] {
			t.Errorf("modes = %v, want %v", modes, want)
		}
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "results.txt")
	store := results.NewFile(dest)
	for _, rec := range records {
		if err := store.Add(context.Background(), rec); err != nil {
			t.Fatal(err)
		}
	}

	outDir := filepath.Join(dir, "out")
	if err := Run(context.Background(), dest, outDir); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"averages.txt", "bestTimes.txt", "bestParallTimes.txt", "speedups.txt", "speedup-parfiles.png"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Error(err)
		}
	}
}

func TestRunNoRecords(t *testing.T) {
	dir := t.TempDir()
	if err := Run(context.Background(), filepath.Join(dir, "missing.txt"), filepath.Join(dir, "out")); err != nil {
		t.Errorf("empty results: %v", err)
	}
}
