package config

import (
	"errors"
	"testing"
)

func TestCells(t *testing.T) {
	var testtable = []struct {
		radix, length int
		cells         uint64
		overflow      bool
	}{
		{20, 1, 20, false},
		{20, 5, 3200000, false},
		{21, 3, 9261, false},
		{2, 2, 4, false},
		{20, 0, 1, false},
		{20, 15, 0, true},
	}
	for _, tt := range testtable {
		cells, err := Cells("t", tt.radix, tt.length, 1)
		if tt.overflow {
			var aerr *AllocationError
			if !errors.As(err, &aerr) {
				t.Errorf("Cells(%d, %d) => %v, expected AllocationError", tt.radix, tt.length, err)
			}
			continue
		}
		if err != nil || cells != tt.cells {
			t.Errorf("Cells(%d, %d) => %d, %v, expected %d", tt.radix, tt.length, cells, err, tt.cells)
		}
	}
}

func TestCheckAllocation(t *testing.T) {
	s := Settings{Workers: 4, MaxMemory: 1000}
	if err := s.CheckAllocation("tensor", 100, 8, 1); err != nil {
		t.Errorf("800 bytes rejected: %v", err)
	}
	err := s.CheckAllocation("tensor", 100, 8, 2)
	var aerr *AllocationError
	if !errors.As(err, &aerr) {
		t.Fatalf("1600 bytes accepted: %v", err)
	}
	if aerr.Bytes != 1600 || aerr.Cells != 100 {
		t.Errorf("AllocationError => %+v", aerr)
	}
	if err := s.CheckAllocation("tensor", ^uint64(0), 8, 1); err == nil {
		t.Error("overflowing size accepted")
	}
}

func TestFitWorkers(t *testing.T) {
	s := Settings{Workers: 8, MaxMemory: 1000}
	if w := s.FitWorkers(40, 8); w != 3 {
		t.Errorf("FitWorkers(40, 8) => %d, expected 3", w)
	}
	if w := s.FitWorkers(10, 8); w != 8 {
		t.Errorf("FitWorkers(10, 8) => %d, expected 8", w)
	}
	if w := s.FitWorkers(200, 8); w != 0 {
		t.Errorf("FitWorkers(200, 8) => %d, expected 0", w)
	}
}

func TestParseMemory(t *testing.T) {
	n, err := ParseMemory("1KiB")
	if err != nil || n != 1024 {
		t.Errorf("ParseMemory(1KiB) => %d, %v", n, err)
	}
	if _, err := ParseMemory("lots"); err == nil {
		t.Error("ParseMemory(lots) accepted")
	}
}
