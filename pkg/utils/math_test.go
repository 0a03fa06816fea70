package utils

import (
	"math"
	"testing"
)

func TestMeanAndSampleStd(t *testing.T) {
	x := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	if got := Mean(x); got != 5 {
		t.Errorf("Mean = %v, want 5", got)
	}
	want := math.Sqrt(32.0 / 7.0)
	if got := SampleStd(x); math.Abs(got-want) > 1e-12 {
		t.Errorf("SampleStd = %v, want %v", got, want)
	}
	if Mean(nil) != 0 || SampleStd([]float64{3}) != 0 {
		t.Error("degenerate inputs should yield 0")
	}
}

func TestQuantile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	cases := []struct {
		q    float64
		want float64
	}{
		{0, 1},
		{0.25, 1.75},
		{0.5, 2.5},
		{0.75, 3.25},
		{1, 4},
	}
	for _, c := range cases {
		if got := Quantile(sorted, c.q); math.Abs(got-c.want) > 1e-12 {
			t.Errorf("Quantile(%v) = %v, want %v", c.q, got, c.want)
		}
	}
	if Quantile(nil, 0.5) != 0 {
		t.Error("empty input should yield 0")
	}
	if Quantile([]float64{7}, 0.5) != 7 {
		t.Error("single value is every quantile")
	}
}

func TestSortedCopy(t *testing.T) {
	x := []float64{3, 1, 2}
	got := SortedCopy(x)
	if got[0] != 1 || got[2] != 3 {
		t.Errorf("SortedCopy = %v", got)
	}
	if x[0] != 3 {
		t.Error("input must not be modified")
	}
}
