package broadphase

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func identity(t float64) (bool, float64) {
	return true, t
}

func values[E any](results []Result[E]) []E {
	out := make([]E, len(results))
	for i, r := range results {
		out[i] = r.Value
	}
	return out
}

func TestRangeSorter_KeepsClosest(t *testing.T) {
	tests := []struct {
		name  string
		k     int
		input []float64
		want  []float64
	}{
		{"fewer than k", 4, []float64{3, 1, 2}, []float64{1, 2, 3}},
		{"more than k", 3, []float64{9, 4, 7, 1, 8, 2, 6, 3, 5, 0}, []float64{0, 1, 2}},
		{"ascending input", 2, []float64{1, 2, 3, 4}, []float64{1, 2}},
		{"descending input", 2, []float64{4, 3, 2, 1}, []float64{1, 2}},
		{"zero capacity", 0, []float64{1, 2}, []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sorter := NewRangeSorter(tt.k, identity)
			for _, v := range tt.input {
				sorter.Add(v)
			}
			if diff := cmp.Diff(tt.want, values(sorter.Results())); diff != "" {
				t.Errorf("results (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRangeSorter_Worst(t *testing.T) {
	sorter := NewRangeSorter(2, identity)
	if !math.IsInf(sorter.Worst(), 1) {
		t.Errorf("Worst() on empty sorter = %v", sorter.Worst())
	}
	sorter.Add(5)
	sorter.Add(3)
	if sorter.Worst() != 5 {
		t.Errorf("Worst() = %v, want 5", sorter.Worst())
	}

	// a candidate equal to the worst does not displace it
	sorter.Add(5)
	sorter.Add(4)
	if diff := cmp.Diff([]float64{3, 4}, values(sorter.Results())); diff != "" {
		t.Errorf("results (-want +got):\n%s", diff)
	}

	sorter.Reset()
	if sorter.Len() != 0 || !math.IsInf(sorter.Worst(), 1) {
		t.Error("Reset should empty the sorter")
	}
}

func TestRangeSorter_TiesKeepArrivalOrder(t *testing.T) {
	type hit struct {
		id int
		t  float64
	}
	sorter := NewRangeSorter(3, func(h hit) (bool, float64) { return true, h.t })
	sorter.Add(hit{1, 2})
	sorter.Add(hit{2, 1})
	sorter.Add(hit{3, 2})
	sorter.Add(hit{4, 2})

	var ids []int
	for _, r := range sorter.Results() {
		ids = append(ids, r.Value.id)
	}
	if diff := cmp.Diff([]int{2, 1, 3}, ids); diff != "" {
		t.Errorf("ids (-want +got):\n%s", diff)
	}
}

func TestFullRangeSorter(t *testing.T) {
	// reject negative values
	sorter := NewFullRangeSorter(func(v float64) (bool, float64) { return v >= 0, v })
	for _, v := range []float64{3, -1, 0.5, 2, -4, 1} {
		sorter.Add(v)
	}
	if diff := cmp.Diff([]float64{0.5, 1, 2, 3}, values(sorter.Results())); diff != "" {
		t.Errorf("results (-want +got):\n%s", diff)
	}

	sorter.Add(0)
	if got := values(sorter.Results())[0]; got != 0 {
		t.Errorf("late add not sorted in, first = %v", got)
	}
}

func TestResultList(t *testing.T) {
	list := NewResultList(func(v int) (bool, float64) { return v%2 == 0, float64(v) })
	for _, v := range []int{4, 1, 2, 3, 0} {
		list.Add(v)
	}
	if diff := cmp.Diff([]int{4, 2, 0}, values(list.Results())); diff != "" {
		t.Errorf("results (-want +got):\n%s", diff)
	}
	list.Reset()
	if list.Len() != 0 {
		t.Errorf("Len after Reset = %d", list.Len())
	}
}
