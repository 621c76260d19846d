package broadphase

import (
	"cmp"
	"math"
	"slices"
)

// Result is an accepted candidate with its refined t
type Result[E any] struct {
	Value E
	T     float64
}

// RangeSorter keeps the k results with the smallest t, ascending.
// Once full, a candidate sorting after the current worst is dropped.
type RangeSorter[E any] struct {
	refine   func(E) (bool, float64)
	capacity int
	results  []Result[E]
}

func NewRangeSorter[E any](k int, refine func(E) (bool, float64)) *RangeSorter[E] {
	k = max(k, 0)
	return &RangeSorter[E]{
		refine:   refine,
		capacity: k,
		results:  make([]Result[E], 0, k),
	}
}

func (s *RangeSorter[E]) Add(value E) {
	if s.capacity == 0 {
		return
	}
	accepted, t := s.refine(value)
	if !accepted {
		return
	}
	if len(s.results) == s.capacity && t >= s.results[len(s.results)-1].T {
		return
	}

	// insertion sort, ties keep arrival order
	i := len(s.results)
	if i < s.capacity {
		s.results = append(s.results, Result[E]{})
	} else {
		i--
	}
	for i > 0 && s.results[i-1].T > t {
		s.results[i] = s.results[i-1]
		i--
	}
	s.results[i] = Result[E]{Value: value, T: t}
}

// Worst is the t a candidate must beat once the sorter is full, +Inf before
func (s *RangeSorter[E]) Worst() float64 {
	if len(s.results) < s.capacity {
		return math.Inf(1)
	}
	return s.results[len(s.results)-1].T
}

func (s *RangeSorter[E]) Results() []Result[E] {
	return s.results
}

func (s *RangeSorter[E]) Len() int {
	return len(s.results)
}

func (s *RangeSorter[E]) Reset() {
	clear(s.results)
	s.results = s.results[:0]
}

// FullRangeSorter keeps every accepted candidate and sorts them when asked
type FullRangeSorter[E any] struct {
	refine  func(E) (bool, float64)
	results []Result[E]
	sorted  bool
}

func NewFullRangeSorter[E any](refine func(E) (bool, float64)) *FullRangeSorter[E] {
	return &FullRangeSorter[E]{refine: refine}
}

func (s *FullRangeSorter[E]) Add(value E) {
	if accepted, t := s.refine(value); accepted {
		s.results = append(s.results, Result[E]{Value: value, T: t})
		s.sorted = false
	}
}

// Results are sorted ascending by t, ties keep arrival order
func (s *FullRangeSorter[E]) Results() []Result[E] {
	if !s.sorted {
		slices.SortStableFunc(s.results, func(a, b Result[E]) int {
			return cmp.Compare(a.T, b.T)
		})
		s.sorted = true
	}
	return s.results
}

func (s *FullRangeSorter[E]) Len() int {
	return len(s.results)
}

func (s *FullRangeSorter[E]) Reset() {
	clear(s.results)
	s.results = s.results[:0]
}

// ResultList keeps accepted candidates in arrival order
type ResultList[E any] struct {
	refine  func(E) (bool, float64)
	results []Result[E]
}

func NewResultList[E any](refine func(E) (bool, float64)) *ResultList[E] {
	return &ResultList[E]{refine: refine}
}

func (l *ResultList[E]) Add(value E) {
	if accepted, t := l.refine(value); accepted {
		l.results = append(l.results, Result[E]{Value: value, T: t})
	}
}

func (l *ResultList[E]) Results() []Result[E] {
	return l.results
}

func (l *ResultList[E]) Len() int {
	return len(l.results)
}

func (l *ResultList[E]) Reset() {
	clear(l.results)
	l.results = l.results[:0]
}
