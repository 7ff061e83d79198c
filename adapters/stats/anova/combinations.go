package anova

// Iterative combination generators. Index-based iterators keep the call
// stack flat no matter how many factors or levels an experiment carries.

// SubsetIterator yields all k-element index subsets of {0..n-1} in
// lexicographic order.
type SubsetIterator struct {
	n, k int
	idx  []int
	done bool
}

// NewSubsetIterator creates an iterator over k-subsets of n indices.
func NewSubsetIterator(n, k int) *SubsetIterator {
	it := &SubsetIterator{n: n, k: k}
	if k <= 0 || k > n {
		it.done = true
		return it
	}
	it.idx = make([]int, k)
	for i := range it.idx {
		it.idx[i] = i
	}
	return it
}

// Next returns the next subset (as a fresh slice) and false when exhausted.
func (it *SubsetIterator) Next() ([]int, bool) {
	if it.done {
		return nil, false
	}

	out := make([]int, it.k)
	copy(out, it.idx)

	// Advance: find the rightmost index that can still move right.
	i := it.k - 1
	for i >= 0 && it.idx[i] == it.n-it.k+i {
		i--
	}
	if i < 0 {
		it.done = true
	} else {
		it.idx[i]++
		for j := i + 1; j < it.k; j++ {
			it.idx[j] = it.idx[j-1] + 1
		}
	}

	return out, true
}

// ProductIterator yields the cartesian product of several level slices as an
// odometer: the last axis varies fastest.
type ProductIterator struct {
	sets [][]string
	idx  []int
	done bool
}

// NewProductIterator creates an iterator over the cartesian product of sets.
func NewProductIterator(sets [][]string) *ProductIterator {
	it := &ProductIterator{sets: sets, idx: make([]int, len(sets))}
	if len(sets) == 0 {
		it.done = true
		return it
	}
	for _, s := range sets {
		if len(s) == 0 {
			it.done = true
			return it
		}
	}
	return it
}

// Next returns the next level tuple (as a fresh slice) and false when exhausted.
func (it *ProductIterator) Next() ([]string, bool) {
	if it.done {
		return nil, false
	}

	out := make([]string, len(it.sets))
	for i, s := range it.sets {
		out[i] = s[it.idx[i]]
	}

	for i := len(it.idx) - 1; i >= 0; i-- {
		it.idx[i]++
		if it.idx[i] < len(it.sets[i]) {
			break
		}
		it.idx[i] = 0
		if i == 0 {
			it.done = true
		}
	}

	return out, true
}
