package dataset

import "fmt"

// Dataset holds feature rows and their binary outcome labels. Feature
// columns follow the fixed clinical order; every row has one value per
// column.
type Dataset struct {
	Features [][]float64
	Labels   []int
	Columns  []string
}

// DataError reports a dataset that cannot be used for training.
type DataError struct {
	Path   string
	Reason string
}

func (e *DataError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("dataset error: %s", e.Reason)
	}
	return fmt.Sprintf("dataset error: %s: %s", e.Path, e.Reason)
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Features)
}

// Subset returns a new Dataset containing copies of the rows at the given
// indices, in the given order.
func (d *Dataset) Subset(indices []int) *Dataset {
	sub := &Dataset{
		Features: make([][]float64, 0, len(indices)),
		Labels:   make([]int, 0, len(indices)),
		Columns:  d.Columns,
	}
	for _, i := range indices {
		row := make([]float64, len(d.Features[i]))
		copy(row, d.Features[i])
		sub.Features = append(sub.Features, row)
		sub.Labels = append(sub.Labels, d.Labels[i])
	}
	return sub
}

// Clone returns a deep copy. Transforms applied to the copy never touch
// the original rows.
func (d *Dataset) Clone() *Dataset {
	indices := make([]int, d.Len())
	for i := range indices {
		indices[i] = i
	}
	return d.Subset(indices)
}

// Column returns the values of feature column j across all rows.
func (d *Dataset) Column(j int) []float64 {
	col := make([]float64, d.Len())
	for i, row := range d.Features {
		col[i] = row[j]
	}
	return col
}

// ClassCounts returns the number of negative and positive rows.
func (d *Dataset) ClassCounts() (neg, pos int) {
	for _, y := range d.Labels {
		if y == 1 {
			pos++
		} else {
			neg++
		}
	}
	return neg, pos
}
