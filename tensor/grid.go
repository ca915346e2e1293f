package tensor

import "fmt"

// Grid is a rectangular [rows, cols] array of int32 token ids stored in
// row-major order. It is the batch representation handed to the training
// step: collation produces one Grid each for inputs, labels, and masks.
type Grid struct {
	data  []int32
	shape Shape
}

// NewGrid creates a zero-filled grid.
func NewGrid(rows, cols int) (*Grid, error) {
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("invalid grid shape [%d, %d]", rows, cols)
	}
	return &Grid{
		data:  make([]int32, rows*cols),
		shape: Shape{rows, cols},
	}, nil
}

// FromSlice creates a grid from row-major data.
func FromSlice(data []int32, shape Shape) (*Grid, error) {
	if shape.NDim() != 2 {
		return nil, fmt.Errorf("grid requires 2D shape, got %v", shape)
	}
	if n := shape.NumElements(); len(data) != n {
		return nil, fmt.Errorf("data length %d != shape elements %d", len(data), n)
	}
	return &Grid{data: data, shape: shape.Clone()}, nil
}

// Full creates a grid filled with the given value.
func Full(rows, cols int, value int32) (*Grid, error) {
	g, err := NewGrid(rows, cols)
	if err != nil {
		return nil, err
	}
	for i := range g.data {
		g.data[i] = value
	}
	return g, nil
}

func (g *Grid) Shape() Shape      { return g.shape }
func (g *Grid) Rows() int         { return g.shape[0] }
func (g *Grid) Cols() int         { return g.shape[1] }
func (g *Grid) NumElements() int  { return len(g.data) }
func (g *Grid) Data() []int32     { return g.data }

// At returns the element at [r, c]. Bounds are the caller's responsibility;
// out-of-range indices panic like a slice access.
func (g *Grid) At(r, c int) int32 {
	return g.data[r*g.shape[1]+c]
}

// Set writes the element at [r, c].
func (g *Grid) Set(r, c int, v int32) {
	g.data[r*g.shape[1]+c] = v
}

// Row returns the r-th row as a subslice of the backing array.
func (g *Grid) Row(r int) []int32 {
	cols := g.shape[1]
	return g.data[r*cols : (r+1)*cols]
}

func (g *Grid) String() string {
	return fmt.Sprintf("Grid(shape=%v)", g.shape)
}
