// Package layout folds a virtual row/column grid onto physical LED indices.
package layout

import (
	"errors"
	"fmt"
)

// ErrInvalidLayout covers zero-area or ragged grids and panel mismatches.
var ErrInvalidLayout = errors.New("invalid layout")

// Dropped marks a virtual cell with no physical LED behind it.
const Dropped = -1

type Traversal string

const (
	// RowMajor walks the columns of a row before moving to the next row.
	RowMajor Traversal = "row_major"
	// ColumnMajor walks the rows of a column before moving to the next column.
	ColumnMajor Traversal = "column_major"
)

type Config struct {
	Rows       int       `yaml:"rows"`
	Columns    int       `yaml:"columns"`
	Traversal  Traversal `yaml:"traversal"`
	Serpentine bool      `yaml:"serpentine"`

	// Tiling. PanelLayout holds panel IDs in their logical position, -1 for a gap.
	PanelRows      int     `yaml:"panel_rows,omitempty"`
	PanelColumns   int     `yaml:"panel_columns,omitempty"`
	PanelLayout    [][]int `yaml:"panel_layout,omitempty"`
	FlipEveryPanel bool    `yaml:"flip_every_panel,omitempty"`
}

// Strip is the layout of a plain 1D strip of n LEDs.
func Strip(n int) Config {
	return Config{Rows: 1, Columns: n, Traversal: RowMajor, Serpentine: true}
}

// Layout is a validated Config plus its index mapping table.
type Layout struct {
	cfg   Config
	rows  int
	cols  int
	count int
	table []int
}

// localIndex numbers (r, c) inside a rows x cols block. Odd rows (row major)
// or odd columns (column major) run backwards when serpentine is set.
func localIndex(r, c, rows, cols int, t Traversal, serpentine bool) int {
	if t == ColumnMajor {
		if serpentine && c%2 == 1 {
			r = rows - 1 - r
		}
		return c*rows + r
	}
	if serpentine && r%2 == 1 {
		c = cols - 1 - c
	}
	return r*cols + c
}

// BuildTable numbers a single rows x cols block. Entry r*cols+c is the
// physical index of virtual cell (r, c).
func BuildTable(rows, cols int, t Traversal, serpentine bool) []int {
	table := make([]int, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			table[r*cols+c] = localIndex(r, c, rows, cols, t, serpentine)
		}
	}
	return table
}

func validTraversal(t Traversal) (Traversal, error) {
	switch t {
	case "":
		return RowMajor, nil
	case RowMajor, ColumnMajor:
		return t, nil
	default:
		return t, fmt.Errorf("%w: unknown traversal %q", ErrInvalidLayout, t)
	}
}

// New validates cfg and builds its table.
func New(cfg Config) (*Layout, error) {
	t, err := validTraversal(cfg.Traversal)
	if err != nil {
		return nil, err
	}
	cfg.Traversal = t

	if len(cfg.PanelLayout) > 0 {
		return newTiled(cfg)
	}
	if cfg.Rows <= 0 || cfg.Columns <= 0 {
		return nil, fmt.Errorf("%w: %dx%d has no area", ErrInvalidLayout, cfg.Rows, cfg.Columns)
	}
	return &Layout{
		cfg:   cfg,
		rows:  cfg.Rows,
		cols:  cfg.Columns,
		count: cfg.Rows * cfg.Columns,
		table: BuildTable(cfg.Rows, cfg.Columns, cfg.Traversal, cfg.Serpentine),
	}, nil
}

func newTiled(cfg Config) (*Layout, error) {
	pr, pc := cfg.PanelRows, cfg.PanelColumns
	if pr <= 0 || pc <= 0 {
		return nil, fmt.Errorf("%w: panel shape %dx%d has no area", ErrInvalidLayout, pr, pc)
	}
	gridCols := len(cfg.PanelLayout[0])
	if gridCols == 0 {
		return nil, fmt.Errorf("%w: empty panel layout row", ErrInvalidLayout)
	}
	seen := map[int]bool{}
	for i, row := range cfg.PanelLayout {
		if len(row) != gridCols {
			return nil, fmt.Errorf("%w: panel layout row %d has %d entries, want %d", ErrInvalidLayout, i, len(row), gridCols)
		}
		for _, id := range row {
			if id < 0 {
				continue
			}
			if seen[id] {
				return nil, fmt.Errorf("%w: panel %d placed twice", ErrInvalidLayout, id)
			}
			seen[id] = true
		}
	}
	panels := len(seen)
	if panels == 0 {
		return nil, fmt.Errorf("%w: panel layout has no panels", ErrInvalidLayout)
	}
	for id := 0; id < panels; id++ {
		if !seen[id] {
			return nil, fmt.Errorf("%w: panel ids must be 0..%d, missing %d", ErrInvalidLayout, panels-1, id)
		}
	}

	rows := len(cfg.PanelLayout) * pr
	cols := gridCols * pc
	if (cfg.Rows != 0 && cfg.Rows != rows) || (cfg.Columns != 0 && cfg.Columns != cols) {
		return nil, fmt.Errorf("%w: %dx%d does not match %dx%d panel tiling", ErrInvalidLayout, cfg.Rows, cfg.Columns, rows, cols)
	}
	cfg.Rows, cfg.Columns = rows, cols

	size := pr * pc
	table := make([]int, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			id := cfg.PanelLayout[r/pr][c/pc]
			if id < 0 {
				table[r*cols+c] = Dropped
				continue
			}
			lr, lc := r%pr, c%pc
			if cfg.FlipEveryPanel && id%2 == 1 {
				lr = pr - 1 - lr
			}
			table[r*cols+c] = id*size + localIndex(lr, lc, pr, pc, cfg.Traversal, cfg.Serpentine)
		}
	}
	return &Layout{cfg: cfg, rows: rows, cols: cols, count: panels * size, table: table}, nil
}

// Reshape returns the layout used for a virtual buffer of another shape. The
// receiver is returned unchanged when the shape matches; otherwise a plain
// (untiled) table with the same traversal rules is built.
func (l *Layout) Reshape(rows, cols int) (*Layout, error) {
	if rows == l.rows && cols == l.cols {
		return l, nil
	}
	cfg := l.cfg
	cfg.Rows, cfg.Columns = rows, cols
	cfg.PanelLayout = nil
	out, err := New(cfg)
	if err != nil {
		return nil, err
	}
	out.cfg.PanelRows, out.cfg.PanelColumns = 0, 0
	return out, nil
}

func (l *Layout) Config() Config { return l.cfg }
func (l *Layout) Rows() int      { return l.rows }
func (l *Layout) Cols() int      { return l.cols }

// Len is the number of virtual cells.
func (l *Layout) Len() int { return l.rows * l.cols }

// Count is the number of physical LEDs the layout addresses.
func (l *Layout) Count() int { return l.count }

// Index maps (row, col) to a physical index, or Dropped.
func (l *Layout) Index(row, col int) int {
	if row < 0 || row >= l.rows || col < 0 || col >= l.cols {
		return Dropped
	}
	return l.table[row*l.cols+col]
}

// Table is the read-only mapping, indexed by row*Cols()+col.
func (l *Layout) Table() []int { return l.table }
