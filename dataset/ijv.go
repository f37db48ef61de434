package dataset

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const matrixMarketBanner = "%%MatrixMarket matrix coordinate real general"

// DecodeIJV parses sparse "row col value" triplets with 1-based indexes.
//
// If the input starts with a MatrixMarket banner, the first non-comment line
// is the "rows cols nnz" size line. Otherwise the dimensions are the maximum
// indexes seen. Unlisted cells are zero. Lines starting with '%' or '#' are
// comments.
func DecodeIJV(r io.Reader) (*Matrix, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)

	type triplet struct {
		i, j int
		v    float64
	}
	var (
		entries    []triplet
		rows, cols int
		sized      bool
		needSize   bool
		line       int
	)

	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if line == 1 && strings.HasPrefix(text, "%%MatrixMarket") {
			needSize = true
			continue
		}
		if text == "" || text[0] == '%' || text[0] == '#' {
			continue
		}
		fields := strings.Fields(text)

		if needSize && !sized {
			if len(fields) != 3 {
				return nil, fmt.Errorf("%w: line %d: size line needs 3 fields", ErrCorrupt, line)
			}
			var err error
			if rows, err = strconv.Atoi(fields[0]); err != nil || rows < 0 {
				return nil, fmt.Errorf("%w: line %d: invalid row count %q", ErrCorrupt, line, fields[0])
			}
			if cols, err = strconv.Atoi(fields[1]); err != nil || cols < 0 {
				return nil, fmt.Errorf("%w: line %d: invalid column count %q", ErrCorrupt, line, fields[1])
			}
			sized = true
			continue
		}

		if len(fields) != 3 {
			return nil, fmt.Errorf("%w: line %d has %d fields, want 3", ErrCorrupt, line, len(fields))
		}
		i, err := strconv.Atoi(fields[0])
		if err != nil || i < 1 {
			return nil, fmt.Errorf("%w: line %d: invalid row index %q", ErrCorrupt, line, fields[0])
		}
		j, err := strconv.Atoi(fields[1])
		if err != nil || j < 1 {
			return nil, fmt.Errorf("%w: line %d: invalid column index %q", ErrCorrupt, line, fields[1])
		}
		v, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrCorrupt, line, err)
		}
		if sized && (i > rows || j > cols) {
			return nil, fmt.Errorf("%w: line %d: cell (%d,%d) outside %dx%d", ErrShape, line, i, j, rows, cols)
		}
		entries = append(entries, triplet{i: i, j: j, v: v})
		if !sized {
			rows = max(rows, i)
			cols = max(cols, j)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if needSize && !sized {
		return nil, fmt.Errorf("%w: missing size line", ErrCorrupt)
	}

	m := NewMatrix(rows, cols)
	for _, t := range entries {
		m.Set(t.i-1, t.j-1, t.v)
	}
	return m, nil
}

// EncodeIJV writes the non-zero cells of m as MatrixMarket coordinate text.
func EncodeIJV(w io.Writer, m *Matrix) error {
	if err := m.validate(); err != nil {
		return err
	}
	nnz := 0
	for _, v := range m.Data {
		if v != 0 {
			nnz++
		}
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\n%d %d %d\n", matrixMarketBanner, m.Rows, m.Cols, nnz)
	buf := make([]byte, 0, 48)
	for i := 0; i < m.Rows; i++ {
		for j, v := range m.Row(i) {
			if v == 0 {
				continue
			}
			buf = strconv.AppendInt(buf[:0], int64(i+1), 10)
			buf = append(buf, ' ')
			buf = strconv.AppendInt(buf, int64(j+1), 10)
			buf = append(buf, ' ')
			buf = strconv.AppendFloat(buf, v, 'g', -1, 64)
			buf = append(buf, '\n')
			if _, err := bw.Write(buf); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
