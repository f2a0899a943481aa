// Package screen reconstructs the visible terminal state from raw PTY
// output. The harness never talks to the target editor through an API; all
// verification reads the rendered screen, so every observable check funnels
// through this package.
package screen

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Point is a 1-indexed screen coordinate (column, row).
type Point struct {
	X int
	Y int
}

// Offset is a coordinate delta relative to a reference Point, in cells.
type Offset struct {
	DX int
	DY int
}

// Add resolves the offset against an anchor point.
func (o Offset) Add(p Point) Point {
	return Point{X: p.X + o.DX, Y: p.Y + o.DY}
}

// Parse simulates terminal output and returns the final screen rows.
// It handles cursor positioning, erase sequences, line feeds, carriage
// returns, and alt-screen switches; SGR styling is discarded. Rows are
// right-trimmed.
func Parse(buffer string) []string {
	const initialRows = 30
	const initialCols = 100
	grid := make([][]rune, initialRows)
	for i := range grid {
		grid[i] = blankRow(initialCols)
	}

	row, col := 0, 0

	i := 0
	for i < len(buffer) {
		switch buffer[i] {
		case '\x1b':
			i++
			if i >= len(buffer) {
				break
			}
			switch buffer[i] {
			case '[':
				i++
				params := ""
				for i < len(buffer) && (buffer[i] >= '0' && buffer[i] <= '9' || buffer[i] == ';' || buffer[i] == '?') {
					params += string(buffer[i])
					i++
				}
				if i >= len(buffer) {
					break
				}
				cmd := buffer[i]
				i++
				switch cmd {
				case 'H', 'f':
					row, col = parseCursorPosition(params)
				case 'J':
					eraseDisplay(grid, row, col, paramInt(params, 0))
				case 'K':
					if row < len(grid) {
						for c := col; c < len(grid[row]); c++ {
							grid[row][c] = ' '
						}
					}
				case 'A':
					row -= paramInt(params, 1)
					if row < 0 {
						row = 0
					}
				case 'B':
					row += paramInt(params, 1)
				case 'C':
					col += paramInt(params, 1)
				case 'D':
					col -= paramInt(params, 1)
					if col < 0 {
						col = 0
					}
				case 'h':
					// Alt screen switch clears the buffer and homes the cursor.
					if strings.Contains(params, "1049") || strings.Contains(params, "47") {
						for r := range grid {
							for c := range grid[r] {
								grid[r][c] = ' '
							}
						}
						row, col = 0, 0
					}
				default:
					// SGR ('m'), mode resets, and the rest are irrelevant to layout.
				}
			case ']':
				// OSC: skip until BEL or ST.
				i++
				for i < len(buffer) {
					if buffer[i] == '\x07' {
						i++
						break
					}
					if buffer[i] == '\x1b' && i+1 < len(buffer) && buffer[i+1] == '\\' {
						i += 2
						break
					}
					i++
				}
			default:
				i++
			}
		case '\r':
			col = 0
			i++
		case '\n':
			row++
			col = 0
			i++
		case '\t':
			col = ((col / 8) + 1) * 8
			i++
		case '\b':
			if col > 0 {
				col--
			}
			i++
		default:
			if buffer[i] >= 32 && buffer[i] < 127 {
				grid = growTo(grid, row, col)
				grid[row][col] = rune(buffer[i])
				col++
			} else if buffer[i] >= 0x80 {
				r, size := utf8.DecodeRuneInString(buffer[i:])
				if r != utf8.RuneError {
					grid = growTo(grid, row, col)
					grid[row][col] = r
					col++
					i += size - 1
				}
			}
			i++
		}
	}

	rows := make([]string, len(grid))
	for i, r := range grid {
		rows[i] = strings.TrimRight(string(r), " ")
	}
	return rows
}

func blankRow(cols int) []rune {
	r := make([]rune, cols)
	for i := range r {
		r[i] = ' '
	}
	return r
}

func growTo(grid [][]rune, row, col int) [][]rune {
	for row >= len(grid) {
		grid = append(grid, blankRow(cap(grid[0])))
	}
	for col >= len(grid[row]) {
		grid[row] = append(grid[row], ' ')
	}
	return grid
}

func parseCursorPosition(params string) (row, col int) {
	row, col = 1, 1
	parts := strings.Split(params, ";")
	if len(parts) >= 1 && parts[0] != "" {
		if n, err := strconv.Atoi(parts[0]); err == nil {
			row = n
		}
	}
	if len(parts) >= 2 && parts[1] != "" {
		if n, err := strconv.Atoi(parts[1]); err == nil {
			col = n
		}
	}
	return row - 1, col - 1
}

func paramInt(params string, def int) int {
	if params == "" {
		return def
	}
	if n, err := strconv.Atoi(params); err == nil {
		return n
	}
	return def
}

func eraseDisplay(grid [][]rune, row, col, mode int) {
	switch mode {
	case 0: // cursor to end of screen
		if row < len(grid) {
			for c := col; c < len(grid[row]); c++ {
				grid[row][c] = ' '
			}
		}
		for r := row + 1; r < len(grid); r++ {
			for c := range grid[r] {
				grid[r][c] = ' '
			}
		}
	case 1: // start of screen to cursor
		for r := 0; r < row; r++ {
			for c := range grid[r] {
				grid[r][c] = ' '
			}
		}
		if row < len(grid) {
			for c := 0; c <= col && c < len(grid[row]); c++ {
				grid[row][c] = ' '
			}
		}
	case 2:
		for r := range grid {
			for c := range grid[r] {
				grid[r][c] = ' '
			}
		}
	}
}

// StripANSI removes ANSI escape codes from a string without interpreting
// cursor movement. Use Parse when positioning matters.
func StripANSI(s string) string {
	var result strings.Builder
	i := 0
	for i < len(s) {
		if s[i] != '\x1b' {
			result.WriteByte(s[i])
			i++
			continue
		}
		i++
		if i >= len(s) {
			break
		}
		switch s[i] {
		case '[':
			i++
			for i < len(s) && !isCSITerminator(s[i]) {
				i++
			}
			if i < len(s) {
				i++
			}
		case ']':
			i++
			for i < len(s) {
				if s[i] == '\x07' {
					i++
					break
				}
				if s[i] == '\x1b' && i+1 < len(s) && s[i+1] == '\\' {
					i += 2
					break
				}
				i++
			}
		case '(', ')':
			i += 2
		default:
			i++
		}
	}
	return result.String()
}

func isCSITerminator(b byte) bool {
	return b >= 0x40 && b <= 0x7E
}
