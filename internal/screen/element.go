package screen

import "strings"

// Location is where a piece of visible text sits on the parsed screen.
type Location struct {
	Row   int // 1-indexed
	Col   int // 1-indexed
	Width int
	Text  string
}

// Center returns the click target for the located text.
func (l Location) Center() Point {
	return Point{X: l.Col + l.Width/2, Y: l.Row}
}

// Find searches raw PTY output for the first visible occurrence of content.
// Returns nil if the text is not on screen.
func Find(buffer, content string) *Location {
	return FindInRows(Parse(buffer), content)
}

// FindInRows searches pre-parsed screen rows for content.
func FindInRows(rows []string, content string) *Location {
	for row, line := range rows {
		if idx := strings.Index(line, content); idx >= 0 {
			return &Location{
				Row:   row + 1,
				Col:   idx + 1,
				Width: len(content),
				Text:  content,
			}
		}
	}
	return nil
}
