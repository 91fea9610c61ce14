// Package codefix applies the text edits suggested with diagnostics to source files.
package codefix

import (
	"fmt"
	"sort"
	"strings"
)

// TextEdit replaces the bytes [Pos, End) of File with NewText.
type TextEdit struct {
	File    string `json:"file,omitempty"`
	Pos     int    `json:"pos"`
	End     int    `json:"end"`
	NewText string `json:"newText"`
	// RemovesListItem widens a deletion over the list separator or attribute
	// brackets around it so no dangling ", " or "[]" is left behind.
	RemovesListItem bool `json:"removesListItem,omitempty"`
}

// SuggestedFix is one named set of edits resolving a diagnostic.
type SuggestedFix struct {
	Message   string     `json:"message"`
	TextEdits []TextEdit `json:"textEdits"`
}

// Apply applies edits to src. Edits are applied right to left and an edit that overlaps
// one already applied is skipped: of two overlapping edits the one ending further right
// wins, and of two ending at the same offset the one starting further left.
// It returns the number of edits applied.
func Apply(src []byte, edits []TextEdit) ([]byte, int, error) {
	text := string(src)

	expanded := make([]TextEdit, 0, len(edits))
	for _, edit := range edits {
		if edit.Pos < 0 || edit.End > len(text) || edit.Pos > edit.End {
			return nil, 0, fmt.Errorf("edit [%d, %d) is outside of the %d byte source", edit.Pos, edit.End, len(text))
		}
		if edit.RemovesListItem && edit.NewText == "" {
			edit = widenRemoval(text, edit)
		}
		expanded = append(expanded, edit)
	}

	sort.SliceStable(expanded, func(i, j int) bool {
		a, b := expanded[i], expanded[j]
		if a.End != b.End {
			return a.End > b.End
		}
		return a.Pos < b.Pos
	})

	applied := 0
	tail := len(text)
	parts := make([]string, 0, 2*len(expanded)+1)
	for _, edit := range expanded {
		if edit.End > tail {
			continue
		}
		parts = append(parts, text[edit.End:tail], edit.NewText)
		tail = edit.Pos
		applied++
	}
	parts = append(parts, text[:tail])

	var b strings.Builder
	for i := len(parts) - 1; i >= 0; i-- {
		b.WriteString(parts[i])
	}
	return []byte(b.String()), applied, nil
}

func widenRemoval(text string, edit TextEdit) TextEdit {
	left := edit.Pos
	for left > 0 && isBlank(text[left-1]) {
		left--
	}
	right := edit.End
	for right < len(text) && isBlank(text[right]) {
		right++
	}

	switch {
	case left > 0 && text[left-1] == ',':
		edit.Pos = left - 1

	case right < len(text) && text[right] == ',':
		right++
		for right < len(text) && isBlank(text[right]) {
			right++
		}
		edit.End = right

	case right < len(text) && text[right] == ']':
		open := strings.LastIndexByte(text[:left], '[')
		if open < 0 {
			return edit
		}
		if target := strings.TrimSpace(text[open+1 : left]); target != "" && !strings.HasSuffix(target, ":") {
			return edit
		}
		right++
		if right < len(text) && text[right] == ' ' {
			right++
		}
		edit.Pos = open
		edit.End = right
	}

	return edit
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t'
}
