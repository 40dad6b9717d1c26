// Package detail shows a full row as indented json.
package detail

import (
	"encoding/json"
	"maps"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/pkg/errors"

	nt "shgrid/entity"
	"shgrid/message"
	"shgrid/style"
)

// DetailPanel handles the full record display state
type DetailPanel struct {
	columns []nt.Column // For json field parsing

	link         string
	row          nt.Record
	contentLines []string // Rendered content split into lines (cached)

	width        int
	height       int
	scrollOffset int
}

func NewDetailPanel(columns []nt.Column) DetailPanel {
	return DetailPanel{
		columns: columns,
	}
}

func (pnl DetailPanel) Update(msg tea.Msg) (DetailPanel, tea.Cmd) {

	switch msg := msg.(type) {

	case message.RowMsg:
		pnl.link = msg.Link
		pnl.row = msg.Row
		pnl.computeContentLines()
		pnl.scrollOffset = 0

	case SizeMsg:
		pnl.width = msg.Width
		pnl.height = msg.Height
		pnl.scrollOffset = 0

	case tea.KeyPressMsg:
		switch msg.String() {
		case "up", "k":
			pnl.scroll(-1)
		case "down", "j":
			pnl.scroll(1)
		case "pgup", "ctrl+u":
			pnl.scroll(-pnl.viewHeight())
		case "pgdown", "ctrl+d":
			pnl.scroll(pnl.viewHeight())
		}
	}

	return pnl, nil
}

// Clear forgets the shown row so a stale one is not displayed while the next loads
func (pnl DetailPanel) Clear() DetailPanel {
	pnl.link = ""
	pnl.row = nil
	pnl.contentLines = nil
	pnl.scrollOffset = 0
	return pnl
}

// Render renders the visible part of the record
func (pnl DetailPanel) Render() string {

	if pnl.contentLines == nil {
		return style.MutedStyle.Render("Loading full record...")
	}

	visible := pnl.contentLines[pnl.scrollOffset:]
	if height := pnl.viewHeight(); height > 0 && len(visible) > height {
		visible = visible[:height]
	}

	return style.MutedStyle.Render(pnl.link) + "\n" + strings.Join(visible, "\n")
}

// unexported

// viewHeight leaves a line for the link
func (pnl DetailPanel) viewHeight() int {
	return pnl.height - 1
}

func (pnl *DetailPanel) scroll(by int) {

	maxScroll := len(pnl.contentLines) - pnl.viewHeight()
	if maxScroll < 0 {
		maxScroll = 0
	}

	pnl.scrollOffset = min(max(pnl.scrollOffset+by, 0), maxScroll)
}

// computeContentLines renders the row as json and splits into lines
func (pnl *DetailPanel) computeContentLines() {

	if pnl.row == nil {
		pnl.contentLines = nil
		return
	}

	data, err := parseJsonFields(pnl.row, pnl.columns)
	if err != nil {
		pnl.contentLines = []string{"Error parsing JSON fields: " + err.Error()}
		return
	}

	var buf strings.Builder
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	err = encoder.Encode(data)
	if err != nil {
		pnl.contentLines = []string{"Error pretty-printing JSON: " + err.Error()}
		return
	}

	content := strings.TrimSuffix(buf.String(), "\n")
	pnl.contentLines = strings.Split(content, "\n")
}

// parseJsonFields expands escaped json in columns marked Json
// Returns a new map, leaving values that fail to parse as they were
func parseJsonFields(data nt.Record, columns []nt.Column) (nt.Record, error) {

	jsonFields := make(map[string]bool)
	for _, col := range columns {
		if col.Json {
			jsonFields[col.ID] = true
		}
	}

	result := make(nt.Record, len(data))
	maps.Copy(result, data)

	for key, val := range result {
		if !jsonFields[key] || val == nil {
			continue
		}

		str, ok := val.(string)
		if !ok {
			return nil, errors.Errorf("field %q marked as JSON but is not a string", key)
		}
		if str == "" {
			continue
		}

		var parsed any
		err := json.Unmarshal([]byte(str), &parsed)
		if err == nil {
			result[key] = parsed
		}
	}

	return result, nil
}
