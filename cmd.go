package shgrid

import (
	"encoding/json"
	"net/http"

	tea "charm.land/bubbletea/v2"
	"github.com/pkg/errors"

	nt "shgrid/entity"
	"shgrid/fetch"
	"shgrid/message"
)

// getRow fetches a full row from its link
func (m Model) getRow(link string) tea.Cmd {

	return func() tea.Msg {

		resp, err := m.gateway.Query(m.ctx, link, fetch.Options{})
		if err != nil {
			return message.ErrorMsg{Err: err}
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return message.ErrorMsg{Err: errors.Errorf("failed to get row %s: %s", link, resp.Status)}
		}

		row := nt.Record{}
		err = json.NewDecoder(resp.Body).Decode(&row)
		if err != nil {
			return message.ErrorMsg{Err: errors.Wrapf(err, "failed to decode row %s", link)}
		}

		return message.RowMsg{Link: link, Row: row}
	}
}

// buildData requests the first page when the grid was not given one
func (m Model) buildData() tea.Cmd {

	if !m.grid.BuildDataOnLoad() {
		return nil
	}

	return func() tea.Msg {
		m.grid.BuildData()
		return nil
	}
}
