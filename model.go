package shgrid

import (
	"context"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"shgrid/detail"
	nt "shgrid/entity"
	"shgrid/fetch"
	"shgrid/filter"
	"shgrid/message"
	"shgrid/style"
	"shgrid/table"
)

const (
	footerHeight = 2
)

// Grid is what the view drives, satisfied by both server and local grids of records.
type Grid interface {
	table.Grid
	SetFilter(columnID, text string) error
	BuildData()
	BuildDataOnLoad() bool
}

// Model is the bubbletea model for the grid viewer.
type Model struct {
	grid    Grid
	gateway *fetch.Gateway
	name    string

	screen      Screen
	errorString string

	tablePanel  table.TablePanel
	detailPanel detail.DetailPanel
	filterPanel filter.FilterPanel

	width  int
	height int

	ctx    context.Context
	logger nt.Logger
}

// NewModel creates a model showing grd, fetching row details through gateway.
// Name identifies the source in the footer.
func NewModel(ctx context.Context, grd Grid, gateway *fetch.Gateway, name string, lgr nt.Logger) Model {

	if lgr == nil {
		lgr = nt.NopLogger{}
	}

	return Model{
		grid:        grd,
		gateway:     gateway,
		name:        name,
		screen:      TableScreen,
		tablePanel:  table.NewTablePanel(ctx, grd, lgr),
		detailPanel: detail.NewDetailPanel(grd.Columns()),
		filterPanel: filter.NewFilterPanel(ctx, lgr),
		ctx:         ctx,
		logger:      lgr,
	}
}

func (m Model) Init() tea.Cmd {
	return m.buildData()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {

	var cmd tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		height := msg.Height - footerHeight
		m.tablePanel, _ = m.tablePanel.Update(table.SizeMsg{Width: msg.Width, Height: height})
		m.detailPanel, _ = m.detailPanel.Update(detail.SizeMsg{Width: msg.Width, Height: height})
		m.filterPanel, _ = m.filterPanel.Update(filter.SizeMsg{Width: msg.Width, Height: height})
		return m, nil

	case message.ChangedMsg:
		m.errorString = ""
		if state := m.grid.State(); state.Err != nil {
			m.errorString = state.Err.Error()
		}
		m.tablePanel, cmd = m.tablePanel.Update(msg)
		return m, cmd

	case message.ErrorMsg:
		m.logger.Error(m.ctx, "error msg", msg.Err)
		m.errorString = msg.Err.Error()
		return m, nil

	case message.OpenFilterMsg:
		m.screen = FilterScreen
		m.filterPanel, cmd = m.filterPanel.Update(msg)
		return m, cmd

	case message.ApplyFilterMsg:
		m.screen = TableScreen
		if msg.Text == nil {
			return m, nil
		}
		if err := m.grid.SetFilter(msg.ColumnID, *msg.Text); err != nil {
			return m, message.ErrorCmd(err)
		}
		return m, nil

	case message.SelectedMsg:
		if msg.Link == "" {
			return m, nil
		}
		m.screen = DetailScreen
		m.detailPanel = m.detailPanel.Clear()
		return m, m.getRow(msg.Link)

	case message.RowMsg:
		m.detailPanel, cmd = m.detailPanel.Update(msg)
		return m, cmd

	case tea.KeyPressMsg:
		return m.keyPress(msg)
	}

	return m, nil
}

func (m Model) View() tea.View {

	if m.width == 0 {
		return tea.NewView("Loading...")
	}

	view := tea.NewView(m.render())
	view.AltScreen = true
	return view
}

// unexported

// render composes the current screen above the footer
func (m Model) render() string {

	var screen string
	switch m.screen {
	case DetailScreen:
		screen = m.detailPanel.Render()
	case FilterScreen:
		screen = m.filterPanel.Render()
	default:
		screen = m.tablePanel.Render()
	}

	height := max(m.height-footerHeight, 0)
	screen = lipgloss.NewStyle().Height(height).MaxHeight(height).Render(screen)

	return lipgloss.JoinVertical(lipgloss.Left, screen, m.footer())
}

func (m Model) keyPress(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {

	var cmd tea.Cmd

	// the filter dialog takes all keys while open
	if m.screen == FilterScreen {
		m.filterPanel, cmd = m.filterPanel.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "esc", "left", "h":
		if m.screen == DetailScreen {
			m.screen = TableScreen
			return m, nil
		}
		if msg.String() == "esc" {
			return m, tea.Quit
		}
	}

	switch m.screen {
	case DetailScreen:
		m.detailPanel, cmd = m.detailPanel.Update(msg)
	default:
		m.tablePanel, cmd = m.tablePanel.Update(msg)
	}
	return m, cmd
}

func (m Model) footer() string {

	left := pagingSummary(m.grid.State(), m.grid.Paginator().Page(), m.grid.PageCount(), m.grid.Paginator().Limit)
	if m.errorString != "" {
		left = style.ErrorStyle.Render(m.errorString)
	}

	return RenderFooter(left, m.name, m.width)
}
