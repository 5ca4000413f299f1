package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/chainydev/chainyctl/internal/services"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LinkListView ViewState = iota
	DetailView
	ConfirmDeleteView
)

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	svc      services.LinkService
	width    int
	height   int
	linkList list.Model
	links    []services.Link
	selected *services.Link
	status   string
	err      error
	help     help.Model
	keys     keyMap
}

type linksFetchedMsg struct {
	links []services.Link
	err   error
}

type linkDeletedMsg struct {
	code string
	err  error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, svc services.LinkService) *Model {
	return &Model{
		ctx:  ctx,
		view: LinkListView,
		svc:  svc,
		help: help.New(),
		keys: newKeyMap(),
	}
}

// Init initializes the TUI by fetching the link list.
func (m *Model) Init() tea.Cmd {
	return m.fetchLinks()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.linkList.Width() == 0 {
			m.linkList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case LinkListView:
			return m.handleListKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case ConfirmDeleteView:
			return m.handleConfirmKeys(msg)
		}

	case linksFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.links = msg.links
		items := make([]list.Item, len(msg.links))
		for i, link := range msg.links {
			items[i] = linkItem{link: link}
		}
		m.linkList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.linkList.Title = "Chainy Links"
		m.linkList.SetSize(m.width-4, m.height-8)
		return m, nil

	case linkDeletedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = LinkListView
			return m, nil
		}
		m.status = fmt.Sprintf("Deleted %s", msg.code)
		m.selected = nil
		m.view = LinkListView
		return m, m.fetchLinks()
	}

	return m.updateList(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case LinkListView:
		return m.renderList()
	case DetailView:
		return m.renderDetail()
	case ConfirmDeleteView:
		return m.renderConfirm()
	default:
		return ""
	}
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.status = "Refreshing..."
		return m, m.fetchLinks()
	case "enter":
		if item, ok := m.linkList.SelectedItem().(linkItem); ok {
			link := item.link
			m.selected = &link
			m.view = DetailView
		}
		return m, nil
	case "d":
		if item, ok := m.linkList.SelectedItem().(linkItem); ok {
			link := item.link
			m.selected = &link
			m.view = ConfirmDeleteView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.linkList, cmd = m.linkList.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = LinkListView
		return m, nil
	case "d":
		m.view = ConfirmDeleteView
		return m, nil
	}
	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		m.view = LinkListView
		return m, nil
	case "y":
		return m, m.deleteSelected()
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.view == LinkListView {
		m.linkList, cmd = m.linkList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchLinks() tea.Cmd {
	return func() tea.Msg {
		links, err := m.svc.ListLinks(m.ctx)
		return linksFetchedMsg{links: links, err: err}
	}
}

func (m *Model) deleteSelected() tea.Cmd {
	code := m.selected.Code
	return func() tea.Msg {
		err := m.svc.DeleteLink(m.ctx, code)
		return linkDeletedMsg{code: code, err: err}
	}
}

func (m *Model) renderList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.delete, m.keys.refresh, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	status := ""
	if m.status != "" {
		status = styles.ok.Render(m.status) + "\n"
	}
	return fmt.Sprintf("%s\n%s%s", m.linkList.View(), status, helpView)
}

func (m *Model) renderDetail() string {
	title := styles.title.Render(fmt.Sprintf("Link '%s'", m.selected.Code))
	info := fmt.Sprintf(
		"\nShort URL: %s\nTarget: %s\nVisits: %d\nCreated: %s\n",
		m.selected.ShortURL,
		m.selected.Target,
		m.selected.Visits,
		m.selected.CreatedAt.Format("2006-01-02 15:04"),
	)

	helpKeys := []key.Binding{m.keys.delete, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.warn.Render(fmt.Sprintf("Delete link '%s'?", m.selected.Code))
	info := fmt.Sprintf("\nTarget: %s\n", m.selected.Target)

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}
