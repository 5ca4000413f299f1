package ui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/chainydev/chainyctl/internal/services"
	itesting "github.com/chainydev/chainyctl/internal/testing"
)

func newTestModel() *Model {
	svc := &itesting.MockLinkService{
		Links: []services.Link{
			{Code: "abc123", Target: "https://example.com/page", Visits: 3},
		},
	}
	return NewModel(context.Background(), svc)
}

func TestModel(t *testing.T) {
	t.Run("fetched links populate the list", func(t *testing.T) {
		m := newTestModel()

		updated, _ := m.Update(linksFetchedMsg{links: []services.Link{{Code: "abc123", Target: "https://example.com"}}})
		model := updated.(*Model)

		if len(model.links) != 1 {
			t.Fatalf("expected one link, got %d", len(model.links))
		}
		if model.view != LinkListView {
			t.Errorf("expected the list view, got %d", model.view)
		}
	})

	t.Run("enter opens the detail view", func(t *testing.T) {
		m := newTestModel()
		updated, _ := m.Update(linksFetchedMsg{links: []services.Link{{Code: "abc123"}}})
		m = updated.(*Model)

		updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		m = updated.(*Model)

		if m.view != DetailView {
			t.Errorf("expected the detail view, got %d", m.view)
		}
		if m.selected == nil || m.selected.Code != "abc123" {
			t.Error("expected the selected link to be recorded")
		}
	})

	t.Run("delete asks for confirmation and n backs out", func(t *testing.T) {
		m := newTestModel()
		updated, _ := m.Update(linksFetchedMsg{links: []services.Link{{Code: "abc123"}}})
		m = updated.(*Model)

		updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
		m = updated.(*Model)
		if m.view != ConfirmDeleteView {
			t.Fatalf("expected the confirm view, got %d", m.view)
		}

		updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
		m = updated.(*Model)
		if m.view != LinkListView {
			t.Errorf("expected to return to the list view, got %d", m.view)
		}
	})

	t.Run("a deletion result refreshes the list", func(t *testing.T) {
		m := newTestModel()
		updated, _ := m.Update(linksFetchedMsg{links: []services.Link{{Code: "abc123"}}})
		m = updated.(*Model)

		updated, cmd := m.Update(linkDeletedMsg{code: "abc123"})
		m = updated.(*Model)

		if m.view != LinkListView {
			t.Errorf("expected the list view, got %d", m.view)
		}
		if cmd == nil {
			t.Error("expected a refresh command")
		}
	})

	t.Run("a fetch error quits", func(t *testing.T) {
		m := newTestModel()

		_, cmd := m.Update(linksFetchedMsg{err: context.DeadlineExceeded})
		if cmd == nil {
			t.Fatal("expected a quit command")
		}
	})
}
