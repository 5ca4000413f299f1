// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for browsing links:
//  1. [LinkListView] : Browse links owned by the authenticated account
//  2. [DetailView] : Inspect a single link
//  3. [ConfirmDeleteView] : Confirm deletion
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
