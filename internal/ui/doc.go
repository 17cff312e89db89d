// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a three-view workflow for browsing the album library:
//  1. [LibraryView] : Browse saved albums with their Discogs ratings
//  2. [SyncView] : Monitor real-time progress while a sync runs
//  3. [StatsView] : Display library rating statistics
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the LibraryEngine, providing non-blocking status reporting during syncs.
//
// Keyboard navigation uses vim-style bindings (j/k, s, t, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
