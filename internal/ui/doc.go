// Package ui is the terminal browser for club data.
//
// It is a Bubble Tea program with one tab per collection. Each tab shows a
// record list beside a scrollable detail pane; narrow terminals get the list
// only. The model never polls: it subscribes to state.Store.Changed and
// re-reads a snapshot whenever any collection changes, so optimistic edits
// and their rollbacks appear as soon as the store applies them.
//
// Deleting is only offered when the browser is started as an editor. The
// delete shows up immediately and its confirmed or reverted outcome is
// reported in the status line once the sync adapter answers.
//
// The theme and the last open tab are saved to the prefs file.
package ui
