// Package ui renders CLI output: banners, progress lines and run summaries.
// Styling uses lipgloss and switches off automatically when stdout is not a
// terminal.
package ui
