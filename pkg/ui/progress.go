package ui

import (
	"fmt"
	"unicode/utf8"
)

// MaxURLDisplay is the number of characters of a URL shown in progress lines
const MaxURLDisplay = 100

// TruncateURL shortens u to MaxURLDisplay characters
func TruncateURL(u string) string {
	if utf8.RuneCountInString(u) <= MaxURLDisplay {
		return u
	}
	return string([]rune(u)[:MaxURLDisplay])
}

// FormatAttempt renders the line shown before an image download
func FormatAttempt(next, total int, url string) string {
	return fmt.Sprintf("Downloading image %d/%d from: %s...", next, total, TruncateURL(url))
}

// DownloadAttempt prints the progress line for the next download
func (p *Printer) DownloadAttempt(next, total int, url string) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.out, p.render(dimStyle, FormatAttempt(next, total, url)))
}

// DownloadSaved prints where an image was written
func (p *Printer) DownloadSaved(path string) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.out, "  %s %s\n", p.render(successStyle, "saved"), path)
}

// DownloadFailed prints why a download was skipped
func (p *Printer) DownloadFailed(url string, err error) {
	fmt.Fprintf(p.out, "  %s %s: %v\n", p.render(warningStyle, "failed"), TruncateURL(url), err)
}

// DirectoryEntered prints the directory the renamer is processing
func (p *Printer) DirectoryEntered(dir string) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.out, "\n%s '%s'\n", p.render(labelStyle, "Processing folder:"), dir)
}

// FileRenamed prints a completed rename
func (p *Printer) FileRenamed(from, to string) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.out, "  Renamed: '%s' -> '%s'\n", from, p.render(valueStyle, to))
}

// RenameFailed prints a failed rename
func (p *Printer) RenameFailed(name string, err error) {
	fmt.Fprintf(p.out, "  %s '%s': %v\n", p.render(errorStyle, "Error: cannot rename"), name, err)
}
