package ui

import (
	"fmt"

	"imgtools/pkg/models"
)

// RenameSummary prints the end-of-run counters for the renamer
func (p *Printer) RenameSummary(s *models.RenameSummary, prefix string) {
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, p.render(highlightStyle, "--- Rename complete ---"))
	fmt.Fprintf(p.out, "Files renamed: %d\n", s.Renamed)
	if s.Skipped > 0 {
		fmt.Fprintf(p.out, "Files skipped (prefix mismatch): %d\n", s.Skipped)
	}
	if s.Errored > 0 {
		fmt.Fprintln(p.out, p.render(errorStyle, fmt.Sprintf("Files with errors: %d", s.Errored)))
	}

	switch {
	case s.NoMatches():
		p.Warning(fmt.Sprintf("No files starting with '%s' were found in '%s'.", prefix, s.Root))
	case s.NoFiles():
		p.Warning(fmt.Sprintf("No files were found in '%s'.", s.Root))
	}
}

// ScrapeSummary prints the download total or, when nothing was saved, a
// diagnostic that tells an empty results page apart from failed downloads.
func (p *Printer) ScrapeSummary(s *models.ScrapeSummary) {
	fmt.Fprintln(p.out)

	if s.Downloaded > 0 {
		p.Success(fmt.Sprintf("Downloaded %d image(s) to '%s'.", s.Downloaded, s.Folder))
		if s.Downloaded < s.Requested {
			p.Warning(fmt.Sprintf("Requested %d but only %d of %d candidate URLs could be saved.",
				s.Requested, s.Downloaded, s.Candidates))
		}
		return
	}

	if s.NoCandidates() {
		p.Error("No image URLs found on the results page.")
		p.Warning("The page layout may have changed or the images are loaded dynamically.")
		p.Warning("Inspect the page source to see how image URLs are embedded.")
		return
	}

	p.Error(fmt.Sprintf("No images were downloaded: all %d attempt(s) failed.", s.Attempted))
	p.Warning("Possible causes:")
	p.Warning("  1. The page structure changed and the extracted URLs are not real images.")
	p.Warning("  2. The requests were detected as automated and blocked.")
	p.Warning("  3. The URLs are not directly reachable or do not point at valid images.")
	p.Warning("Consider an official search API for more reliable results.")
}
