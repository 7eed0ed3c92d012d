package models

import "time"

// FileEntry is a regular file discovered while walking a rename root
type FileEntry struct {
	Dir         string `json:"dir"`
	Name        string `json:"name"`
	PrefixMatch bool   `json:"prefix_match"`
}

// RenameSummary holds the counters of one renamer run
type RenameSummary struct {
	Root        string        `json:"root"`
	Directories int           `json:"directories"`
	Renamed     int           `json:"renamed"`
	Skipped     int           `json:"skipped"`
	Errored     int           `json:"errored"`
	Duration    time.Duration `json:"duration"`
}

// NoFiles reports whether the tree contained no regular files at all
func (s *RenameSummary) NoFiles() bool {
	return s.Renamed == 0 && s.Skipped == 0 && s.Errored == 0
}

// NoMatches reports whether files existed but none carried the prefix
func (s *RenameSummary) NoMatches() bool {
	return s.Renamed == 0 && s.Errored == 0 && s.Skipped > 0
}

// DownloadedImage is an image written to the query folder
type DownloadedImage struct {
	URL         string `json:"url"`
	Path        string `json:"path"`
	ContentType string `json:"content_type"`
	Extension   string `json:"extension"`
	Bytes       int64  `json:"bytes"`
}

// ScrapeSummary holds the outcome of one scraper run
type ScrapeSummary struct {
	Query      string            `json:"query"`
	Folder     string            `json:"folder"`
	Requested  int               `json:"requested"`
	Candidates int               `json:"candidates"`
	Attempted  int               `json:"attempted"`
	Downloaded int               `json:"downloaded"`
	Failed     int               `json:"failed"`
	Images     []DownloadedImage `json:"images"`
	Duration   time.Duration     `json:"duration"`
}

// NoCandidates reports whether the results page yielded no image URLs
func (s *ScrapeSummary) NoCandidates() bool {
	return s.Candidates == 0
}
