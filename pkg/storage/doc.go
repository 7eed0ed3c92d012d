// Package storage writes downloaded images into a query folder.
//
// Writes go to a temporary file that is renamed into place once the body
// has been copied, so an interrupted download never leaves a truncated
// image under its final name. The filesystem is an afero.Fs, which lets
// tests run against afero.NewMemMapFs.
package storage
