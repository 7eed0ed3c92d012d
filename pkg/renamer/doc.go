// Package renamer walks a directory tree and gives every file carrying a
// prefix a random six digit name with a fixed extension.
//
// Directories are handled top-down: each directory is reported, its files
// are renamed in place, then its subdirectories are visited. A generated
// name is redrawn until nothing with that name exists in the directory.
// A symlink to a regular file is treated as a file and the link itself is
// renamed. Symlinks to directories are not descended into.
package renamer
