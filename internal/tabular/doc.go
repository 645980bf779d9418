// Package tabular reads and writes the comma-delimited registry files.
//
// Reading is lazy: Rows yields one Row per record with its 1-based line
// number so loaders can annotate schema errors. Writing is all-or-nothing:
// WriteFile streams into a temporary file next to the destination and renames
// it into place only after every row has been written and synced.
//
// Output always uses "\n" line termination regardless of platform.
package tabular
