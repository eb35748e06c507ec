// Package files discovers spreadsheet files for batch extraction. It
// filters out Excel lock files and non-workbook entries and returns
// results in a deterministic order so batch runs are reproducible.
package files
