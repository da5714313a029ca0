// Package hst reads historian trend archives: a .HST master catalog and the
// data files it references. Two record layouts exist, selected by the catalog
// version: version 5 stores 16-bit scaled samples with Unix-second
// timestamps, version 6 stores float64 samples with FILETIME timestamps.
package hst
