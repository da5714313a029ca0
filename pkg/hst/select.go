package hst

import "time"

// Select returns the indices of entries whose [start, end) window contains
// either the query start or the query stop instant. An entry lying strictly
// between the two is not selected.
func (c *Catalog) Select(start, stop time.Time) []int {
	var out []int
	for i, e := range c.Entries {
		h := e.Header
		switch {
		case h.Covers(start):
			out = append(out, i)
		case h.StartTime.Before(stop) && h.EndTime.After(stop):
			out = append(out, i)
		}
	}
	return out
}

// DefaultSelection is used when neither a time range nor an explicit index
// is given. The final catalog entry is excluded.
func (c *Catalog) DefaultSelection() []int {
	n := len(c.Entries) - 1
	if n <= 0 {
		return nil
	}
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
