//go:build !unix

package hst

import "os"

// OpenCatalog reads and decodes a .HST catalog.
func OpenCatalog(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ReadCatalog(f)
}
