//go:build unix

package hst

import (
	"os"

	"golang.org/x/sys/unix"
)

// OpenCatalog maps a .HST catalog read-only and decodes it. If mmap is
// unavailable it falls back to a buffered read. Decoded strings are copies, so
// the mapping is released before returning.
func OpenCatalog(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := st.Size()
	if size <= 0 || size > int64(int(^uint(0)>>1)) {
		return ReadCatalog(f)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return ReadCatalog(f)
	}
	defer func() { _ = unix.Munmap(data) }()

	return DecodeCatalog(data)
}
