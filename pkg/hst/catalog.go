package hst

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// MasterHeader is the fixed record at the start of a .HST catalog.
type MasterHeader struct {
	Title        string
	ID           string
	Type         uint16
	Version      uint16
	MaxFiles     uint16
	FilesCreated uint16
	Next         uint16
	Addon        uint16
}

// CatalogEntry pairs a stored data file name with its header. Index is the
// position in the catalog and is the canonical file selector.
type CatalogEntry struct {
	Index  int
	Name   string
	Header FileHeader
}

// Layout resolves the record layout of the entry's data file from the
// entry's own version tag.
func (e CatalogEntry) Layout() (Layout, error) {
	return LayoutFor(e.Header.Version)
}

type Catalog struct {
	Master  MasterHeader
	Layout  Layout
	Entries []CatalogEntry
}

// ReadCatalog decodes a master header followed by its catalog entries.
func ReadCatalog(rd io.Reader) (*Catalog, error) {
	br := bufio.NewReader(rd)

	buf := make([]byte, masterHeaderSize)
	if err := readRecord(br, buf); err != nil {
		return nil, fmt.Errorf("master header: %w", err)
	}
	master := decodeMasterHeader(buf)

	layout, err := LayoutFor(master.Version)
	if err != nil {
		return nil, fmt.Errorf("master header: %w", err)
	}

	entries := make([]CatalogEntry, 0, master.FilesCreated)
	rec := make([]byte, layout.EntrySize())
	for i := 0; i < int(master.FilesCreated); i++ {
		if err := readRecord(br, rec); err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", i, err)
		}
		name := decodeText(rec[:layout.NameWidth()])
		h, err := DecodeFileHeader(rec[layout.NameWidth():], layout)
		if err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", i, err)
		}
		entries = append(entries, CatalogEntry{Index: i, Name: name, Header: h})
	}

	return &Catalog{Master: master, Layout: layout, Entries: entries}, nil
}

// DecodeCatalog decodes a catalog held entirely in memory.
func DecodeCatalog(data []byte) (*Catalog, error) {
	return ReadCatalog(bytes.NewReader(data))
}

func decodeMasterHeader(b []byte) MasterHeader {
	r := newFieldReader(b)
	var m MasterHeader
	m.Title = r.readText(128)
	m.ID = r.readText(8)
	m.Type = r.readU16()
	m.Version = r.readU16()
	r.skip(4) // alignment
	r.skip(4) // mode
	m.MaxFiles = r.readU16()
	m.FilesCreated = r.readU16()
	m.Next = r.readU16()
	m.Addon = r.readU16()
	r.skip(20)
	return m
}

// readRecord fills buf completely or reports ErrTruncatedHeader.
func readRecord(r io.Reader, buf []byte) error {
	n, err := io.ReadFull(r, buf)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrTruncatedHeader, len(buf), n)
	}
	return err
}

// Entry returns the catalog entry at index i.
func (c *Catalog) Entry(i int) (CatalogEntry, error) {
	if i < 0 || i >= len(c.Entries) {
		return CatalogEntry{}, fmt.Errorf("%w: %d (catalog has %d files)", ErrFileIndex, i, len(c.Entries))
	}
	return c.Entries[i], nil
}

// StripDirectory returns the last component of a stored name. Stored names
// use the historian host's backslash separator.
func StripDirectory(name string) string {
	if i := strings.LastIndexByte(name, '\\'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// Localize presents every entry's start and end time in loc. Selection with
// dates parsed in loc must run after Localize.
func (c *Catalog) Localize(loc *time.Location) {
	for i := range c.Entries {
		c.Entries[i].Header = c.Entries[i].Header.Localize(c.Layout, loc)
	}
}

// StripDirectories rewrites every entry name to its last path component.
func (c *Catalog) StripDirectories() {
	for i := range c.Entries {
		c.Entries[i].Name = StripDirectory(c.Entries[i].Name)
	}
}
