// Package catalog maintains the per-category products.json files: an
// ordered JSON array of product summaries, newest first, keyed by slug.
//
// Writes go through a temporary sibling that is parsed back before the
// previous file is backed up and the temporary renamed into place, so the
// live file is never left half-written and the last good state stays
// recoverable from the .bak sibling.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf16"

	"giftfinder/internal/core"
)

// ErrBadFormat is returned when an existing catalog file does not hold a
// JSON array.
var ErrBadFormat = errors.New("invalid catalog format")

// Load reads the catalog at path. A missing file is an empty catalog; a file
// that does not parse as a JSON array is a format error naming the file.
func Load(path string) ([]core.CatalogEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	var entries []core.CatalogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w in %s: expected a JSON array: %v", ErrBadFormat, filepath.Base(path), err)
	}
	return entries, nil
}

// Write serializes entries to path with replace-and-backup semantics.
func Write(path string, entries []core.CatalogEntry) error {
	if entries == nil {
		entries = []core.CatalogEntry{}
	}

	payload, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	payload = append(asciiEscape(payload), '\n')

	tmpPath := path + ".tmp"
	bakPath := path + ".bak"

	if err := os.WriteFile(tmpPath, payload, 0644); err != nil {
		return fmt.Errorf("failed to write catalog temp file %s: %w", tmpPath, err)
	}

	// Parse the temp file back before touching the live file.
	tmpData, err := os.ReadFile(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to read back catalog temp file %s: %w", tmpPath, err)
	}
	var check []core.CatalogEntry
	if err := json.Unmarshal(tmpData, &check); err != nil {
		return fmt.Errorf("catalog temp file %s is not well-formed: %w", tmpPath, err)
	}

	if prev, err := os.ReadFile(path); err == nil {
		if err := os.WriteFile(bakPath, prev, 0644); err != nil {
			return fmt.Errorf("failed to write catalog backup %s: %w", bakPath, err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read current catalog %s: %w", path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace catalog %s: %w", path, err)
	}
	return nil
}

// Upsert loads the catalog, removes any entry sharing the new entry's slug,
// prepends the new entry, and writes the result back. Idempotent per slug.
func Upsert(path string, entry core.CatalogEntry) error {
	entries, err := Load(path)
	if err != nil {
		return err
	}

	kept := make([]core.CatalogEntry, 0, len(entries)+1)
	kept = append(kept, entry)
	for _, existing := range entries {
		if existing.Slug != entry.Slug {
			kept = append(kept, existing)
		}
	}

	return Write(path, kept)
}

// asciiEscape rewrites any non-ASCII runes in JSON output as \uXXXX escapes,
// surrogate pairs included, so catalog files stay plain ASCII.
func asciiEscape(data []byte) []byte {
	var out bytes.Buffer
	for _, r := range string(data) {
		switch {
		case r < 0x80:
			out.WriteRune(r)
		case r > 0xFFFF:
			r1, r2 := utf16.EncodeRune(r)
			fmt.Fprintf(&out, `\u%04x\u%04x`, r1, r2)
		default:
			fmt.Fprintf(&out, `\u%04x`, r)
		}
	}
	return out.Bytes()
}
