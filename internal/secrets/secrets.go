// Copyright International Livestock Research Institute, 2026.

// Package secrets loads credentials from a directory of plain-text
// files. Each file is one secret: the filename is the key and the
// trimmed contents are the value. The pipeline keeps only one secret
// today, the contact email sent to CrossRef, Unpaywall, and OpenAlex
// for polite-pool access; use ContactEmail to read it.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const contactEmailKey = "contact-email"

// Store holds loaded secrets keyed by filename.
type Store map[string]string

// ContactEmail returns the polite-pool contact email, or "" when the
// contact-email key file is absent.
func (s Store) ContactEmail() string {
	return s[contactEmailKey]
}

// Keys returns the names of the loaded secrets, for startup logging.
func (s Store) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	return keys
}

// Load reads every key file in dir into a Store. A missing directory
// is not an error; Load returns an empty Store. Dotfiles and
// subdirectories are ignored, and an unreadable or empty key file is
// skipped with a warning on stderr.
func Load(dir string) (Store, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return Store{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	store := Store{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		value, ok := readKeyFile(filepath.Join(dir, name))
		if ok {
			store[name] = value
		}
	}
	return store, nil
}

// readKeyFile returns the trimmed contents of a key file. Reports
// false for unreadable or blank files.
func readKeyFile(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", filepath.Base(path), err)
		return "", false
	}
	value := strings.TrimSpace(string(data))
	return value, value != ""
}
