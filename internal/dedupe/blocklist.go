// Copyright International Livestock Research Institute, 2026.

package dedupe

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ilri/bibmerge/pkg/types"
)

// LoadBlocklist reads the optional DOI and URL blocklist CSVs. Either
// path may be empty, meaning no blocklist of that kind. Entries are
// curated by hand as miscataloged items turn up in review: preprints
// filed as articles, book chapters with journal DOIs.
func LoadBlocklist(doiPath, urlPath string) (Blocklist, error) {
	b := Blocklist{
		DOIs: make(map[string]bool),
		URLs: make(map[string]bool),
	}

	if doiPath != "" {
		if err := loadColumn(doiPath, "doi", func(v string) {
			if doi := types.NormalizeDOI(v); doi != "" {
				b.DOIs[doi] = true
			}
		}); err != nil {
			return Blocklist{}, err
		}
	}
	if urlPath != "" {
		if err := loadColumn(urlPath, "url", func(v string) {
			b.URLs[strings.TrimSpace(v)] = true
		}); err != nil {
			return Blocklist{}, err
		}
	}
	return b, nil
}

// loadColumn reads one named column from a headed CSV and passes each
// non-empty value to add.
func loadColumn(path, column string, add func(string)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening blocklist: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("reading blocklist header in %s: %w", path, err)
	}

	idx := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), column) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("blocklist %s has no %q column", path, column)
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading blocklist %s: %w", path, err)
		}
		if idx < len(row) && strings.TrimSpace(row[idx]) != "" {
			add(row[idx])
		}
	}
}
