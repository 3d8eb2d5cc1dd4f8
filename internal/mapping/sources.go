// Copyright International Livestock Research Institute, 2026.

package mapping

import "github.com/ilri/bibmerge/pkg/types"

// ColumnMap names the native CSV columns that feed each canonical
// field. List-valued entries (Authors, Affiliations, Subjects) may name
// several columns whose values are concatenated; WorldFish and CIFOR
// keep AGROVOC and local keyword vocabularies in separate columns, and
// IRRI splits the first author from the rest.
type ColumnMap struct {
	Title        string
	Authors      []string
	Affiliations []string
	Abstract     string
	Funders      string
	DOI          string
	Type         string
	AccessRights string
	License      string
	Link         string
	Date         string
	DateOnline   string
	Journal      string
	ISSN         string
	Volume       string
	Issue        string
	Pages        string
	Publisher    string
	Subjects     []string
	Countries    string
}

// dspaceFriendly is the column layout shared by the harvesters that
// already emit CGSpace-style headers (CGSpace, MELSpace, ICRISAT,
// CIMMYT, and IFPRI modulo its extra Type column).
var dspaceFriendly = ColumnMap{
	Title:        "Title",
	Authors:      []string{"Authors"},
	Affiliations: []string{"Author affiliations"},
	Abstract:     "Abstract",
	Funders:      "Funders",
	DOI:          "DOI",
	AccessRights: "Access rights",
	License:      "Usage rights",
	Link:         "Repository link",
	Date:         "Publication date",
	DateOnline:   "Publication date (Online)",
	Journal:      "Journal",
	ISSN:         "ISSN",
	Volume:       "Volume",
	Issue:        "Issue",
	Pages:        "Pages",
	Publisher:    "Publisher",
	Subjects:     []string{"Subjects"},
	Countries:    "Countries",
}

// SourceMappings is the static field-mapping table, one ColumnMap per
// repository. Maintained by hand against each repository's export
// format; a new source means a new entry here and nothing else.
var SourceMappings = map[types.SourceID]ColumnMap{
	types.SourceCGSpace:  dspaceFriendly,
	types.SourceMELSpace: dspaceFriendly,
	types.SourceICRISAT:  dspaceFriendly,
	types.SourceCIMMYT:   dspaceFriendly,

	types.SourceIFPRI: {
		Title:        "Title",
		Authors:      []string{"Authors"},
		Abstract:     "Abstract",
		Funders:      "Funders",
		DOI:          "DOI",
		Type:         "Type",
		AccessRights: "Access rights",
		License:      "Usage rights",
		Link:         "Repository link",
		Date:         "Publication date",
		Journal:      "Journal",
		ISSN:         "ISSN",
		Pages:        "Pages",
		Publisher:    "Publisher",
		Subjects:     []string{"Subjects"},
	},

	types.SourceWorldFish: {
		Title:        "dc.title",
		Authors:      []string{"dc.creator"},
		Affiliations: []string{"cg.contributor.affiliation"},
		Abstract:     "dc.description.abstract",
		Funders:      "cg.contributor.funder",
		DOI:          "dc.identifier.doi",
		AccessRights: "cg.identifier.status",
		License:      "dc.rights",
		Link:         "dc.identifier.uri",
		Date:         "dc.date.issued",
		Journal:      "dc.source",
		ISSN:         "dc.identifier.issn",
		Publisher:    "dc.publisher",
		Subjects:     []string{"dc.subject", "cg.subject.agrovoc"},
		Countries:    "cg.coverage.country",
	},

	types.SourceCIFOR: {
		Title:        "dc.title",
		Authors:      []string{"dc.contributor.author"},
		Affiliations: []string{"cg.contributor.affiliation", "cg.contributor.center"},
		Abstract:     "dc.description.abstract",
		Funders:      "cg.contributor.donor",
		DOI:          "dc.identifier.doi",
		AccessRights: "cifor.type.oa",
		License:      "dc.rights",
		Link:         "dc.identifier.uri",
		Date:         "dc.date.issued",
		Journal:      "cifor.source.title",
		ISSN:         "dc.identifier.issn",
		Volume:       "cifor.source.volume",
		Issue:        "cifor.source.numbers",
		Pages:        "cifor.source.page",
		Publisher:    "dc.publisher",
		Subjects:     []string{"dc.subject", "cg.subject.cifor"},
		Countries:    "cg.coverage.country",
	},

	types.SourceIRRI: {
		Title:     "title",
		Authors:   []string{"first author", "other authors"},
		Abstract:  "abstract",
		DOI:       "doi",
		Date:      "date issued",
		Journal:   "journal",
		ISSN:      "issn",
		Pages:     "extent",
		Publisher: "publisher",
		Subjects:  []string{"subjects"},
	},
}
