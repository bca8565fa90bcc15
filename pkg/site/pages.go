package site

import (
	"html/template"

	"github.com/CTAG07/crsexplorer/pkg/crsdb"
)

// SiteInfo is shown in the footer of every page.
type SiteInfo struct {
	Version     string
	ProjVersion string
	EPSGVersion string
	Total       int
}

// AuthoritySummary is a row of the root index.
type AuthoritySummary struct {
	Name       string
	Count      int
	Deprecated int
}

// IndexPage is the data of index.tmpl.html.
type IndexPage struct {
	Title       string
	Site        SiteInfo
	Authorities []AuthoritySummary
}

// AuthorityPage is the data of authority.tmpl.html. Page is 1-based.
type AuthorityPage struct {
	Title     string
	Site      SiteInfo
	Authority string
	Total     int
	Page      int
	Pages     int
	Records   []crsdb.Record
}

// RenderedRepresentation is one exported representation on a CRS page.
// HTML is empty when Failed is set; Text then holds the placeholder.
type RenderedRepresentation struct {
	ID     string
	Label  string
	File   string
	Failed bool
	Text   string
	HTML   template.HTML
}

// CRSPage is the data of crs.tmpl.html.
type CRSPage struct {
	Title           string
	Site            SiteInfo
	Record          crsdb.Record
	Representations []RenderedRepresentation
}
