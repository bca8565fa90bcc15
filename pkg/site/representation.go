package site

import (
	"fmt"

	"github.com/CTAG07/crsexplorer/pkg/crsdb"
)

// Representation is a text encoding of a CRS. Its value is also the
// directory its files are written to.
type Representation string

const (
	WKT1     Representation = "wkt1"
	WKT2     Representation = "wkt2"
	PROJJSON Representation = "projjson"
	PROJ4    Representation = "proj4"
)

// AllRepresentations lists every representation in page order.
var AllRepresentations = []Representation{WKT2, WKT1, PROJJSON, PROJ4}

// Label is the heading shown on CRS pages.
func (r Representation) Label() string {
	switch r {
	case WKT1:
		return "WKT1 (GDAL)"
	case WKT2:
		return "WKT2 (2019)"
	case PROJJSON:
		return "PROJJSON"
	case PROJ4:
		return "PROJ string"
	}
	return string(r)
}

// Version names the export format in placeholder texts.
func (r Representation) Version() string {
	switch r {
	case WKT1:
		return "WKT1_GDAL"
	case WKT2:
		return "WKT2_2019"
	case PROJJSON:
		return "PROJJSON"
	case PROJ4:
		return "PROJ4"
	}
	return string(r)
}

// Lang is the highlighter language of the representation.
func (r Representation) Lang() string {
	switch r {
	case WKT1, WKT2:
		return "wkt"
	case PROJJSON:
		return "json"
	case PROJ4:
		return "proj"
	}
	return "text"
}

// ParseRepresentation returns the representation named s.
func ParseRepresentation(s string) (Representation, error) {
	for _, r := range AllRepresentations {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown representation %q", s)
}

// Placeholder is the text written instead of a representation that could
// not be exported.
func Placeholder(r crsdb.Record, rep Representation) string {
	return fmt.Sprintf("Error: %s:%s cannot be written as %s\n type: %s\n name: %s",
		r.AuthName, r.Code, rep.Version(), r.Type, r.Name)
}
