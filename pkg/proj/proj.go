package proj

import (
	"errors"
	"regexp"
	"strconv"
)

// WKTType selects the WKT dialect used by AsWKT.
type WKTType int

const (
	WKT2_2015 WKTType = iota
	WKT2_2015_SIMPLIFIED
	WKT2_2019
	WKT2_2019_SIMPLIFIED
	WKT1_GDAL
	WKT1_ESRI
)

var wktTypeNames = map[WKTType]string{
	WKT2_2015:            "WKT2_2015",
	WKT2_2015_SIMPLIFIED: "WKT2_2015_SIMPLIFIED",
	WKT2_2019:            "WKT2_2019",
	WKT2_2019_SIMPLIFIED: "WKT2_2019_SIMPLIFIED",
	WKT1_GDAL:            "WKT1_GDAL",
	WKT1_ESRI:            "WKT1_ESRI",
}

func (t WKTType) String() string {
	if name, ok := wktTypeNames[t]; ok {
		return name
	}
	return "WKTType(" + strconv.Itoa(int(t)) + ")"
}

// WKTOptions tune AsWKT.
type WKTOptions struct {
	// MultiLine produces indented, multi-line output.
	MultiLine bool
	// OutputAxis forces the AXIS elements to be written. When false PROJ decides.
	OutputAxis bool
}

// LibInfo describes the PROJ library in use.
type LibInfo struct {
	Major      int    // Major version number.
	Minor      int    // Minor version number.
	Patch      int    // Patch level of release.
	Release    string // Release info, e.g. “Rel. 9.4.0, March 1st, 2024”.
	Version    string // Text representation of the full version number, e.g. “9.4.0”.
	Searchpath string // Search path for PROJ resource files. Empty for the projinfo backend.
}

var (
	ErrContextClosed    = errors.New("context is closed")
	ErrProjectionClosed = errors.New("projection is closed")
	ErrEmptyOutput      = errors.New("proj returned no output")
	ErrUnsupported      = errors.New("operation not supported by this proj backend")
)

var releasePattern = regexp.MustCompile(`Rel\. (\d+)\.(\d+)\.(\d+)[^\n]*`)

// parseRelease fills a LibInfo from a "Rel. X.Y.Z, date" banner.
func parseRelease(s string) (LibInfo, bool) {
	m := releasePattern.FindStringSubmatch(s)
	if m == nil {
		return LibInfo{}, false
	}
	major, _ := strconv.Atoi(m[1])
	minor, _ := strconv.Atoi(m[2])
	patch, _ := strconv.Atoi(m[3])
	return LibInfo{
		Major:   major,
		Minor:   minor,
		Patch:   patch,
		Release: m[0],
		Version: m[1] + "." + m[2] + "." + m[3],
	}, true
}
