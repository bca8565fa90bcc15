package templating

import (
	"strconv"
	"strings"
)

// Paths are relative to the site root and are joined to baseURL in templates.

// authPath returns the directory of an authority's index, e.g. "ref/epsg/".
func authPath(auth string) string {
	return "ref/" + PathSegment(strings.ToLower(auth)) + "/"
}

// crsPath returns the directory of a CRS page, e.g. "ref/epsg/4326/".
func crsPath(auth, code string) string {
	return authPath(auth) + PathSegment(code) + "/"
}

// pagePath returns the directory of page n of an authority index. Page 1 is
// the authority directory itself.
func pagePath(auth string, n int) string {
	if n <= 1 {
		return authPath(auth)
	}
	return authPath(auth) + "page/" + strconv.Itoa(n) + "/"
}

// textPath returns the path of a plain-text representation, e.g. "wkt1/EPSG/4326.txt".
func textPath(kind, auth, code string) string {
	return kind + "/" + PathSegment(auth) + "/" + PathSegment(code) + ".txt"
}

// unsafePathChars are replaced by PathSegment. base.js mirrors this set.
const unsafePathChars = "/\\:?#%"

// PathSegment makes s safe to use as a single path element.
func PathSegment(s string) string {
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(unsafePathChars, r) {
			return '_'
		}
		return r
	}, s)
	if s == "" || s == "." || s == ".." {
		return "_"
	}
	return s
}

// CRSPath is crsPath for callers outside templates.
func CRSPath(auth, code string) string { return crsPath(auth, code) }

// AuthPath is authPath for callers outside templates.
func AuthPath(auth string) string { return authPath(auth) }

// PagePath is pagePath for callers outside templates.
func PagePath(auth string, n int) string { return pagePath(auth, n) }

// TextPath is textPath for callers outside templates.
func TextPath(kind, auth, code string) string { return textPath(kind, auth, code) }
