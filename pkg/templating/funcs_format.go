package templating

import (
	"html/template"
	"strconv"
	"strings"

	"github.com/CTAG07/crsexplorer/pkg/crsdb"
)

// padCode left-pads a code with zeros to width.
func padCode(code string, width int) string {
	if len(code) >= width {
		return code
	}
	return strings.Repeat("0", width-len(code)) + code
}

// coord formats a coordinate in degrees with the shortest exact representation.
func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// bbox formats an area of use as "west, south, east, north".
func bbox(area *crsdb.AreaOfUse) string {
	if area == nil {
		return ""
	}
	return coord(area.West) + ", " + coord(area.South) + ", " + coord(area.East) + ", " + coord(area.North)
}

// jsonArray renders an area of use as a JavaScript array literal for base.js.
func jsonArray(area *crsdb.AreaOfUse) template.JS {
	if area == nil {
		return "null"
	}
	return template.JS("[" + bbox(area) + "]")
}

// typeLabel turns PROJECTED_CRS into "Projected CRS".
func typeLabel(t crsdb.Type) string {
	if t == "" {
		return "Unknown"
	}
	words := strings.Split(string(t), "_")
	for i, w := range words {
		if w == "" || w == "CRS" || strings.ContainsAny(w, "0123456789") {
			continue
		}
		words[i] = w[:1] + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
