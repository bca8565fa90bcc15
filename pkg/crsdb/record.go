package crsdb

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Type is the kind of a coordinate reference system, spelled the way PROJ's
// PJ_TYPE enumeration names it.
type Type string

const (
	TypeGeographic2D Type = "GEOGRAPHIC_2D_CRS"
	TypeGeographic3D Type = "GEOGRAPHIC_3D_CRS"
	TypeGeocentric   Type = "GEOCENTRIC_CRS"
	TypeGeodetic     Type = "GEODETIC_CRS"
	TypeProjected    Type = "PROJECTED_CRS"
	TypeVertical     Type = "VERTICAL_CRS"
	TypeCompound     Type = "COMPOUND_CRS"
	TypeEngineering  Type = "ENGINEERING_CRS"
	TypeOther        Type = "OTHER_CRS"
)

// codeWidth is the width codes are zero-padded to when building sort keys.
const codeWidth = 7

// AreaOfUse is the geographic bounding box, in degrees, in which a CRS is valid.
type AreaOfUse struct {
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	North float64 `json:"north"`
	Name  string  `json:"name"`
}

// Bounds returns the box as [west, south, east, north].
func (a AreaOfUse) Bounds() [4]float64 {
	return [4]float64{a.West, a.South, a.East, a.North}
}

// Record is a single entry of the CRS list.
type Record struct {
	AuthName             string     `json:"auth_name"`
	Code                 string     `json:"code"`
	Name                 string     `json:"name"`
	Type                 Type       `json:"type,omitempty"`
	Deprecated           bool       `json:"deprecated"`
	AreaOfUse            *AreaOfUse `json:"area_of_use"`
	ProjectionMethodName string     `json:"projection_method_name,omitempty"`

	// OGCWKT holds the definition of records that do not come from proj.db.
	OGCWKT string `json:"ogcwkt,omitempty"`
}

// Key returns "AUTH:CODE".
func (r Record) Key() string {
	return r.AuthName + ":" + r.Code
}

// SortKey returns the authority name followed by the code left-padded with
// zeros, so that numeric codes of one authority sort numerically.
func (r Record) SortKey() string {
	code := r.Code
	if len(code) < codeWidth {
		code = strings.Repeat("0", codeWidth-len(code)) + code
	}
	return r.AuthName + code
}

// Sort orders records by SortKey. The sort is stable, so duplicated keys keep
// the order in which the database returned them.
func Sort(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].SortKey() < records[j].SortKey()
	})
}

// FilterWithArea returns the records that have an area of use.
func FilterWithArea(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.AreaOfUse != nil {
			out = append(out, r)
		}
	}
	return out
}

// Duplicates returns every key that occurs more than once, in the order the
// second occurrence is found. Each key is reported once.
func Duplicates(records []Record) []string {
	seen := make(map[string]int, len(records))
	var dups []string
	for _, r := range records {
		k := r.Key()
		seen[k]++
		if seen[k] == 2 {
			dups = append(dups, k)
		}
	}
	return dups
}

// GroupByAuthority splits an already sorted list by authority, preserving
// order within each group. The returned names are in first-seen order.
func GroupByAuthority(records []Record) ([]string, map[string][]Record) {
	var names []string
	groups := make(map[string][]Record)
	for _, r := range records {
		if _, ok := groups[r.AuthName]; !ok {
			names = append(names, r.AuthName)
		}
		groups[r.AuthName] = append(groups[r.AuthName], r)
	}
	return names, groups
}

// WriteJSON encodes the list with a two-space indent.
func WriteJSON(w io.Writer, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(records)
}

// ReadJSON decodes a list previously written by WriteJSON or by the fetcher.
func ReadJSON(r io.Reader) ([]Record, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode crs list: %w", err)
	}
	return records, nil
}

// ReadJSONFile is ReadJSON on the file at path.
func ReadJSONFile(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func(file *os.File) {
		_ = file.Close()
	}(file)
	records, err := ReadJSON(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}
