package site

import (
	"fmt"

	"github.com/CTAG07/crsexplorer/pkg/crsdb"
	"github.com/CTAG07/crsexplorer/pkg/proj"
)

// Exporter produces the text of one representation of a CRS. An Exporter is
// used by a single goroutine at a time.
type Exporter interface {
	Export(r crsdb.Record, rep Representation) (string, error)
	Close()
}

// ProjExporter exports through PROJ. Records carrying an OGC WKT definition
// are built from it; all others are looked up in the PROJ database.
type ProjExporter struct {
	ctx *proj.Context
}

// NewProjExporter creates an exporter with its own PROJ context. A non-empty
// dbPath makes PROJ look codes up in that proj.db, which should be the one the
// CRS list was read from.
func NewProjExporter(dbPath string) (Exporter, error) {
	ctx := proj.NewContext()
	if dbPath != "" {
		if err := ctx.SetDatabasePath(dbPath); err != nil {
			ctx.Close()
			return nil, fmt.Errorf("failed to use %s: %w", dbPath, err)
		}
	}
	return &ProjExporter{ctx: ctx}, nil
}

// Close releases the PROJ context.
func (e *ProjExporter) Close() {
	e.ctx.Close()
}

// Export implements Exporter. WKT1 output of projected CRSs carries AXIS
// elements when the PROJ backend can force them.
func (e *ProjExporter) Export(r crsdb.Record, rep Representation) (string, error) {
	var (
		pj  *proj.PJ
		err error
	)
	if r.OGCWKT != "" {
		pj, err = e.ctx.Create(r.OGCWKT)
	} else {
		pj, err = e.ctx.CreateFromDatabase(r.AuthName, r.Code)
	}
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", r.Key(), err)
	}
	defer pj.Close()

	switch rep {
	case WKT1:
		opts := proj.WKTOptions{MultiLine: true}
		if proj.SupportsOutputAxis() {
			opts.OutputAxis = pj.IsProjected()
		}
		return pj.AsWKT(proj.WKT1_GDAL, opts)
	case WKT2:
		return pj.AsWKT(proj.WKT2_2019, proj.WKTOptions{MultiLine: true})
	case PROJJSON:
		return pj.AsPROJJSON(true)
	case PROJ4:
		return pj.AsProjString()
	}
	return "", fmt.Errorf("unknown representation %q", rep)
}
