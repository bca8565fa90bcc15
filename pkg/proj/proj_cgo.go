//go:build cgo_proj

package proj

/*
#cgo darwin pkg-config: proj
#cgo !darwin LDFLAGS: -lproj
#include <stdlib.h>
#include <proj.h>

static PJ *create_from_database(PJ_CONTEXT *ctx, const char *auth, const char *code) {
	return proj_create_from_database(ctx, auth, code, PJ_CATEGORY_CRS, 0, NULL);
}

static const char *as_wkt(PJ_CONTEXT *ctx, PJ *pj, PJ_WKT_TYPE type, int multiline, int output_axis) {
	const char *options[3];
	options[0] = multiline ? "MULTILINE=YES" : "MULTILINE=NO";
	options[1] = output_axis ? "OUTPUT_AXIS=YES" : "OUTPUT_AXIS=AUTO";
	options[2] = NULL;
	return proj_as_wkt(ctx, pj, type, options);
}

static const char *as_projjson(PJ_CONTEXT *ctx, PJ *pj, int multiline) {
	const char *options[2];
	options[0] = multiline ? "MULTILINE=YES" : "MULTILINE=NO";
	options[1] = NULL;
	return proj_as_projjson(ctx, pj, options);
}

static const char *as_proj_string(PJ_CONTEXT *ctx, PJ *pj) {
	return proj_as_proj_string(ctx, pj, PJ_PROJ_4, NULL);
}

static int set_database_path(PJ_CONTEXT *ctx, const char *path) {
	return proj_context_set_database_path(ctx, path, NULL, NULL);
}

static int is_projected(PJ *pj) {
	return proj_get_type(pj) == PJ_TYPE_PROJECTED_CRS;
}
*/
import "C"

import (
	"errors"
	"runtime"
	"unsafe"
)

// Context is a PROJ threading context. A Context and the PJ objects created
// from it must not be used from more than one goroutine at a time.
type Context struct {
	pj_context  *C.PJ_CONTEXT
	opened      bool
	counter     uint64
	projections map[uint64]*PJ
}

// PJ is a CRS object.
type PJ struct {
	pj      *C.PJ
	context *Context
	index   uint64
	opened  bool
}

// NewContext creates a context.
func NewContext() *Context {
	ctx := &Context{
		pj_context:  C.proj_context_create(),
		projections: make(map[uint64]*PJ),
		opened:      true,
	}
	runtime.SetFinalizer(ctx, (*Context).Close)
	return ctx
}

// SetDatabasePath makes the context resolve codes in the proj.db at path
// instead of the one found on PROJ's search path.
func (ctx *Context) SetDatabasePath(path string) error {
	if !ctx.opened {
		return ErrContextClosed
	}
	cp := C.CString(path)
	defer C.free(unsafe.Pointer(cp))
	if C.set_database_path(ctx.pj_context, cp) == 0 {
		return ctx.lastError()
	}
	return nil
}

// SupportsOutputAxis reports whether AsWKT honors WKTOptions.OutputAxis.
func SupportsOutputAxis() bool {
	return true
}

// Close destroys the context and every PJ still open on it.
func (ctx *Context) Close() {
	if !ctx.opened {
		return
	}
	for i, p := range ctx.projections {
		if p.opened {
			C.proj_destroy(p.pj)
			p.context = nil
			p.opened = false
		}
		delete(ctx.projections, i)
	}
	C.proj_context_destroy(ctx.pj_context)
	ctx.pj_context = nil
	ctx.opened = false
}

// Create builds an object from any definition PROJ understands: WKT,
// PROJJSON, "AUTH:CODE" or a PROJ string.
func (ctx *Context) Create(definition string) (*PJ, error) {
	if !ctx.opened {
		return nil, ErrContextClosed
	}
	cs := C.CString(definition)
	defer C.free(unsafe.Pointer(cs))
	return ctx.wrap(C.proj_create(ctx.pj_context, cs))
}

// CreateFromDatabase builds a CRS from its authority name and code.
func (ctx *Context) CreateFromDatabase(auth, code string) (*PJ, error) {
	if !ctx.opened {
		return nil, ErrContextClosed
	}
	ca := C.CString(auth)
	defer C.free(unsafe.Pointer(ca))
	cc := C.CString(code)
	defer C.free(unsafe.Pointer(cc))
	return ctx.wrap(C.create_from_database(ctx.pj_context, ca, cc))
}

func (ctx *Context) wrap(pj *C.PJ) (*PJ, error) {
	if pj == nil {
		return nil, ctx.lastError()
	}
	p := &PJ{
		pj:      pj,
		context: ctx,
		index:   ctx.counter,
		opened:  true,
	}
	ctx.projections[ctx.counter] = p
	ctx.counter++
	runtime.SetFinalizer(p, (*PJ).Close)
	return p, nil
}

func (ctx *Context) lastError() error {
	errno := C.proj_context_errno(ctx.pj_context)
	if errno == 0 {
		return ErrEmptyOutput
	}
	return errors.New(C.GoString(C.proj_errno_string(errno)))
}

// Close destroys the object.
func (p *PJ) Close() {
	if !p.opened {
		return
	}
	C.proj_destroy(p.pj)
	if p.context.opened {
		delete(p.context.projections, p.index)
	}
	p.context = nil
	p.opened = false
}

// IsProjected reports whether the object is a projected CRS.
func (p *PJ) IsProjected() bool {
	if !p.opened {
		return false
	}
	return C.is_projected(p.pj) != 0
}

// AsWKT exports the object as WKT of the given dialect.
func (p *PJ) AsWKT(version WKTType, opts WKTOptions) (string, error) {
	if !p.opened {
		return "", ErrProjectionClosed
	}
	var wktType C.PJ_WKT_TYPE
	switch version {
	case WKT2_2015:
		wktType = C.PJ_WKT2_2015
	case WKT2_2015_SIMPLIFIED:
		wktType = C.PJ_WKT2_2015_SIMPLIFIED
	case WKT2_2019:
		wktType = C.PJ_WKT2_2019
	case WKT2_2019_SIMPLIFIED:
		wktType = C.PJ_WKT2_2019_SIMPLIFIED
	case WKT1_GDAL:
		wktType = C.PJ_WKT1_GDAL
	case WKT1_ESRI:
		wktType = C.PJ_WKT1_ESRI
	default:
		return "", ErrUnsupported
	}
	return p.result(C.as_wkt(p.context.pj_context, p.pj, wktType, cBool(opts.MultiLine), cBool(opts.OutputAxis)))
}

// AsPROJJSON exports the object as PROJJSON.
func (p *PJ) AsPROJJSON(multiline bool) (string, error) {
	if !p.opened {
		return "", ErrProjectionClosed
	}
	return p.result(C.as_projjson(p.context.pj_context, p.pj, cBool(multiline)))
}

// AsProjString exports the object as a PROJ.4 style string.
func (p *PJ) AsProjString() (string, error) {
	if !p.opened {
		return "", ErrProjectionClosed
	}
	return p.result(C.as_proj_string(p.context.pj_context, p.pj))
}

// result copies a string owned by the PJ object. A NULL result is an export failure.
func (p *PJ) result(s *C.char) (string, error) {
	if s == nil {
		return "", p.context.lastError()
	}
	return C.GoString(s), nil
}

func cBool(b bool) C.int {
	if b {
		return 1
	}
	return 0
}

// Info returns information about the PROJ library linked in.
func Info() LibInfo {
	info := C.proj_info()
	return LibInfo{
		Major:      int(info.major),
		Minor:      int(info.minor),
		Patch:      int(info.patch),
		Release:    C.GoString(info.release),
		Version:    C.GoString(info.version),
		Searchpath: C.GoString(info.searchpath),
	}
}
