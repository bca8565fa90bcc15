//go:build !cgo_proj

package proj

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// DefaultCommand is the projinfo executable used by new contexts. It can be
// overridden with the PROJINFO environment variable.
var DefaultCommand = "projinfo"

// runFunc executes command with args and returns its standard output and error.
type runFunc func(command string, args ...string) (stdout, stderr []byte, err error)

func runCommand(command string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.Command(command, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Context runs projinfo for every export. It is safe to use from one
// goroutine at a time, like its cgo counterpart.
type Context struct {
	command string
	dbPath  string
	run     runFunc
	opened  bool
}

// PJ is a CRS object identified by the definition handed to projinfo.
type PJ struct {
	context    *Context
	definition string
	opened     bool
	projected  *bool
}

// NewContext creates a context using DefaultCommand, or $PROJINFO when set.
func NewContext() *Context {
	command := DefaultCommand
	if env := os.Getenv("PROJINFO"); env != "" {
		command = env
	}
	return &Context{
		command: command,
		run:     runCommand,
		opened:  true,
	}
}

// SetCommand changes the projinfo executable used by the context.
func (ctx *Context) SetCommand(command string) {
	ctx.command = command
}

// SetDatabasePath makes projinfo resolve codes in the proj.db at path
// instead of its default database.
func (ctx *Context) SetDatabasePath(path string) error {
	if !ctx.opened {
		return ErrContextClosed
	}
	ctx.dbPath = path
	return nil
}

// SupportsOutputAxis reports whether AsWKT honors WKTOptions.OutputAxis.
// projinfo has no option for it.
func SupportsOutputAxis() bool {
	return false
}

// Close marks the context closed.
func (ctx *Context) Close() {
	ctx.opened = false
}

// Create builds an object from any definition projinfo accepts: WKT,
// PROJJSON, "AUTH:CODE" or a PROJ string. The definition is only checked
// when the object is exported.
func (ctx *Context) Create(definition string) (*PJ, error) {
	if !ctx.opened {
		return nil, ErrContextClosed
	}
	if strings.TrimSpace(definition) == "" {
		return nil, errors.New("empty definition")
	}
	return &PJ{context: ctx, definition: definition, opened: true}, nil
}

// CreateFromDatabase builds a CRS from its authority name and code.
func (ctx *Context) CreateFromDatabase(auth, code string) (*PJ, error) {
	return ctx.Create(auth + ":" + code)
}

// Close marks the object closed.
func (p *PJ) Close() {
	p.opened = false
	p.context = nil
}

// IsProjected reports whether the object is a projected CRS. The answer is
// derived from a WKT2 export and cached.
func (p *PJ) IsProjected() bool {
	if p.projected != nil {
		return *p.projected
	}
	wkt, err := p.AsWKT(WKT2_2019, WKTOptions{})
	projected := err == nil && strings.HasPrefix(strings.TrimSpace(wkt), "PROJCRS")
	p.projected = &projected
	return projected
}

var projinfoFormats = map[WKTType]string{
	WKT2_2015: "WKT2:2015",
	WKT2_2019: "WKT2:2019",
	WKT1_GDAL: "WKT1:GDAL",
	WKT1_ESRI: "WKT1:ESRI",
}

// AsWKT exports the object as WKT of the given dialect. projinfo decides on
// AXIS output by itself, so opts.OutputAxis has no effect with this backend.
func (p *PJ) AsWKT(version WKTType, opts WKTOptions) (string, error) {
	format, ok := projinfoFormats[version]
	if !ok {
		return "", fmt.Errorf("%s: %w", version, ErrUnsupported)
	}
	args := []string{"-o", format, "-q"}
	if !opts.MultiLine {
		args = append(args, "--single-line")
	}
	return p.export(args)
}

// AsPROJJSON exports the object as PROJJSON.
func (p *PJ) AsPROJJSON(multiline bool) (string, error) {
	args := []string{"-o", "PROJJSON", "-q"}
	if !multiline {
		args = append(args, "--single-line")
	}
	return p.export(args)
}

// AsProjString exports the object as a PROJ.4 style string.
func (p *PJ) AsProjString() (string, error) {
	return p.export([]string{"-o", "PROJ", "-q"})
}

func (p *PJ) export(args []string) (string, error) {
	if !p.opened {
		return "", ErrProjectionClosed
	}
	if !p.context.opened {
		return "", ErrContextClosed
	}
	if p.context.dbPath != "" {
		args = append(args, "--main-db-path", p.context.dbPath)
	}
	args = append(args, p.definition)
	stdout, stderr, err := p.context.run(p.context.command, args...)
	msg := strings.TrimSpace(string(stderr))
	if err != nil {
		if msg != "" {
			return "", fmt.Errorf("%s: %w: %s", p.context.command, err, msg)
		}
		return "", fmt.Errorf("%s: %w", p.context.command, err)
	}
	out := strings.TrimRight(string(stdout), "\r\n")
	if strings.HasPrefix(out, "Error") {
		return "", errors.New(out)
	}
	if strings.TrimSpace(out) == "" {
		if msg != "" {
			return "", errors.New(msg)
		}
		return "", ErrEmptyOutput
	}
	return out, nil
}

// Info returns information about the PROJ installation behind DefaultCommand.
// A zero LibInfo is returned when the version cannot be determined.
func Info() LibInfo {
	ctx := NewContext()
	defer ctx.Close()
	return ctx.info()
}

func (ctx *Context) info() LibInfo {
	// projinfo prints its release banner for --version; older releases print
	// it as part of the usage text, with a non-zero exit code.
	stdout, stderr, _ := ctx.run(ctx.command, "--version")
	if info, ok := parseRelease(string(stdout) + "\n" + string(stderr)); ok {
		return info
	}
	return LibInfo{}
}
