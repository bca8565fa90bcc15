package highlight

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

const numberPattern = `[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`

// WKT lexes Well-Known Text, both WKT1 and WKT2. Element keywords are the
// identifiers directly followed by an opening bracket; bare identifiers are
// enumeration values such as axis directions.
var WKT = lexers.Register(chroma.MustNewLexer(
	&chroma.Config{
		Name:      "WKT",
		Aliases:   []string{"wkt", "wkt1", "wkt2"},
		Filenames: []string{"*.wkt", "*.prj"},
		MimeTypes: []string{"text/x-wkt"},
	},
	func() chroma.Rules {
		return chroma.Rules{
			"root": {
				{Pattern: `\s+`, Type: chroma.TextWhitespace},
				{Pattern: `"(?:[^"]|"")*"`, Type: chroma.LiteralStringDouble},
				{Pattern: `[A-Za-z_][A-Za-z0-9_]*(?=\s*[\[(])`, Type: chroma.Keyword},
				{Pattern: `[A-Za-z_][A-Za-z0-9_]*`, Type: chroma.NameConstant},
				{Pattern: numberPattern, Type: chroma.LiteralNumber},
				{Pattern: `[\[\](),]`, Type: chroma.Punctuation},
				{Pattern: `.`, Type: chroma.Text},
			},
		}
	},
))

// PROJ lexes PROJ strings such as "+proj=utm +zone=31 +datum=WGS84".
var PROJ = lexers.Register(chroma.MustNewLexer(
	&chroma.Config{
		Name:    "PROJ",
		Aliases: []string{"proj", "proj4"},
	},
	func() chroma.Rules {
		return chroma.Rules{
			"root": {
				{Pattern: `\s+`, Type: chroma.TextWhitespace},
				{Pattern: `\+[A-Za-z_][A-Za-z0-9_]*`, Type: chroma.NameAttribute},
				{Pattern: `=`, Type: chroma.Operator},
				{Pattern: numberPattern, Type: chroma.LiteralNumber},
				{Pattern: `,`, Type: chroma.Punctuation},
				{Pattern: `[^\s=,+]+`, Type: chroma.LiteralString},
				{Pattern: `.`, Type: chroma.Text},
			},
		}
	},
))
