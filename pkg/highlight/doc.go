// Package highlight renders CRS representations as syntax-highlighted HTML
// using chroma. It adds lexers for WKT and PROJ strings; PROJJSON goes
// through chroma's own JSON lexer.
package highlight
