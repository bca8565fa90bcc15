/*
Package templating renders the pages of the generated site with html/template.

Default page templates and static assets are embedded in the binary. A
template directory can be supplied to override any of them: files named
*.tmpl.html are full pages, files named *.part.html hold shared partials, and
a file with the same name as an embedded one replaces it.

The function map adds arithmetic and logic helpers for pagination, formatting
helpers for CRS metadata, and site-wide values taken from TemplateConfig.
The embedded templates use only part of it; add, sub, and, not, isSet, list,
padCode, textPath, upper, lower and join are there for override templates.
*/
package templating
