/*
Package site generates the static CRS site.

A Generator takes the CRS list, sorts it, reports duplicated codes and writes
the following tree under its destination directory:

	crslist.json                  the sorted list
	base.js, base.css             static assets
	highlight.css                 stylesheet for highlighted representations
	{repr}/{AUTH}/{CODE}.txt      wkt1, wkt2, projjson and proj4 text
	ref/{auth}/{code}/index.html  one page per CRS
	ref/{auth}/index.html         authority index, page 1
	ref/{auth}/page/{n}/index.html
	index.html                    list of authorities
	sitemap.txt                   every page and text file

Exports that fail are replaced by a placeholder text and counted in the
Report; they never abort the run. Filesystem and template errors do.
*/
package site
