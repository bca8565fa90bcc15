/*
Package proj exposes the part of the PROJ library [cartography] that the site
generator needs: building CRS objects from the database or from a definition,
and exporting them as WKT, PROJJSON or PROJ strings.

See: https://proj.org/

Two backends share one API. Building with the cgo_proj tag links against
libproj through cgo. The default backend runs the projinfo utility shipped
with PROJ, which keeps the module free of a C toolchain requirement.
*/
package proj
