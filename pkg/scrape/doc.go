/*
Package scrape downloads CRS definitions that are not part of proj.db from
spatialreference.org.

For each configured authority (IAU2000 and SR-ORG by default) the paginated
list at /ref/{authority}/?page=N is read until a page lists no entries, and the
OGC WKT of every entry is fetched from /ref/{authority}/{code}/ogcwkt/. The
result is a list of crsdb.Record values with OGCWKT set, which FetchAll stores
as {authority}.json for the generate command to merge with the database.
*/
package scrape
