/*
Package crsdb provides read-only access to the coordinate reference system
catalogue stored in PROJ's SQLite database (proj.db), together with the flat
record list that the site generator consumes.

A Database discovers which CRS tables exist in the file it is given, so it
works against both current and older database layouts. Records are returned
one per CRS usage, which means a CRS with several areas of use appears more
than once; Duplicates reports those keys without removing them.
*/
package crsdb
