// Package logtail reads the tail of the queuecall log file and renders its
// JSON entries as single display lines for the diagnostics view.
//
// Read keeps a ring buffer of maxLines entries, so memory stays bounded by
// the requested tail rather than the file size. A missing file is not an
// error; the view simply shows nothing until the logger creates it.
package logtail
