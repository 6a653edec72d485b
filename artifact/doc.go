// Package artifact persists generated payloads to local files.
//
// Every generation path converges on Writer.Write. Local writes the full
// payload to a temporary file in the destination directory, syncs it, and
// renames it over the destination, so a failed write never leaves a
// partial file behind and a successful write fully replaces any previous
// contents.
package artifact
