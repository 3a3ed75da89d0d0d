// Package fadvise wraps posix_fadvise(WILLNEED) as a best-effort
// read-ahead hint for the V2 block-compressed reader: once a block has
// been decompressed, the reader advises the OS that the next block's
// bytes will be needed soon (spec §4.6 step 2). The call is advisory
// only; a failure is never surfaced to the caller.
package fadvise

// WillNeed hints that the byte range [offset, offset+length) of the file
// behind fd will be read soon. No-op on platforms without the facility.
func WillNeed(fd uintptr, offset, length int64) {
	willNeed(fd, offset, length)
}
