package coldata

import "fmt"

// This value is automatically updated by Release Please during the release process.
const libraryVersion = "v0.4.1"

// Version returns the library version.
func Version() string {
	return libraryVersion
}

// VersionNumber returns the library version packed as a 32 bit number.
func VersionNumber() uint32 {
	return getLibraryVersion(libraryVersion)
}

// getLibraryVersion packs the version the way TDS prelogin carries it:
// major in the top byte, minor in the next, revision in the low 16 bits.
func getLibraryVersion(ver string) uint32 {
	var majorVersion uint32
	var minorVersion uint32
	var rev uint32
	_, _ = fmt.Sscanf(ver, "v%d.%d.%d", &majorVersion, &minorVersion, &rev)
	return (majorVersion << 24) | (minorVersion << 16) | rev
}
