package badger

import (
	"encoding/binary"

	"github.com/go-crypt/x/blake2b"
)

// Key prefixes for different data types
const (
	manifestPrefix = "txman:"
	entryPrefix    = "txent:"
)

// collectionHash derives a fixed-width key component from a collection name
// using BLAKE2b, so names of any length or content can't bleed into each
// other's key ranges.
func collectionHash(name string) []byte {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(name))
	return h.Sum(nil)
}

// makeManifestKey generates the key holding a collection's manifest.
// Format: prefix + hash
func makeManifestKey(name string) []byte {
	hash := collectionHash(name)
	buf := make([]byte, 0, len(manifestPrefix)+len(hash))
	buf = append(buf, manifestPrefix...)
	return append(buf, hash...)
}

// makeEntryPrefix generates the prefix shared by every entry of a collection.
// Format: prefix + hash + ':'
func makeEntryPrefix(name string) []byte {
	hash := collectionHash(name)
	buf := make([]byte, 0, len(entryPrefix)+len(hash)+1)
	buf = append(buf, entryPrefix...)
	buf = append(buf, hash...)
	return append(buf, ':')
}

// makeEntryKey generates the key for one entry of a collection.
// Format: prefix + hash + ':' + id
func makeEntryKey(name, id string) []byte {
	return append(makeEntryPrefix(name), id...)
}

// hashString renders a collection hash for log output.
func hashString(name string) uint64 {
	return binary.BigEndian.Uint64(collectionHash(name))
}
