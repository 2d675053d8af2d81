// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/minio/highwayhash"

	"github.com/gemaraproj/reqcite-mcp/internal/annotation"
)

// Cache stores the annotation set produced for one unit.
type Cache interface {
	Get(key string) (*annotation.Set, bool)
	Set(key string, value *annotation.Set)
	Delete(key string)
	Clear()
}

var hashKey = []byte("reqcite-annotation-cache-key-v1!")

// Key derives a cache key from the unit kind, its path and the file content,
// so an edited file never hits a stale entry.
func Key(kind, path string, content []byte) string {
	// New64 only fails for keys that are not 32 bytes long.
	h, _ := highwayhash.New64(hashKey)
	_, _ = h.Write(content)
	var sum [8]byte
	binary.BigEndian.PutUint64(sum[:], h.Sum64())
	return "reqcite:v1:" + kind + ":" + path + ":" + hex.EncodeToString(sum[:])
}
