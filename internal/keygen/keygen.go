// Package keygen derives primary and foreign key values from symbolic record
// names. The same name always yields the same key, so a record can reference
// another one by name before the referenced row exists.
package keygen

import (
	"hash/fnv"
	"math"
	"strings"

	"github.com/google/uuid"

	"fixie/internal/core"
)

// MaxKey is the largest generated integer key. Keys stay within a signed
// 32-bit INT so they fit the most common primary key column type.
const MaxKey = math.MaxInt32

// namespace scopes name-based UUIDs so they do not collide with other v5 UUIDs
// derived from the same names.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://fixie.dev/keys"))

// Generate returns the integer key for name, in [1, MaxKey].
func Generate(name string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return int64(h.Sum64()%uint64(MaxKey)) + 1
}

// UUID returns the name-based (SHA-1, version 5) UUID for name.
func UUID(name string) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte(name))
}

// Kind is the shape of key a column expects.
type Kind int

const (
	KindInteger Kind = iota
	KindUUIDText
	KindUUIDBinary
)

// KindOf classifies a SQL column type.
func KindOf(columnType string) Kind {
	t := strings.ToLower(strings.Join(strings.Fields(columnType), ""))
	switch t {
	case "uuid", "uniqueidentifier", "char(36)", "varchar(36)", "character(36)", "charactervarying(36)":
		return KindUUIDText
	case "binary(16)", "varbinary(16)":
		return KindUUIDBinary
	default:
		return KindInteger
	}
}

// ForColumn returns the key for name shaped for col: a UUID string for UUID
// and 36-character columns, 16 UUID bytes for binary(16), an integer otherwise.
func ForColumn(col core.Column, name string) any {
	switch KindOf(col.Type) {
	case KindUUIDText:
		return UUID(name).String()
	case KindUUIDBinary:
		id := UUID(name)
		return id[:]
	default:
		return Generate(name)
	}
}
