package stringutil

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Format selects the token shape a Generator emits.
type Format string

const (
	// FormatULID is 48 bits of millisecond time followed by 80 bits of
	// entropy, monotonic within one process.
	FormatULID Format = "ulid"
	// FormatUUID is a random RFC 4122 version 4 UUID.
	FormatUUID Format = "uuid"
	// FormatTimestamp is hex seconds and microseconds followed by random
	// decimal digits. Uniqueness is best effort only.
	FormatTimestamp Format = "timestamp"
)

const argumentFormat = "format"

// tiny indirections to ease testing
var (
	timeNow    = time.Now
	randomIntN = rand.IntN
)

// Generator produces identifiers of a fixed Format. It is safe for
// concurrent use. The zero value emits ULID tokens.
type Generator struct {
	format   Format
	newToken func() string
}

// ParseFormat maps a user supplied name onto a Format. Matching ignores case
// and surrounding space; an empty value selects FormatULID.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case "", FormatULID:
		return FormatULID, nil
	case FormatUUID:
		return FormatUUID, nil
	case FormatTimestamp:
		return FormatTimestamp, nil
	}
	return "", invalidArgument(argumentFormat, fmt.Sprintf("%q is not one of ulid, uuid, timestamp", value))
}

// NewGenerator returns a Generator for format.
func NewGenerator(format Format) (*Generator, error) {
	switch format {
	case FormatULID:
		return &Generator{format: format, newToken: ulidToken}, nil
	case FormatUUID:
		return &Generator{format: format, newToken: uuid.NewString}, nil
	case FormatTimestamp:
		return &Generator{format: format, newToken: timestampToken}, nil
	}
	return nil, invalidArgument(argumentFormat, fmt.Sprintf("%q is not supported", format))
}

// Format reports the token shape of the generator.
func (generator *Generator) Format() Format {
	if generator.newToken == nil {
		return FormatULID
	}
	return generator.format
}

// Generate returns prefix followed by a fresh token. Dots are removed from
// the token so the result can be used as an HTML id attribute.
func (generator *Generator) Generate(prefix string) string {
	newToken := generator.newToken
	if newToken == nil {
		newToken = ulidToken
	}
	return prefix + strings.ReplaceAll(newToken(), ".", "")
}

var defaultGenerator = &Generator{format: FormatULID, newToken: ulidToken}

// UniqueID returns prefix followed by a ULID token. Pass "" for no prefix.
func UniqueID(prefix string) string {
	return defaultGenerator.Generate(prefix)
}

// ulid.Make draws from a process-wide monotonic entropy source guarded by a
// mutex.
func ulidToken() string {
	return ulid.Make().String()
}

func timestampToken() string {
	currentTime := timeNow()
	return fmt.Sprintf("%08x%05x%d.%08d",
		currentTime.Unix(), currentTime.Nanosecond()/1000,
		randomIntN(10), randomIntN(100_000_000))
}
