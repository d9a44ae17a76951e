package stringutil

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniqueID_NoDuplicatesOrDots(t *testing.T) {
	const iterations = 10000
	seen := make(map[string]struct{}, iterations)
	for index := 0; index < iterations; index++ {
		identifier := UniqueID("id_")
		require.True(t, strings.HasPrefix(identifier, "id_"))
		require.NotContains(t, identifier, ".")
		_, duplicate := seen[identifier]
		require.False(t, duplicate, "duplicate id %s after %d calls", identifier, index)
		seen[identifier] = struct{}{}
	}
}

func TestUniqueID_WithoutPrefix(t *testing.T) {
	identifier := UniqueID("")
	assert.NotEmpty(t, identifier)
	_, parseError := ulid.ParseStrict(identifier)
	assert.NoError(t, parseError)
}

func TestUniqueID_ConcurrentCallers(t *testing.T) {
	const workers = 8
	const perWorker = 500

	results := make(chan string, workers*perWorker)
	var waitGroup sync.WaitGroup
	for worker := 0; worker < workers; worker++ {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			for index := 0; index < perWorker; index++ {
				results <- UniqueID("w_")
			}
		}()
	}
	waitGroup.Wait()
	close(results)

	seen := make(map[string]struct{}, workers*perWorker)
	for identifier := range results {
		_, duplicate := seen[identifier]
		require.False(t, duplicate, "duplicate id %s", identifier)
		seen[identifier] = struct{}{}
	}
	assert.Len(t, seen, workers*perWorker)
}

func TestParseFormat(t *testing.T) {
	testCases := map[string]Format{
		"":            FormatULID,
		"ulid":        FormatULID,
		" ULID ":      FormatULID,
		"uuid":        FormatUUID,
		"Timestamp":   FormatTimestamp,
		"timestamp\n": FormatTimestamp,
	}
	for input, expected := range testCases {
		format, err := ParseFormat(input)
		require.NoError(t, err, input)
		assert.Equal(t, expected, format, input)
	}

	_, err := ParseFormat("snowflake")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	assert.Contains(t, err.Error(), "snowflake")
}

func TestNewGenerator_RejectsUnknownFormat(t *testing.T) {
	generator, err := NewGenerator(Format("sequence"))
	assert.Nil(t, generator)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestGenerator_Formats(t *testing.T) {
	for _, format := range []Format{FormatULID, FormatUUID, FormatTimestamp} {
		t.Run(string(format), func(t *testing.T) {
			generator, err := NewGenerator(format)
			require.NoError(t, err)
			assert.Equal(t, format, generator.Format())

			first := generator.Generate("el-")
			second := generator.Generate("el-")
			assert.NotEqual(t, first, second)
			for _, identifier := range []string{first, second} {
				assert.True(t, strings.HasPrefix(identifier, "el-"), identifier)
				assert.NotContains(t, identifier, ".")
			}
		})
	}
}

func TestGenerator_UUIDTokenParses(t *testing.T) {
	generator, err := NewGenerator(FormatUUID)
	require.NoError(t, err)

	parsed, parseError := uuid.Parse(strings.TrimPrefix(generator.Generate("u:"), "u:"))
	require.NoError(t, parseError)
	assert.Equal(t, uuid.Version(4), parsed.Version())
}

func TestGenerator_TimestampLayout(t *testing.T) {
	originalTimeNow := timeNow
	originalRandomIntN := randomIntN
	t.Cleanup(func() {
		timeNow = originalTimeNow
		randomIntN = originalRandomIntN
	})

	timeNow = func() time.Time { return time.Unix(0x5f5e1000, 123456789) }
	randomIntN = func(upperBound int) int { return upperBound - 1 }

	generator, err := NewGenerator(FormatTimestamp)
	require.NoError(t, err)

	// 0x5f5e1000 seconds, 123456 microseconds = 0x1e240, then 9.99999999 with the dot removed
	assert.Equal(t, "ts5f5e10001e240999999999", generator.Generate("ts"))
}

func TestGenerator_TimestampPadsSmallValues(t *testing.T) {
	originalTimeNow := timeNow
	originalRandomIntN := randomIntN
	t.Cleanup(func() {
		timeNow = originalTimeNow
		randomIntN = originalRandomIntN
	})

	timeNow = func() time.Time { return time.Unix(1, 1000) }
	randomIntN = func(int) int { return 7 }

	generator, err := NewGenerator(FormatTimestamp)
	require.NoError(t, err)

	identifier := generator.Generate("")
	assert.Equal(t, "0000000100001700000007", identifier)
	assert.Len(t, identifier, 22)
}

func TestGenerator_ZeroValueEmitsULID(t *testing.T) {
	var generator Generator
	assert.Equal(t, FormatULID, generator.Format())

	identifier := generator.Generate("x")
	require.True(t, strings.HasPrefix(identifier, "x"))
	_, parseError := ulid.ParseStrict(strings.TrimPrefix(identifier, "x"))
	assert.NoError(t, parseError)
}
