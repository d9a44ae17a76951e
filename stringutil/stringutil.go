// Package stringutil holds small string helpers: exact prefix and suffix
// checks and a generator for identifiers that are safe to use as markup ids.
package stringutil

const argumentNeedle = "needle"

// BeginsWith reports whether haystack starts with needle.
// The comparison is byte-exact and case-sensitive; neither input is trimmed.
// An empty needle is rejected with ErrInvalidArgument.
func BeginsWith(haystack string, needle string) (bool, error) {
	if validateError := validateNeedle(needle); validateError != nil {
		return false, validateError
	}
	if len(needle) > len(haystack) {
		return false, nil
	}
	return haystack[:len(needle)] == needle, nil
}

// EndsWith reports whether haystack ends with needle.
// It follows the same rules as BeginsWith.
func EndsWith(haystack string, needle string) (bool, error) {
	if validateError := validateNeedle(needle); validateError != nil {
		return false, validateError
	}
	haystackLength := len(haystack)
	if haystackLength == 0 || len(needle) > haystackLength {
		return false, nil
	}
	return haystack[haystackLength-len(needle):] == needle, nil
}

func validateNeedle(needle string) error {
	if len(needle) < 1 {
		return invalidArgument(argumentNeedle, "has zero length")
	}
	return nil
}
