package headers

import "strconv"

func parseNonNegativeInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, &ParseError{Message: "expected a non-negative integer, got " + s}
	}
	return n, nil
}
