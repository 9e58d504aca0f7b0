package storage

import (
	"regexp"
	"strconv"
)

var leadingDigits = regexp.MustCompile(`^[0-9]+`)

// leadingNumber returns the integer formed by the run of digits at the
// start of name, used to order numbered files like "10_model.pt". A name
// with no leading digits ranks as 0.
func leadingNumber(name string) int {
	match := leadingDigits.FindString(name)
	if match == "" {
		return 0
	}
	n, _ := strconv.Atoi(match)
	return n
}
