package service

import (
	"strings"

	"github.com/aquilax/tripcode"
)

const tripDelimiter = "#"

// ParseName splits "name#secret" into the visible name and a trip derived
// from the pair with a salted one-way hash. No secret means no trip.
func ParseName(raw string, salt string) (name string, trip string) {
	name, secret, found := strings.Cut(raw, tripDelimiter)
	name = strings.TrimSpace(name)
	if !found || secret == "" {
		return name, ""
	}
	return name, tripcode.SecureTripcode(name+tripDelimiter+secret, salt)
}
