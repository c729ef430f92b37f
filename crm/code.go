/*
code.go - Contract code generation

PURPOSE:
  Every party carries a short human-readable code stamped on the physical
  contract: closing date (DDMMYY) plus the first letters of the client's
  name. Collisions get a numeric suffix, so two same-day closings for
  "Maria" become 150325MA and 150325MA1.
*/
package crm

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// CodeExists reports whether a contract code is already taken. The store
// satisfies this; tests use a map lookup.
type CodeExists func(code string) (bool, error)

// PartyCodeBase builds the base contract code from the closing date and the
// client name: DDMMYY plus the first two A-Z letters of the name, upcased,
// digits and accented characters skipped. A name with no plain letters
// yields a date-only base.
func PartyCodeBase(closing time.Time, clientName string) string {
	var initials strings.Builder
	for _, r := range strings.TrimSpace(clientName) {
		if initials.Len() >= 2 {
			break
		}
		r = unicode.ToUpper(r)
		if r >= 'A' && r <= 'Z' {
			initials.WriteRune(r)
		}
	}
	return closing.Format("020106") + initials.String()
}

// GeneratePartyCode returns the first free code: the base, then base+1,
// base+2 and so on until exists reports a free slot.
func GeneratePartyCode(closing time.Time, clientName string, exists CodeExists) (string, error) {
	base := PartyCodeBase(closing, clientName)

	code := base
	for suffix := 1; ; suffix++ {
		taken, err := exists(code)
		if err != nil {
			return "", fmt.Errorf("checking contract code %q: %w", code, err)
		}
		if !taken {
			return code, nil
		}
		code = fmt.Sprintf("%s%d", base, suffix)
	}
}
