// Package pretty formats values for log output.
package pretty

import "fmt"

// Abbrev shortens s for logging. Strings longer than maxLen are cut to maxLen
// and suffixed with an ellipsis along with the number of bytes omitted.
func Abbrev(s string, maxLen int) Abbreviated {
	return Abbreviated{
		Original: s,
		MaxLen:   maxLen,
	}
}

type Abbreviated struct {
	Original string
	MaxLen   int
}

func (s Abbreviated) String() string {
	if s.MaxLen > 0 && len(s.Original) > s.MaxLen {
		return fmt.Sprintf("%s… (%d more bytes)", s.Original[:s.MaxLen], len(s.Original)-s.MaxLen)
	}
	return s.Original
}
