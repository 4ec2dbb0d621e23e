package protocol

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// Version is a parsed "abp/v<major>.<minor>" contract version.
type Version struct {
	Major uint32
	Minor uint32
}

var versionPattern = regexp.MustCompile(`^abp/v([0-9]+)\.([0-9]+)$`)

// ParseVersion parses s as "abp/v<u32>.<u32>" with no leading or trailing
// whitespace. It returns ok=false, not an error, on malformed input — the
// specification treats this as a total function returning an option.
func ParseVersion(s string) (v Version, ok bool) {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return Version{}, false
	}
	major, err := strconv.ParseUint(m[1], 10, 32)
	if err != nil {
		return Version{}, false
	}
	minor, err := strconv.ParseUint(m[2], 10, 32)
	if err != nil {
		return Version{}, false
	}
	return Version{Major: uint32(major), Minor: uint32(minor)}, true
}

// String renders v back into "abp/v<major>.<minor>" form.
func (v Version) String() string {
	return fmt.Sprintf("abp/v%d.%d", v.Major, v.Minor)
}

// Less reports whether v orders strictly before other, lexicographically on
// (major, minor).
func (v Version) Less(other Version) bool {
	if v.Major != other.Major {
		return v.Major < other.Major
	}
	return v.Minor < other.Minor
}

// ErrIncompatible is returned by Negotiate when the two versions have
// different major components.
var ErrIncompatible = errors.New("protocol: incompatible contract versions")

// Negotiate returns the lower of a and b when their major components match,
// and ErrIncompatible otherwise. It is symmetric and idempotent:
// Negotiate(v, v) == v.
func Negotiate(a, b Version) (Version, error) {
	if a.Major != b.Major {
		return Version{}, fmt.Errorf("%w: %s vs %s", ErrIncompatible, a, b)
	}
	if a.Less(b) {
		return a, nil
	}
	return b, nil
}
