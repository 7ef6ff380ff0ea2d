// Package converter holds the vocabulary shared by the registry, the walkers
// and rule bodies: versions, rules, walkers and rule failures.
package converter

import (
	"cmp"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidVersion = errors.New("invalid version")

// Version is a point on the schema timeline, ordered by Major then Sub.
// Sub is never negative.
type Version struct {
	Major int32
	Sub   int32
}

// V builds a version with an optional sub version.
func V(major int32, sub ...int32) Version {
	v := Version{Major: major}
	if len(sub) > 0 {
		v.Sub = sub[0]
	}
	return v
}

// Compare returns -1, 0 or +1.
func (v Version) Compare(o Version) int {
	if c := cmp.Compare(v.Major, o.Major); c != 0 {
		return c
	}
	return cmp.Compare(v.Sub, o.Sub)
}

func (v Version) Less(o Version) bool { return v.Compare(o) < 0 }

// Encode packs the version into one ordered int64.
func (v Version) Encode() int64 {
	return int64(v.Major)<<32 | int64(uint32(v.Sub))
}

// Decode reverses Encode.
func Decode(encoded int64) Version {
	return Version{Major: int32(encoded >> 32), Sub: int32(uint32(encoded))}
}

// String renders "3818" or "3818.5".
func (v Version) String() string {
	if v.Sub == 0 {
		return strconv.FormatInt(int64(v.Major), 10)
	}
	return strconv.FormatInt(int64(v.Major), 10) + "." + strconv.FormatInt(int64(v.Sub), 10)
}

// ParseVersion reads the format String produces.
func ParseVersion(s string) (Version, error) {
	major, sub, hasSub := strings.Cut(strings.TrimSpace(s), ".")
	m, err := strconv.ParseInt(major, 10, 32)
	if err != nil {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}
	v := Version{Major: int32(m)}
	if hasSub {
		n, err := strconv.ParseInt(sub, 10, 32)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
		}
		v.Sub = int32(n)
	}
	return v, nil
}

func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := ParseVersion(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
