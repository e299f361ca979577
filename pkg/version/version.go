// Package version describes the host server's internal layout generation.
//
// A Version is derived from the revision identifier the host declares for its
// internal packages (for example "v1_8_R3") and is compared against fixed
// thresholds wherever naming or wire encoding changed between releases.
package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Version is minor*10 + revision of a 1.x revision identifier.
type Version int

// Known revisions.
const (
	Unknown  Version = 0
	V1_8_R1  Version = 81
	V1_8_R2  Version = 82
	V1_8_R3  Version = 83
	V1_9_R1  Version = 91
	V1_9_R2  Version = 92
	V1_10_R1 Version = 101
	V1_11_R1 Version = 111
	V1_12_R1 Version = 121
)

// EnumItemSlotSince is the first revision that addresses equipment slots by
// enum constant instead of by ordinal.
const EnumItemSlotSince = V1_9_R1

var identifierRe = regexp.MustCompile(`^v1_(\d+)_R(\d)$`)

// BuildDeclarer is implemented by hosts that declare their revision identifier.
type BuildDeclarer interface {
	BuildIdentifier() string
}

// Parse reads a revision identifier. A dotted package path is accepted, in
// which case only the last segment is considered.
func Parse(id string) (Version, error) {
	if i := strings.LastIndexByte(id, '.'); i >= 0 {
		id = id[i+1:]
	}
	m := identifierRe.FindStringSubmatch(id)
	if m == nil {
		return Unknown, fmt.Errorf("version: malformed revision identifier %q", id)
	}
	minor, err := strconv.Atoi(m[1])
	if err != nil {
		return Unknown, fmt.Errorf("version: minor of %q: %w", id, err)
	}
	rev, _ := strconv.Atoi(m[2])
	if minor == 0 || rev == 0 {
		return Unknown, fmt.Errorf("version: malformed revision identifier %q", id)
	}
	return Version(minor*10 + rev), nil
}

// MustParse is like Parse but panics on error.
func MustParse(id string) Version {
	v, err := Parse(id)
	if err != nil {
		panic(err)
	}
	return v
}

// Detect reads the host's declared identifier.
func Detect(d BuildDeclarer) (Version, error) {
	return Parse(d.BuildIdentifier())
}

// Minor returns the minor release number.
func (v Version) Minor() int { return int(v) / 10 }

// Revision returns the revision within the minor release.
func (v Version) Revision() int { return int(v) % 10 }

// AtLeast reports whether v is o or newer.
func (v Version) AtLeast(o Version) bool { return v >= o }

// String renders the revision identifier, v1_M_Rn.
func (v Version) String() string {
	if v <= 0 {
		return "unknown"
	}
	return fmt.Sprintf("v1_%d_R%d", v.Minor(), v.Revision())
}

// Protocol returns the wire protocol number clients of this revision speak.
// Revisions that span several protocol numbers report the newest one.
func (v Version) Protocol() int32 {
	switch {
	case v >= 130:
		return -1
	case v >= V1_12_R1:
		return 340
	case v >= V1_11_R1:
		return 316
	case v >= V1_10_R1:
		return 210
	case v >= V1_9_R2:
		return 110
	case v >= V1_9_R1:
		return 109
	case v >= V1_8_R1:
		return 47
	}
	return -1
}

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
