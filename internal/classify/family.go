package classify

import "github.com/azp-tools/matrix/internal/platform"

// Family is the platform family encoded in the first token of a test target.
// The set is closed: a token that maps to no Family is either a known
// non-platform marker or an extraction error.
type Family int

const (
	// FamilyNone means the token is not a platform family.
	FamilyNone Family = iota
	// FamilyLinux is a container target: "linux/<name>".
	FamilyLinux
	FamilyAlpine
	FamilyFedora
	FamilyFreeBSD
	FamilyMacOS
	FamilyOSX
	FamilyRHEL
	FamilyUbuntu
)

var familyTokens = map[string]Family{
	"linux":   FamilyLinux,
	"alpine":  FamilyAlpine,
	"fedora":  FamilyFedora,
	"freebsd": FamilyFreeBSD,
	"macos":   FamilyMacOS,
	"osx":     FamilyOSX,
	"rhel":    FamilyRHEL,
	"ubuntu":  FamilyUbuntu,
}

// ParseFamily maps a test-part token to its Family.
func ParseFamily(token string) (Family, bool) {
	f, ok := familyTokens[token]
	return f, ok
}

// String returns the token the family is written as in test targets.
func (f Family) String() string {
	switch f {
	case FamilyLinux:
		return "linux"
	case FamilyAlpine:
		return "alpine"
	case FamilyFedora:
		return "fedora"
	case FamilyFreeBSD:
		return "freebsd"
	case FamilyMacOS:
		return "macos"
	case FamilyOSX:
		return "osx"
	case FamilyRHEL:
		return "rhel"
	case FamilyUbuntu:
		return "ubuntu"
	default:
		return "none"
	}
}

// Kind reports whether targets of this family run in containers or VMs.
func (f Family) Kind() platform.Kind {
	if f == FamilyLinux {
		return platform.KindContainer
	}
	return platform.KindVM
}

// PlatformID builds the platform id from the token following the family.
// Container targets use the bare name; VM targets keep the family prefix.
func (f Family) PlatformID(name string) platform.ID {
	switch f.Kind() {
	case platform.KindContainer:
		return platform.ID(name)
	default:
		return platform.ID(f.String() + "/" + name)
	}
}
