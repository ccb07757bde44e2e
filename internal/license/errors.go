package license

import (
	"errors"
	"fmt"
)

var (
	// ErrLicenseNotFound means no active license exists for the given key.
	ErrLicenseNotFound = errors.New("license not found")

	// ErrMachineLimitReached means the license already has the maximum
	// number of activated machines.
	ErrMachineLimitReached = errors.New("machine limit reached")

	// ErrKeySpaceExhausted means key generation collided on every attempt.
	// Astronomically unlikely; surfaced instead of looping forever.
	ErrKeySpaceExhausted = errors.New("could not generate a unique license key")
)

// UpgradeRequiredError is returned when the client requests a higher major
// version than the license grants. It carries the licensed version so the
// client can prompt the user instead of silently degrading.
type UpgradeRequiredError struct {
	LicensedVersion  int
	RequestedVersion int
}

func (e *UpgradeRequiredError) Error() string {
	return fmt.Sprintf("license covers v%d but v%d was requested", e.LicensedVersion, e.RequestedVersion)
}
