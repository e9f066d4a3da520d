package service

import (
	"fmt"
	"strings"

	"github.com/yndnr/modi-go/internal/core/domain"
)

// CheckPrecondition verifies the install-root marker is set before anything
// else in the boot runs. It only inspects system; it never touches the
// filesystem. An empty value counts as unset.
func CheckPrecondition(system domain.SystemProperties, marker string) error {
	if v, ok := system.Lookup(marker); ok && strings.TrimSpace(v) != "" {
		return nil
	}
	return domain.ErrMissingPrecondition.WithDetails(fmt.Sprintf(
		"the %s system property is not set, cannot load configuration; "+
			"it must be set before the kernel is built (environment or -D %s=<dir>), "+
			"check that nothing in startup clears it",
		marker, marker))
}
