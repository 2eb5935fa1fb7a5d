package domain_test

import (
	"strings"
	"testing"

	"ipstudio/testutil"
)

// TestDomainStaysDependencyFree keeps pkg/domain importable by any layer:
// it must not reach back into internal packages or pull third-party modules.
func TestDomainStaysDependencyFree(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", func(path string) bool {
		if testutil.InternalImportForbidden(path) {
			return true
		}
		return strings.Contains(path, ".")
	}, "pkg/domain must depend on the standard library only")
}
