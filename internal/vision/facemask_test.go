package vision

import (
	"testing"
)

func TestNewFaceMasker_MissingCascade(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV")
	}

	if _, err := NewFaceMasker("testdata/does-not-exist.xml"); err == nil {
		t.Error("NewFaceMasker() succeeded with a missing cascade file")
	}
}
