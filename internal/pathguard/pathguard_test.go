package pathguard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsProtectedSystemRoots(t *testing.T) {
	g := NewWithHome("/home/alice")
	assert.True(t, g.IsProtected("/"))
	assert.True(t, g.IsProtected("/usr"))
	assert.True(t, g.IsProtected("/System"))
}

func TestIsProtectedDirectChildOfSystemDir(t *testing.T) {
	g := NewWithHome("/home/alice")
	assert.True(t, g.IsProtected("/usr/local"))
	assert.True(t, g.IsProtected("/var/log"))
}

func TestIsProtectedNestedBeneathSystemDir(t *testing.T) {
	g := NewWithHome("/home/alice")
	assert.True(t, g.IsProtected("/var/log/nested/evil.txt"))
	assert.True(t, g.IsProtected("/usr/local/lib/pkg/file.so"))
	assert.True(t, g.IsProtected("/private/var/db/deep/thing"))
}

func TestIsProtectedAllowsHomeSubdirs(t *testing.T) {
	g := NewWithHome("/home/alice")
	assert.False(t, g.IsProtected("/home/alice/Downloads"))
	assert.False(t, g.IsProtected("/home/alice/Downloads/report.pdf"))
}

func TestIsProtectedHomeItself(t *testing.T) {
	g := NewWithHome("/home/alice")
	assert.True(t, g.IsProtected("/home/alice"))
}

func TestIsProtectedUnrelatedPath(t *testing.T) {
	g := NewWithHome("/home/alice")
	assert.False(t, g.IsProtected("/home/alice/Projects/app"))
	assert.False(t, g.IsProtected("/mnt/data"))
}

func TestValidatePathWithin(t *testing.T) {
	assert.True(t, ValidatePathWithin("/root/work/Docs/a.pdf", "/root/work"))
	assert.False(t, ValidatePathWithin("/root/work", "/root/work"))
	assert.False(t, ValidatePathWithin("/root/other/a.pdf", "/root/work"))
	assert.False(t, ValidatePathWithin("/root/work/../other/a.pdf", "/root/work"))
}

func TestNormalizeResolvesDotDot(t *testing.T) {
	assert.Equal(t, "/root/other", Normalize("/root/work/../other"))
	assert.Equal(t, "/root/work", Normalize("/root/./work"))
}
