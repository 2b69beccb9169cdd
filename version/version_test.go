package version

import (
	"runtime"
	"strings"
	"testing"
)

func saveAndRestore() func() {
	origVersion, origCommit, origBuildTime := Version, GitCommit, BuildTime
	return func() {
		Version = origVersion
		GitCommit = origCommit
		BuildTime = origBuildTime
	}
}

func TestGetDefaults(t *testing.T) {
	defer saveAndRestore()()
	Version = "dev"

	info := Get()
	if info.Version != "dev" {
		t.Errorf("expected version 'dev', got %q", info.Version)
	}
	if info.IsRelease {
		t.Error("dev should not be a release")
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q", info.GoVersion)
	}
	if info.Platform != runtime.GOOS+"/"+runtime.GOARCH {
		t.Errorf("Platform = %q", info.Platform)
	}
}

func TestGetWithLinkerValues(t *testing.T) {
	defer saveAndRestore()()
	Version = "1.2.0"
	GitCommit = "abc1234def"
	BuildTime = "2024-01-15T10:30:00Z"

	info := Get()
	if !info.IsRelease {
		t.Error("1.2.0 should be a release")
	}
	if info.GitCommit != "abc1234" {
		t.Errorf("commit should be shortened, got %q", info.GitCommit)
	}
	if info.BuildDate.Year() != 2024 {
		t.Errorf("expected build year 2024, got %d", info.BuildDate.Year())
	}
}

func TestDirtyVersionIsNotRelease(t *testing.T) {
	defer saveAndRestore()()
	Version = "1.2.0-dirty"
	if Get().IsRelease {
		t.Error("dirty version should not be a release")
	}
}

func TestShort(t *testing.T) {
	defer saveAndRestore()()
	Version = "1.2.0"
	GitCommit = "abc1234"

	if got := Short(); !strings.HasPrefix(got, "1.2.0-abc1234") {
		t.Errorf("Short() = %q", got)
	}
}

func TestString(t *testing.T) {
	defer saveAndRestore()()
	Version = "1.2.0"
	GitCommit = "abc1234"
	BuildTime = "2024-01-15T10:30:00Z"

	got := String()
	for _, want := range []string{"edlflash 1.2.0-abc1234", runtime.Version(), "built 2024-01-15T10:30:00Z"} {
		if !strings.Contains(got, want) {
			t.Errorf("String() = %q, missing %q", got, want)
		}
	}
}
