package version

import (
	"strings"
	"testing"
	"time"
)

func withBuildInfo(t *testing.T, version, gitCommit, buildDate string) {
	t.Helper()
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	t.Cleanup(func() {
		SetBuildInfo(origVersion, origCommit, origDate)
	})
	SetBuildInfo(version, gitCommit, buildDate)
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name     string
		version  string
		expected int
	}{
		{name: "release", version: "1.6.4", expected: 10060004},
		{name: "zero", version: "0.0.0", expected: 0},
		{name: "large minor", version: "2.45.120", expected: 20450120},
		{name: "prerelease ignores suffix", version: "1.2.3-rc.1", expected: 10020003},
		{name: "invalid", version: "invalid", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withBuildInfo(t, tt.version, "unknown", "unknown")
			if got := GetEncoded(); got != tt.expected {
				t.Errorf("GetEncoded() with version %q = %d, want %d", tt.version, got, tt.expected)
			}
		})
	}
}

func TestValidateVersion(t *testing.T) {
	tests := []struct {
		name        string
		version     string
		expectError bool
	}{
		{name: "valid version", version: "1.2.3"},
		{name: "valid version with prerelease", version: "1.2.3-alpha.1"},
		{name: "invalid version", version: "invalid", expectError: true},
		{name: "empty version", version: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withBuildInfo(t, tt.version, "unknown", "unknown")
			err := ValidateVersion()
			if tt.expectError && err == nil {
				t.Errorf("ValidateVersion() expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("ValidateVersion() unexpected error: %v", err)
			}
		})
	}
}

func TestIsPrerelease(t *testing.T) {
	tests := []struct {
		name     string
		version  string
		expected bool
	}{
		{name: "stable version", version: "1.2.3", expected: false},
		{name: "prerelease alpha", version: "1.2.3-alpha.1", expected: true},
		{name: "prerelease rc", version: "1.2.3-rc.1", expected: true},
		{name: "invalid version", version: "invalid", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withBuildInfo(t, tt.version, "unknown", "unknown")
			if got := IsPrerelease(); got != tt.expected {
				t.Errorf("IsPrerelease() with version %q = %v, want %v", tt.version, got, tt.expected)
			}
		})
	}
}

func TestIsDevelopment(t *testing.T) {
	tests := []struct {
		name      string
		gitCommit string
		buildDate string
		expected  bool
	}{
		{name: "release build", gitCommit: "abc1234", buildDate: "2026-01-02", expected: false},
		{name: "unknown commit", gitCommit: "unknown", buildDate: "2026-01-02", expected: true},
		{name: "unknown date", gitCommit: "abc1234", buildDate: "unknown", expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withBuildInfo(t, "1.0.0", tt.gitCommit, tt.buildDate)
			if got := IsDevelopment(); got != tt.expected {
				t.Errorf("IsDevelopment() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		name        string
		v1, v2      string
		expected    int
		expectError bool
	}{
		{name: "less", v1: "1.0.0", v2: "1.1.0", expected: -1},
		{name: "equal", v1: "1.2.3", v2: "1.2.3", expected: 0},
		{name: "greater", v1: "2.0.0", v2: "1.9.9", expected: 1},
		{name: "prerelease sorts first", v1: "1.0.0-rc.1", v2: "1.0.0", expected: -1},
		{name: "invalid first", v1: "x", v2: "1.0.0", expectError: true},
		{name: "invalid second", v1: "1.0.0", v2: "y", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CompareVersions(tt.v1, tt.v2)
			if tt.expectError {
				if err == nil {
					t.Errorf("CompareVersions(%q, %q) expected error", tt.v1, tt.v2)
				}
				return
			}
			if err != nil {
				t.Fatalf("CompareVersions(%q, %q) unexpected error: %v", tt.v1, tt.v2, err)
			}
			if got != tt.expected {
				t.Errorf("CompareVersions(%q, %q) = %d, want %d", tt.v1, tt.v2, got, tt.expected)
			}
		})
	}
}

func TestSatisfies(t *testing.T) {
	tests := []struct {
		name        string
		constraint  string
		expected    bool
		expectError bool
	}{
		{name: "at least older", constraint: ">= 1.0", expected: true},
		{name: "at least newer", constraint: ">= 2.0", expected: false},
		{name: "tilde range", constraint: "~1.5", expected: true},
		{name: "bad constraint", constraint: ">= foo", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withBuildInfo(t, "1.5.2", "unknown", "unknown")
			got, err := Satisfies(tt.constraint)
			if tt.expectError {
				if err == nil {
					t.Errorf("Satisfies(%q) expected error", tt.constraint)
				}
				return
			}
			if err != nil {
				t.Fatalf("Satisfies(%q) unexpected error: %v", tt.constraint, err)
			}
			if got != tt.expected {
				t.Errorf("Satisfies(%q) = %v, want %v", tt.constraint, got, tt.expected)
			}
		})
	}
}

func TestGetFormattedVersion(t *testing.T) {
	tests := []struct {
		name      string
		version   string
		gitCommit string
		buildDate string
		expected  string
	}{
		{name: "development", version: "1.0.0", gitCommit: "unknown", buildDate: "unknown", expected: "clink v1.0.0"},
		{name: "release", version: "1.2.0", gitCommit: "0123456789abcdef", buildDate: "2026-03-01", expected: "clink v1.2.0, commit 0123456, built 2026-03-01"},
		{name: "invalid", version: "bogus", gitCommit: "unknown", buildDate: "unknown", expected: "clink vbogus (invalid version)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withBuildInfo(t, tt.version, tt.gitCommit, tt.buildDate)
			if got := GetFormattedVersion(); got != tt.expected {
				t.Errorf("GetFormattedVersion() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestGetDetailedVersion(t *testing.T) {
	withBuildInfo(t, "1.2.3+45.abc", "abc", "2026-03-01")

	got := GetDetailedVersion()
	for _, want := range []string{"clink v1.2.3+45.abc", "Encoded: 10020003", "Git Commit: abc", "Build Metadata: 45.abc", "Go Version: go"} {
		if !strings.Contains(got, want) {
			t.Errorf("GetDetailedVersion() = %q, missing %q", got, want)
		}
	}
}

func TestGetBuildTime(t *testing.T) {
	tests := []struct {
		name        string
		buildDate   string
		expected    time.Time
		expectError bool
	}{
		{name: "date only", buildDate: "2026-03-01", expected: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{name: "rfc3339", buildDate: "2026-03-01T10:20:30Z", expected: time.Date(2026, 3, 1, 10, 20, 30, 0, time.UTC)},
		{name: "unknown", buildDate: "unknown", expectError: true},
		{name: "garbage", buildDate: "yesterday", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withBuildInfo(t, "1.0.0", "unknown", tt.buildDate)
			got, err := GetBuildTime()
			if tt.expectError {
				if err == nil {
					t.Errorf("GetBuildTime() expected error for %q", tt.buildDate)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetBuildTime() unexpected error: %v", err)
			}
			if !got.Equal(tt.expected) {
				t.Errorf("GetBuildTime() = %v, want %v", got, tt.expected)
			}
		})
	}
}
