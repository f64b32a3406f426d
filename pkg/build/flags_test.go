// SPDX-License-Identifier: MIT
package build

import (
	"os"
	"strings"
	"testing"
)

var (
	origName    string
	origTime    string
	origCommit  string
	origVersion string
	origFlags   ldFlags
)

func TestMain(m *testing.M) {
	origName = buildName
	origTime = buildTime
	origCommit = buildCommit
	origVersion = buildVersion
	origFlags = *buildFlags

	exitCode := m.Run()

	buildName = origName
	buildTime = origTime
	buildCommit = origCommit
	buildVersion = origVersion
	*buildFlags = origFlags

	os.Exit(exitCode)
}

func resetFlags() {
	buildFlags = &ldFlags{
		Name:    defaultName,
		Time:    "unknown",
		Commit:  "unknown",
		Version: "dev",
	}
}

func TestInitialize(t *testing.T) {
	tests := []struct {
		name        string
		buildName   string
		buildTime   string
		buildCommit string
		buildVer    string
		wantErrMsgs []string
	}{
		{"Missing BuildName", "", "2026-10-01", "abcdef123", "v1.0.0", []string{"BuildName is required"}},
		{"Missing BuildTime", "accel", "", "abcdef123", "v1.0.0", []string{"BuildTime is required"}},
		{"Missing Commit And Version", "accel", "2026-10-01", "", "", []string{"BuildCommit is required", "BuildVersion is required"}},
		{"Success Case", "accel", "2026-10-01", "abcdef123", "v1.0.0", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			buildName = tt.buildName
			buildTime = tt.buildTime
			buildCommit = tt.buildCommit
			buildVersion = tt.buildVer

			err := Initialize()

			if len(tt.wantErrMsgs) == 0 {
				if err != nil {
					t.Fatalf("Initialize() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Fatalf("Initialize() expected error, got nil")
				}
				for _, msg := range tt.wantErrMsgs {
					if !strings.Contains(err.Error(), msg) {
						t.Errorf("Initialize() error = %q, want it to contain %q", err, msg)
					}
				}
			}

			if tt.buildName != "" && buildFlags.Name != tt.buildName {
				t.Errorf("buildFlags.Name = %v, want %v", buildFlags.Name, tt.buildName)
			}
			if tt.buildName == "" && buildFlags.Name != defaultName {
				t.Errorf("buildFlags.Name = %v, want default %v", buildFlags.Name, defaultName)
			}
			if tt.buildVer != "" && buildFlags.Version != tt.buildVer {
				t.Errorf("buildFlags.Version = %v, want %v", buildFlags.Version, tt.buildVer)
			}
		})
	}
}

func TestGetBuildFlagsString(t *testing.T) {
	buildFlags = &ldFlags{Name: "accel", Time: "2026-10-01", Commit: "abc", Version: "v1.0.0"}
	defer resetFlags()

	got := GetBuildFlags().String()
	want := "accel v1.0.0 (commit abc, built 2026-10-01)"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
