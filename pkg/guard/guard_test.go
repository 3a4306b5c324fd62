package guard

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/suite"
)

// GuardTestSuite tests the path policy
type GuardTestSuite struct {
	suite.Suite
	tempDir string
}

// SetupTest creates an ordinary user directory
func (s *GuardTestSuite) SetupTest() {
	var err error
	s.tempDir, err = os.MkdirTemp("", "guard-test-*")
	s.Require().NoError(err)
}

// TearDownTest removes the user directory
func (s *GuardTestSuite) TearDownTest() {
	if s.tempDir != "" {
		os.RemoveAll(s.tempDir)
	}
}

// TestAcceptsUserDirectory tests that a temp/output folder is allowed
func (s *GuardTestSuite) TestAcceptsUserDirectory() {
	s.NoError(Check(s.tempDir))
	s.True(IsAllowed(filepath.Join(s.tempDir, "output")))
}

// TestRejectsTokens tests the literal token deny-list
func (s *GuardTestSuite) TestRejectsTokens() {
	tests := []struct {
		name string
		path string
	}{
		{name: "traversal", path: "../etc/passwd"},
		{name: "nested traversal", path: s.tempDir + string(filepath.Separator) + ".." + string(filepath.Separator) + "x"},
		{name: "home shorthand", path: "~/junk"},
		{name: "pipe", path: s.tempDir + "|rm"},
		{name: "redirect out", path: s.tempDir + ">x"},
		{name: "redirect in", path: s.tempDir + "<x"},
		{name: "double quote", path: s.tempDir + `"x`},
		{name: "single quote", path: s.tempDir + "'x"},
		{name: "nul byte", path: s.tempDir + "\x00x"},
		{name: "empty", path: "   "},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			err := Check(tt.path)
			s.Error(err)
			s.IsType(RejectedError{}, err)
			s.False(IsAllowed(tt.path))
		})
	}
}

// TestPosixProtectedRoots tests the POSIX deny-list with boundary aware matching
func (s *GuardTestSuite) TestPosixProtectedRoots() {
	if runtime.GOOS == "windows" {
		s.T().Skip("POSIX deny-list")
	}

	policy := NewPolicy("linux", "", InvalidTokens)
	tests := []struct {
		name    string
		path    string
		allowed bool
	}{
		{name: "root", path: "/", allowed: false},
		{name: "etc", path: "/etc", allowed: false},
		{name: "etc trailing slash", path: "/etc/", allowed: false},
		{name: "nested etc", path: "/etc/ssh", allowed: false},
		{name: "usr local", path: "/usr/local", allowed: false},
		{name: "bin", path: "/bin", allowed: false},
		{name: "string prefix only", path: "/usrlocal", allowed: true},
		{name: "etc lookalike", path: "/etcetera/data", allowed: true},
		{name: "bin lookalike", path: "/binaries", allowed: true},
		{name: "uncleaned duplicate slash", path: "//etc", allowed: false},
		{name: "case sensitive", path: "/ETC", allowed: true},
		{name: "temp", path: s.tempDir, allowed: true},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.Equal(tt.allowed, policy.IsAllowed(tt.path))
		})
	}
}

// TestCaseInsensitiveHost tests case folding on case-insensitive filesystems
func (s *GuardTestSuite) TestCaseInsensitiveHost() {
	if runtime.GOOS == "windows" {
		s.T().Skip("POSIX paths")
	}

	policy := NewPolicy("darwin", "", InvalidTokens)
	s.False(policy.IsAllowed("/ETC"))
	s.False(policy.IsAllowed("/Usr/Local"))
	s.True(policy.IsAllowed("/Users/someone/out"))
}

// TestWindowsProtectedRoots tests the system drive deny-list
func (s *GuardTestSuite) TestWindowsProtectedRoots() {
	if runtime.GOOS != "windows" {
		s.T().Skip("windows paths")
	}

	policy := NewPolicy("windows", "C:", InvalidTokens)
	s.False(policy.IsAllowed(`C:\`))
	s.False(policy.IsAllowed(`c:\windows`))
	s.False(policy.IsAllowed(`C:\Windows\System32\drivers`))
	s.True(policy.IsAllowed(`C:\WindowsApps`))
	s.True(policy.IsAllowed(`D:\`))
	s.True(policy.IsAllowed(s.tempDir))
}

// TestProtectedIsCopied tests that callers cannot mutate the deny-list
func (s *GuardTestSuite) TestProtectedIsCopied() {
	policy := NewPolicy("linux", "", InvalidTokens)
	dirs := policy.Protected()
	s.Equal([]string{"/", "/etc", "/usr", "/bin"}, dirs)

	dirs[1] = "/nothing"
	s.Equal("/etc", policy.Protected()[1])
}

// TestWindowsDefaultsDrive tests the fallback drive
func (s *GuardTestSuite) TestWindowsDefaultsDrive() {
	policy := NewPolicy("windows", "", InvalidTokens)
	s.Equal([]string{`c:\windows`, `c:\windows\system32`, `c:\`}, policy.Protected())
}

func TestGuardSuite(t *testing.T) {
	suite.Run(t, new(GuardTestSuite))
}
