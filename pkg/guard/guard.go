// Package guard decides whether a directory may receive generated files.
//
// The check is advisory: it rejects obviously dangerous input and well known
// system locations, but it does not protect against a concurrent process
// swapping the filesystem underneath a path after it was checked.
package guard

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"junkfactory/pkg/log"
)

// InvalidTokens are substrings rejected anywhere in the literal path.
var InvalidTokens = []string{"..", "~", "|", ">", "<", `"`, "'", "\x00"}

// Policy is an immutable deny-list plus token set.
type Policy struct {
	protected     []string
	tokens        []string
	caseSensitive bool
	separator     string
}

// Default is computed once at startup from the host's root or system drive.
var Default = NewPolicy(runtime.GOOS, hostSystemDrive(), InvalidTokens)

// NewPolicy builds the policy for goos. systemDrive is only used on windows.
func NewPolicy(goos, systemDrive string, tokens []string) *Policy {
	p := &Policy{
		tokens:        append([]string(nil), tokens...),
		caseSensitive: goos != "windows" && goos != "darwin",
		separator:     "/",
	}

	var dirs []string
	if goos == "windows" {
		p.separator = `\`
		drive := strings.TrimRight(systemDrive, `\/`)
		if drive == "" {
			drive = "C:"
		}
		dirs = []string{
			drive + `\Windows`,
			drive + `\Windows\System32`,
			drive + `\`,
		}
	} else {
		dirs = []string{"/", "/etc", "/usr", "/bin"}
	}

	for _, dir := range dirs {
		p.protected = append(p.protected, p.normalizeCase(dir))
	}
	return p
}

func hostSystemDrive() string {
	if runtime.GOOS != "windows" {
		return ""
	}
	if drive := os.Getenv("SystemDrive"); drive != "" {
		return drive
	}
	if wd, err := os.Getwd(); err == nil {
		return filepath.VolumeName(wd)
	}
	return ""
}

// Protected returns a copy of the normalized deny-list.
func (p *Policy) Protected() []string {
	return append([]string(nil), p.protected...)
}

func (p *Policy) normalizeCase(path string) string {
	if p.caseSensitive {
		return path
	}
	return strings.ToLower(path)
}

// Check returns nil when path is allowed and a RejectedError otherwise.
func (p *Policy) Check(path string) error {
	if strings.TrimSpace(path) == "" {
		return RejectedError{Path: path, Reason: "path is empty"}
	}

	for _, token := range p.tokens {
		if strings.Contains(path, token) {
			return RejectedError{Path: path, Reason: fmt.Sprintf("path contains disallowed token %q", token)}
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return RejectedError{Path: path, Reason: "path cannot be normalized: " + err.Error()}
	}
	abs = p.normalizeCase(abs)

	for _, protected := range p.protected {
		if abs == protected || strings.HasPrefix(abs, protected+p.separator) {
			return RejectedError{Path: path, Reason: fmt.Sprintf("%s is a protected system location", protected)}
		}
	}
	return nil
}

// IsAllowed reports whether path passes Check.
func (p *Policy) IsAllowed(path string) bool {
	err := p.Check(path)
	if err != nil {
		log.Debug().Str("path", path).Err(err).Msg("Path rejected")
	}
	return err == nil
}

// Check runs the Default policy.
func Check(path string) error {
	return Default.Check(path)
}

// IsAllowed runs the Default policy.
func IsAllowed(path string) bool {
	return Default.IsAllowed(path)
}
