// Package regulation is the static catalog of regulatory frameworks the
// analysis can compare documents against.
package regulation

import (
	"fmt"
	"strings"
)

// Regulation describes one framework in the catalog.
type Regulation struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	text        string
}

// catalog is ordered as presented to clients.
var catalog = []Regulation{
	{
		Code:        "GDPR",
		Name:        "General Data Protection Regulation",
		Description: "European data protection and privacy regulation",
		text:        gdprText,
	},
	{
		Code:        "NIST",
		Name:        "NIST Cybersecurity Framework",
		Description: "US cybersecurity framework for critical infrastructure",
		text:        nistText,
	},
	{
		Code:        "HIPAA",
		Name:        "Health Insurance Portability and Accountability Act",
		Description: "US healthcare data protection regulation",
		text:        hipaaText,
	},
	{
		Code:        "ISO27001",
		Name:        "ISO/IEC 27001",
		Description: "International information security management standard",
		text:        iso27001Text,
	},
}

var byCode = func() map[string]Regulation {
	m := make(map[string]Regulation, len(catalog))
	for _, r := range catalog {
		m[r.Code] = r
	}
	return m
}()

// Lookup returns the reference requirements for code, matched
// case-insensitively and ignoring surrounding space. Unknown codes get a generic placeholder that echoes
// code as given.
func Lookup(code string) string {
	if r, ok := byCode[Normalize(code)]; ok {
		return r.text
	}
	return fmt.Sprintf("Basic requirements for %s compliance analysis.", code)
}

// Normalize trims and upper-cases a regulation code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Known reports whether code names a framework in the catalog.
func Known(code string) bool {
	_, ok := byCode[Normalize(code)]
	return ok
}

// Get returns the catalog entry for code.
func Get(code string) (Regulation, bool) {
	r, ok := byCode[Normalize(code)]
	return r, ok
}

// List returns every framework in presentation order.
func List() []Regulation {
	out := make([]Regulation, len(catalog))
	copy(out, catalog)
	return out
}

// Codes returns the known codes in presentation order.
func Codes() []string {
	out := make([]string, 0, len(catalog))
	for _, r := range catalog {
		out = append(out, r.Code)
	}
	return out
}
