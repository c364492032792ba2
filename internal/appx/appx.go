// Package appx resolves installed package metadata: enumeration for the
// picker, identity queries for the current process and activation for
// launch-and-dump.
package appx

import (
	"fmt"
	"strings"
)

// Package describes one installed package, as listed by the system.
type Package struct {
	Name        string
	DisplayName string
	FamilyName  string
	AppID       string
}

// AppUserModelID is the activation identifier for the package's primary
// application.
func (p Package) AppUserModelID() string {
	return p.FamilyName + "!" + p.AppID
}

// OptionLabel is the line shown for this package in the interactive picker.
func (p Package) OptionLabel() string {
	if p.DisplayName != "" && p.DisplayName != p.Name {
		return fmt.Sprintf("%s (%s)", p.DisplayName, p.Name)
	}
	return p.Name
}

// OptionID identifies the package in picker logic.
func (p Package) OptionID() string {
	return p.FamilyName
}

// Find filters the listing down to packages whose name, display name or
// family name contains query, case-insensitively. An exact name or family
// match short-circuits to that single package.
func Find(pkgs []Package, query string) []Package {
	q := strings.ToLower(query)
	var matches []Package
	for _, p := range pkgs {
		if strings.EqualFold(p.Name, query) || strings.EqualFold(p.FamilyName, query) {
			return []Package{p}
		}
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.DisplayName), q) ||
			strings.Contains(strings.ToLower(p.FamilyName), q) {
			matches = append(matches, p)
		}
	}
	return matches
}

// fieldSep joins the enumeration fields on the wire. Package names cannot
// contain it.
const fieldSep = "|"

// parsePackageList decodes the enumeration output, one package per line with
// pipe-separated fields: name, display name, family name, application id.
// Lines with missing fields or an empty family name are dropped rather than
// failing the whole listing. An empty display name, or one left as an
// unresolved ms-resource reference, falls back to the package name.
func parsePackageList(out string) []Package {
	var pkgs []Package
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, fieldSep)
		if len(fields) != 4 {
			continue
		}
		p := Package{
			Name:        strings.TrimSpace(fields[0]),
			DisplayName: strings.TrimSpace(fields[1]),
			FamilyName:  strings.TrimSpace(fields[2]),
			AppID:       strings.TrimSpace(fields[3]),
		}
		if p.FamilyName == "" {
			continue
		}
		if p.DisplayName == "" || strings.HasPrefix(p.DisplayName, "ms-resource:") {
			p.DisplayName = p.Name
		}
		pkgs = append(pkgs, p)
	}
	return pkgs
}
