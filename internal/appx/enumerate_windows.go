//go:build windows

package appx

import (
	"fmt"
	"os/exec"
	"sort"
	"strings"
)

// listScript prints one pipe-separated line per installed package. The
// application id and display name come from the manifest; the id falls back
// to empty for resource-only packages, which the parser then drops on
// launch. The display name may still be an unresolved ms-resource reference,
// which the parser maps back to the package name.
const listScript = `Get-AppxPackage | ForEach-Object {
  $id = ""
  $disp = ""
  try {
    $m = ($_ | Get-AppxPackageManifest).Package
    $id = $m.Applications.Application.Id | Select-Object -First 1
    $disp = [string]$m.Properties.DisplayName
  } catch {}
  "{0}|{1}|{2}|{3}" -f $_.Name, $disp, $_.PackageFamilyName, $id
}`

// List enumerates the installed packages for the current user, sorted by
// name.
func List() ([]Package, error) {
	cmd := exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", listScript)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("appx: enumerate packages: %w", err)
	}
	pkgs := parsePackageList(string(out))
	sort.Slice(pkgs, func(i, j int) bool {
		return strings.ToLower(pkgs[i].Name) < strings.ToLower(pkgs[j].Name)
	})
	return pkgs, nil
}
