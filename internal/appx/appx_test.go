package appx

import "testing"

func TestParsePackageList(t *testing.T) {
	t.Parallel()

	out := "Example.Game|Example Game|Example.Game_abc123|App\r\n" +
		"\r\n" +
		"Plain.App||Plain.App_def456|App\n" +
		"broken line without separators\n" +
		"Missing.Family|Display||App\n" +
		"Res.App|ms-resource:AppTitle|Res.App_ghi789|App\n"

	pkgs := parsePackageList(out)
	if len(pkgs) != 3 {
		t.Fatalf("parsed %d packages, want 3: %+v", len(pkgs), pkgs)
	}

	if pkgs[0].FamilyName != "Example.Game_abc123" || pkgs[0].DisplayName != "Example Game" {
		t.Fatalf("first package: %+v", pkgs[0])
	}
	if got := pkgs[0].AppUserModelID(); got != "Example.Game_abc123!App" {
		t.Fatalf("AppUserModelID = %q", got)
	}
	if got := pkgs[0].OptionLabel(); got != "Example Game (Example.Game)" {
		t.Fatalf("OptionLabel = %q", got)
	}
	if got := pkgs[1].OptionLabel(); got != "Plain.App" {
		t.Fatalf("empty display name must fall back to the package name, label = %q", got)
	}
	if pkgs[2].DisplayName != "Res.App" {
		t.Fatalf("unresolved resource display name must fall back, got %+v", pkgs[2])
	}
}

func TestFind(t *testing.T) {
	t.Parallel()

	pkgs := []Package{
		{Name: "Example.Game", DisplayName: "Example Game", FamilyName: "Example.Game_abc123"},
		{Name: "Example.GameTools", FamilyName: "Example.GameTools_abc123"},
		{Name: "Other.App", FamilyName: "Other.App_def456"},
	}

	if got := Find(pkgs, "game"); len(got) != 2 {
		t.Fatalf("partial match found %d packages, want 2: %+v", len(got), got)
	}
	if got := Find(pkgs, "EXAMPLE.GAME"); len(got) != 1 || got[0].Name != "Example.Game" {
		t.Fatalf("exact name must short-circuit, got %+v", got)
	}
	if got := Find(pkgs, "nothing"); got != nil {
		t.Fatalf("expected no matches, got %+v", got)
	}
}

func TestParsePackageListEmpty(t *testing.T) {
	t.Parallel()

	if pkgs := parsePackageList(""); pkgs != nil {
		t.Fatalf("expected nil, got %+v", pkgs)
	}
}
