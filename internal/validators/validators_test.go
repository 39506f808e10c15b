package validators

import (
	"testing"
)

func strPtr(s string) *string { return &s }

func TestValidateRename(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain", "report.pdf", false},
		{"trimmed", "  report.pdf ", false},
		{"blank", "   ", true},
		{"separator", "a/b", true},
		{"dot dot", "..", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &RenameRequest{Name: tt.input}
			errs := ValidateRename(req)
			if (len(errs) > 0) != tt.wantErr {
				t.Errorf("ValidateRename(%q) errors = %v, wantErr %v", tt.input, errs, tt.wantErr)
			}
		})
	}
}

func TestValidateRename_BlankMessage(t *testing.T) {
	errs := ValidateRename(&RenameRequest{Name: ""})
	if len(errs) != 1 {
		t.Fatalf("Expected one error, got %v", errs)
	}
	if errs.Details()["Name"] != "Name is required" {
		t.Errorf("Unexpected message %q", errs.Details()["Name"])
	}
}

func TestValidateMove(t *testing.T) {
	if errs := ValidateMove(&MoveRequest{FolderID: strPtr("not-an-id")}); len(errs) == 0 {
		t.Error("Expected malformed folder id to fail")
	}

	req := &MoveRequest{FolderID: strPtr("65a000000000000000000001")}
	if errs := ValidateMove(req); len(errs) != 0 {
		t.Fatalf("Unexpected errors %v", errs)
	}
	if target := req.Target(); target == nil || target.Hex() != "65a000000000000000000001" {
		t.Errorf("Unexpected target %v", target)
	}

	root := &MoveRequest{}
	if errs := ValidateMove(root); len(errs) != 0 || root.Target() != nil {
		t.Errorf("Expected move to root, got errs=%v target=%v", errs, root.Target())
	}

	alias := "root"
	named := &MoveRequest{FolderID: &alias}
	if errs := ValidateMove(named); len(errs) != 0 || named.Target() != nil {
		t.Errorf("Expected root alias to resolve to root, got errs=%v target=%v", errs, named.Target())
	}
}

func TestValidateRegister(t *testing.T) {
	req := &RegisterRequest{Email: " Ada@Example.COM ", Password: "password1"}
	if errs := ValidateRegister(req); len(errs) != 0 {
		t.Fatalf("Unexpected errors %v", errs)
	}
	if req.Email != "ada@example.com" {
		t.Errorf("Expected normalized email, got %q", req.Email)
	}

	errs := ValidateRegister(&RegisterRequest{Email: "nope", Password: "short"})
	details := errs.Details()
	if details["Email"] == "" || details["Password"] == "" {
		t.Errorf("Expected email and password errors, got %v", details)
	}
}

func TestParseObjectID(t *testing.T) {
	for _, root := range []string{"", " ", "null", "root"} {
		id, err := ParseObjectID(root)
		if err != nil || id != nil {
			t.Errorf("ParseObjectID(%q) = %v, %v; want root", root, id, err)
		}
	}
	if _, err := ParseObjectID("xyz"); err != ErrInvalidObjectID {
		t.Errorf("Expected ErrInvalidObjectID, got %v", err)
	}
}

func TestValidateUpdateProfile(t *testing.T) {
	if errs := ValidateUpdateProfile(&UpdateProfileRequest{AvatarURL: strPtr("not a url")}); len(errs) == 0 {
		t.Error("Expected invalid avatar url to fail")
	}
	req := &UpdateProfileRequest{FullName: strPtr("  Ada  ")}
	if errs := ValidateUpdateProfile(req); len(errs) != 0 {
		t.Fatalf("Unexpected errors %v", errs)
	}
	if *req.FullName != "Ada" {
		t.Errorf("Expected trimmed name, got %q", *req.FullName)
	}
}
