package models

import "testing"

func TestNormalizeRole(t *testing.T) {
	tests := []struct {
		input string
		want  Role
		ok    bool
	}{
		{"admin", RoleAdmin, true},
		{"Admin", RoleAdmin, true},
		{"ADMIN", RoleAdmin, true},
		{"owner", RoleOwner, true},
		{"store_owner", RoleOwner, true},
		{"Owner", RoleOwner, true},
		{"user", RoleNormalUser, true},
		{"normal user", RoleNormalUser, true},
		{"Normal User", RoleNormalUser, true},
		{"customer", RoleNormalUser, true},
		{"  admin  ", RoleAdmin, true},
		{"superuser", "", false},
		{"", "", false},
		{"merchant", "", false},
	}

	for _, tt := range tests {
		got, ok := NormalizeRole(tt.input)
		if ok != tt.ok || got != tt.want {
			t.Errorf("NormalizeRole(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRoleExternal(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleAdmin, "admin"},
		{RoleOwner, "store_owner"},
		{RoleNormalUser, "user"},
	}

	for _, tt := range tests {
		if got := tt.role.External(); got != tt.want {
			t.Errorf("%q.External() = %q, want %q", tt.role, got, tt.want)
		}
	}
}

func TestRoleRoundTrip(t *testing.T) {
	for _, role := range []Role{RoleAdmin, RoleOwner, RoleNormalUser} {
		got, ok := NormalizeRole(role.External())
		if !ok || got != role {
			t.Errorf("round trip of %q via %q failed: got (%q, %v)", role, role.External(), got, ok)
		}
	}
}
