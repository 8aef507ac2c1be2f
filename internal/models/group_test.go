package models

import "testing"

func TestCanRemove(t *testing.T) {
	tests := []struct {
		name   string
		actor  GroupRole
		target GroupRole
		want   bool
	}{
		{"owner removes admin", RoleOwner, RoleAdmin, true},
		{"owner removes member", RoleOwner, RoleMember, true},
		{"owner removes owner", RoleOwner, RoleOwner, false},
		{"admin removes member", RoleAdmin, RoleMember, true},
		{"admin removes admin", RoleAdmin, RoleAdmin, false},
		{"admin removes owner", RoleAdmin, RoleOwner, false},
		{"member removes member", RoleMember, RoleMember, false},
		{"outsider removes member", RoleNone, RoleMember, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanRemove(tc.actor, tc.target); got != tc.want {
				t.Errorf("CanRemove(%s, %s) = %v, want %v", tc.actor, tc.target, got, tc.want)
			}
		})
	}
}

func TestCanView(t *testing.T) {
	if !CanView(GroupPublic, RoleNone) {
		t.Error("Expected public groups to be visible to outsiders")
	}
	if CanView(GroupPrivate, RoleNone) {
		t.Error("Expected private groups to be hidden from outsiders")
	}
	if !CanView(GroupPrivate, RoleMember) {
		t.Error("Expected private groups to be visible to members")
	}
}

func TestParseGroupType(t *testing.T) {
	if _, err := ParseGroupType("public"); err != nil {
		t.Errorf("Expected public to parse, got %v", err)
	}
	if _, err := ParseGroupType("secret"); err == nil {
		t.Error("Expected unknown type to fail")
	}
}
