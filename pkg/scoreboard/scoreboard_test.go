package scoreboard

import "testing"

func TestRegisterNewTeam(t *testing.T) {
	b := NewBoard()
	team, err := b.RegisterNewTeam("roam_Steve")
	if err != nil {
		t.Fatalf("RegisterNewTeam error: %v", err)
	}
	if team.Name() != "roam_Steve" || team.DisplayName() != "roam_Steve" {
		t.Errorf("team = %q/%q", team.Name(), team.DisplayName())
	}
	if _, err := b.RegisterNewTeam("roam_Steve"); err == nil {
		t.Error("duplicate team registered")
	}
	if got, ok := b.Team("roam_Steve"); !ok || got != team {
		t.Error("Team lookup failed")
	}
	if _, err := b.RegisterNewTeam(""); err == nil {
		t.Error("empty team name registered")
	}

	team.SetDisplayName("Shadows of the Overworld")
	if got := team.DisplayName(); got != "Shadows of the O" {
		t.Errorf("DisplayName = %q, want it clamped to 16 runes", got)
	}
}

func TestTeamNameTruncated(t *testing.T) {
	b := NewBoard()
	team, err := b.RegisterNewTeam("roam_AVeryLongPlayerName")
	if err != nil {
		t.Fatalf("RegisterNewTeam error: %v", err)
	}
	if team.Name() != "roam_AVeryLongPl" {
		t.Errorf("Name = %q", team.Name())
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"short", "short"},
		{"exactly16chars!!", "exactly16chars!!"},
		{"seventeen chars!!", "seventeen chars!"},
		{"ääääääääääääääääää", "ääääääääääääääää"},
	}
	for _, tt := range tests {
		if got := Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTeamEntries(t *testing.T) {
	b := NewBoard()
	team, _ := b.RegisterNewTeam("t")
	team.SetPrefix("[VIP] ")
	team.SetSuffix(" *")
	team.AddEntry("Bob")
	team.AddEntry("Bob")
	team.AddEntry("Alice")
	if got := team.Entries(); len(got) != 2 || got[0] != "Bob" || got[1] != "Alice" {
		t.Errorf("Entries = %v", got)
	}
	if team.Prefix() != "[VIP] " || team.Suffix() != " *" {
		t.Errorf("prefix/suffix = %q/%q", team.Prefix(), team.Suffix())
	}
	if teams := b.Teams(); len(teams) != 1 || teams[0] != team {
		t.Errorf("Teams = %v", teams)
	}
}
