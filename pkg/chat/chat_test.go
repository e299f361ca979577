package chat

import (
	"encoding/json"
	"testing"
)

func TestString(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want string
	}{
		{"text", Text("hi"), `{"text":"hi"}`},
		{"colored", Colored("hi", "yellow"), `{"text":"hi","color":"yellow"}`},
		{"empty", Message{}, `{"text":""}`},
		{"translate key", Translate("multiplayer.player.left", Text("Alex")), `{"translate":"multiplayer.player.left","with":[{"text":"Alex"}]}`},
		{
			"translate",
			Message{Translate: "multiplayer.player.joined", With: []Message{Text("Steve")}, Color: "yellow"},
			`{"translate":"multiplayer.player.joined","with":[{"text":"Steve"}],"color":"yellow"}`,
		},
		{
			"join",
			Join(Colored("<Steve> ", "white"), Text("hello")),
			`{"text":"","extra":[{"text":"\u003cSteve\u003e ","color":"white"},{"text":"hello"}]}`,
		},
	}
	for _, tt := range tests {
		if got := tt.msg.String(); got != tt.want {
			t.Errorf("%s: String() = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestEscapedTextDecodes(t *testing.T) {
	var got Message
	if err := json.Unmarshal([]byte(Join(Colored("<Steve> ", "white")).String()), &got); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if len(got.Extra) != 1 || got.Extra[0].Text != "<Steve> " {
		t.Errorf("decoded = %+v", got)
	}
}
