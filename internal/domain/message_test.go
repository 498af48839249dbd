package domain

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseDeleteMode(t *testing.T) {
	cases := []struct {
		in   string
		want DeleteMode
		ok   bool
	}{
		{"everyone", DeleteForEveryone, true},
		{"true", DeleteForEveryone, true},
		{"me", DeleteForMe, true},
		{"false", DeleteForMe, true},
		{"", "", false},
		{"all", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseDeleteMode(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseDeleteMode(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestMessageHasContent(t *testing.T) {
	text := "hi"
	empty := ""
	url := "https://cdn.example.com/a.jpg"

	cases := []struct {
		name string
		msg  Message
		want bool
	}{
		{"text only", Message{Message: &text}, true},
		{"image only", Message{ImageURL: &url}, true},
		{"both", Message{Message: &text, ImageURL: &url}, true},
		{"nil fields", Message{}, false},
		{"empty strings", Message{Message: &empty, ImageURL: &empty}, false},
	}
	for _, tc := range cases {
		if got := tc.msg.HasContent(); got != tc.want {
			t.Errorf("%s: HasContent() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestMessageHiddenBy(t *testing.T) {
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()

	msg := Message{HiddenFor: []primitive.ObjectID{alice}}
	if !msg.HiddenBy(alice) {
		t.Error("alice should see the message as hidden")
	}
	if msg.HiddenBy(bob) {
		t.Error("bob should not see the message as hidden")
	}
}
