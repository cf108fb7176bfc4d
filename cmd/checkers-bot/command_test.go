package main

import (
	"reflect"
	"testing"
)

func TestParseCommand(t *testing.T) {
	cases := []struct {
		in   string
		ok   bool
		want command
	}{
		{in: "hello", ok: false},
		{in: "!chess start", ok: false},
		{in: "!checkers", ok: true, want: command{sub: "help"}},
		{in: " !CHECKERS Status ", ok: true, want: command{sub: "status", args: []string{}}},
		{in: "!checkers c3-d4", ok: true, want: command{sub: "move", args: []string{"c3-d4"}}},
		{in: "!checkers hint C3", ok: true, want: command{sub: "hint", args: []string{"C3"}}},
		{in: "!checkers start @bob black example", ok: true, want: command{sub: "start", args: []string{"@bob", "black", "example"}}},
		{in: "!checkers replay\nC3-D4\r\nF6-E5\n", ok: true, want: command{sub: "replay", args: []string{}, body: "C3-D4\r\nF6-E5"}},
	}
	for _, tc := range cases {
		got, ok := parseCommand("!", tc.in)
		if ok != tc.ok {
			t.Errorf("parseCommand(%q) ok = %v", tc.in, ok)
			continue
		}
		if ok && !reflect.DeepEqual(got, tc.want) {
			t.Errorf("parseCommand(%q) = %#v, want %#v", tc.in, got, tc.want)
		}
	}
}

func TestStartArgs(t *testing.T) {
	target, color, layout := startArgs([]string{"@bob"})
	if target != "@bob" || color != "random" || layout != "standard" {
		t.Fatalf("defaults: %q %q %q", target, color, layout)
	}
	_, color, layout = startArgs([]string{"@bob", "EXAMPLE", "w"})
	if color != "w" || layout != "example" {
		t.Fatalf("overrides: %q %q", color, layout)
	}
}
