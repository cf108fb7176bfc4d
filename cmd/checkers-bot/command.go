package main

import (
	"strings"
)

const commandWord = "checkers"

type command struct {
	sub  string
	args []string
	body string
}

// parseCommand splits "<prefix>checkers <sub> <args...>" from its first line;
// the remaining lines become body (used by replay).
func parseCommand(prefix, text string) (command, bool) {
	text = strings.TrimSpace(text)
	if prefix == "" || !strings.HasPrefix(text, prefix) {
		return command{}, false
	}
	head, body, _ := strings.Cut(strings.TrimPrefix(text, prefix), "\n")
	fields := strings.Fields(head)
	if len(fields) == 0 || !strings.EqualFold(fields[0], commandWord) {
		return command{}, false
	}
	cmd := command{sub: "help", body: strings.TrimSpace(body)}
	if len(fields) > 1 {
		cmd.sub = strings.ToLower(fields[1])
		cmd.args = fields[2:]
		// bare move, e.g. C3-D4
		if looksLikeMove(fields[1]) {
			cmd.sub = "move"
			cmd.args = fields[1:]
		}
	}
	return cmd, true
}

func looksLikeMove(s string) bool {
	return len(s) == 5 && (s[2] == '-' || s[2] == ':')
}

// startArgs reads "@user [white|black|random] [example]".
func startArgs(args []string) (target, color, layout string) {
	color = "random"
	layout = "standard"
	for i, a := range args {
		if i == 0 {
			target = a
			continue
		}
		switch v := strings.ToLower(a); v {
		case "white", "w", "black", "b", "random":
			color = v
		case "example", "standard":
			layout = v
		}
	}
	return target, color, layout
}
