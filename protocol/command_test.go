package protocol

import (
	"testing"
)

func TestParseFormatRoundTrip(t *testing.T) {
	testCases := []Command{
		{Kind: CmdPing},
		{Kind: CmdCount},
		{Kind: CmdHome},
		{Kind: CmdEnable},
		{Kind: CmdDisable},
		{Kind: CmdClear},
		{Kind: CmdMove, Index: 0, Steps: 100},
		{Kind: CmdMove, Index: 42, Steps: -250},
		{Kind: CmdMoveList, Deltas: []int32{2, -1, 0}},
		{Kind: CmdMoveList, Deltas: []int32{-1000000}},
		{Kind: CmdSpeedRPM, Value: 60},
		{Kind: CmdSpeedRadPerSec, Value: 3},
		{Kind: CmdResize, Value: 128},
	}

	for _, expected := range testCases {
		line := Format(expected)
		decoded, err := Parse(line)
		if err != nil {
			t.Errorf("Parse(%q) failed: %v", line, err)
			continue
		}
		if decoded.Kind != expected.Kind {
			t.Errorf("Parse(%q): kind %d, want %d", line, decoded.Kind, expected.Kind)
		}
		if decoded.Index != expected.Index || decoded.Steps != expected.Steps || decoded.Value != expected.Value {
			t.Errorf("Parse(%q): got %+v, want %+v", line, decoded, expected)
		}
		if len(decoded.Deltas) != len(expected.Deltas) {
			t.Errorf("Parse(%q): %d deltas, want %d", line, len(decoded.Deltas), len(expected.Deltas))
			continue
		}
		for i := range expected.Deltas {
			if decoded.Deltas[i] != expected.Deltas[i] {
				t.Errorf("Parse(%q): delta %d is %d, want %d", line, i, decoded.Deltas[i], expected.Deltas[i])
			}
		}
	}
}

func TestParseBareKeywords(t *testing.T) {
	testCases := []struct {
		line string
		kind Kind
	}{
		{"ping", CmdPing},
		{"count", CmdCount},
		{"home", CmdHome},
		{"enable", CmdEnable},
		{"disable", CmdDisable},
		{"clear", CmdClear},
	}

	for _, tc := range testCases {
		cmd, err := Parse(tc.line)
		if err != nil {
			t.Errorf("Parse(%q) failed: %v", tc.line, err)
			continue
		}
		if cmd.Kind != tc.kind {
			t.Errorf("Parse(%q): kind %d, want %d", tc.line, cmd.Kind, tc.kind)
		}
	}
}

func TestParseWhitespace(t *testing.T) {
	cmd, err := Parse("  move   1    -5 \r")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cmd.Kind != CmdMove || cmd.Index != 1 || cmd.Steps != -5 {
		t.Errorf("got %+v", cmd)
	}
}

func TestParseErrors(t *testing.T) {
	testCases := []string{
		"",
		"   ",
		"bogus",
		"ping 1",
		"home now",
		"move",
		"move 1",
		"move 1 2 3",
		"move x 5",
		"move -1 5",
		"move 1 many",
		"movel",
		"movel 1 x",
		"rpm",
		"rpm -60",
		"rpm fast",
		"resize 1 2",
	}

	for _, line := range testCases {
		if _, err := Parse(line); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", line)
		}
	}
}

func TestReplies(t *testing.T) {
	if got := ReplyOK(""); got != "ok" {
		t.Errorf("ReplyOK(\"\")=%q", got)
	}
	if got := ReplyOK("3"); got != "ok 3" {
		t.Errorf("ReplyOK(\"3\")=%q", got)
	}
	if got := ReplyError("bad index"); got != "error bad index" {
		t.Errorf("ReplyError=%q", got)
	}
}

func TestParseReply(t *testing.T) {
	detail, err := ParseReply("ok")
	if err != nil || detail != "" {
		t.Errorf("ParseReply(ok): %q, %v", detail, err)
	}

	detail, err = ParseReply("ok 12\r\n")
	if err != nil || detail != "12" {
		t.Errorf("ParseReply(ok 12): %q, %v", detail, err)
	}

	if _, err = ParseReply("error no enable line"); err == nil {
		t.Error("ParseReply(error ...) must return the error")
	} else if err.Error() != "no enable line" {
		t.Errorf("ParseReply error message %q", err.Error())
	}

	if _, err = ParseReply("???"); err == nil {
		t.Error("malformed reply must fail")
	}
}
