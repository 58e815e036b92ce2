// Package protocol defines the newline-delimited ASCII command protocol
// spoken between a host and a stepbank firmware over a serial console.
//
// Commands are a keyword followed by space-separated decimal arguments:
//
//	ping                  liveness check
//	count                 report the number of motors
//	move <index> <steps>  step one motor by a signed amount
//	movel <d0> <d1> ...   coordinated move, one signed delta per motor
//	home                  return every motor to position zero
//	rpm <n>               set speed in revolutions per minute
//	rads <n>              set speed in radians per second
//	enable | disable      drive the chain's output-enable line
//	clear                 pulse the chain's master-reclear line
//	resize <n>            reallocate the bank for n motors
//
// Every command is answered with a single reply line: "ok", "ok <detail>"
// or "error <message>".
package protocol

import (
	"errors"
	"strconv"
	"strings"
)

// Kind identifies a command.
type Kind uint8

const (
	CmdPing Kind = iota
	CmdCount
	CmdMove
	CmdMoveList
	CmdHome
	CmdSpeedRPM
	CmdSpeedRadPerSec
	CmdEnable
	CmdDisable
	CmdClear
	CmdResize
)

// keyword lookup table, also the canonical wire spelling.
var keywords = map[Kind]string{
	CmdPing:           "ping",
	CmdCount:          "count",
	CmdMove:           "move",
	CmdMoveList:       "movel",
	CmdHome:           "home",
	CmdSpeedRPM:       "rpm",
	CmdSpeedRadPerSec: "rads",
	CmdEnable:         "enable",
	CmdDisable:        "disable",
	CmdClear:          "clear",
	CmdResize:         "resize",
}

// Command is one parsed command line. Only the fields relevant to the Kind
// are populated.
type Command struct {
	Kind   Kind
	Index  int     // move: motor index
	Steps  int32   // move: signed step count
	Deltas []int32 // movel: one signed delta per motor
	Value  uint32  // rpm, rads, resize
}

// Parse decodes a single command line. Leading and trailing whitespace is
// ignored; an empty line is an error.
func Parse(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, errors.New("empty command")
	}

	keyword, args := fields[0], fields[1:]
	switch keyword {
	case "ping", "count", "home", "enable", "disable", "clear":
		if len(args) != 0 {
			return Command{}, errors.New(keyword + " takes no arguments")
		}
		kind := CmdPing
		switch keyword {
		case "count":
			kind = CmdCount
		case "home":
			kind = CmdHome
		case "enable":
			kind = CmdEnable
		case "disable":
			kind = CmdDisable
		case "clear":
			kind = CmdClear
		}
		return Command{Kind: kind}, nil

	case "move":
		if len(args) != 2 {
			return Command{}, errors.New("move takes an index and a step count")
		}
		index, err := strconv.Atoi(args[0])
		if err != nil || index < 0 {
			return Command{}, errors.New("bad motor index " + strconv.Quote(args[0]))
		}
		steps, err := strconv.ParseInt(args[1], 10, 32)
		if err != nil {
			return Command{}, errors.New("bad step count " + strconv.Quote(args[1]))
		}
		return Command{Kind: CmdMove, Index: index, Steps: int32(steps)}, nil

	case "movel":
		if len(args) == 0 {
			return Command{}, errors.New("movel takes at least one delta")
		}
		deltas := make([]int32, len(args))
		for i, a := range args {
			d, err := strconv.ParseInt(a, 10, 32)
			if err != nil {
				return Command{}, errors.New("bad delta " + strconv.Quote(a))
			}
			deltas[i] = int32(d)
		}
		return Command{Kind: CmdMoveList, Deltas: deltas}, nil

	case "rpm", "rads", "resize":
		if len(args) != 1 {
			return Command{}, errors.New(keyword + " takes one value")
		}
		v, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return Command{}, errors.New("bad value " + strconv.Quote(args[0]))
		}
		kind := CmdSpeedRPM
		switch keyword {
		case "rads":
			kind = CmdSpeedRadPerSec
		case "resize":
			kind = CmdResize
		}
		return Command{Kind: kind, Value: uint32(v)}, nil
	}

	return Command{}, errors.New("unknown command " + strconv.Quote(keyword))
}

// Format encodes a command to its wire form, without the trailing newline.
func Format(c Command) string {
	keyword := keywords[c.Kind]
	switch c.Kind {
	case CmdMove:
		return keyword + " " + strconv.Itoa(c.Index) + " " + strconv.FormatInt(int64(c.Steps), 10)
	case CmdMoveList:
		var sb strings.Builder
		sb.WriteString(keyword)
		for _, d := range c.Deltas {
			sb.WriteByte(' ')
			sb.WriteString(strconv.FormatInt(int64(d), 10))
		}
		return sb.String()
	case CmdSpeedRPM, CmdSpeedRadPerSec, CmdResize:
		return keyword + " " + strconv.FormatUint(uint64(c.Value), 10)
	default:
		return keyword
	}
}

// ReplyOK builds a success reply, optionally carrying a detail value.
func ReplyOK(detail string) string {
	if detail == "" {
		return "ok"
	}
	return "ok " + detail
}

// ReplyError builds a failure reply.
func ReplyError(msg string) string {
	return "error " + msg
}

// ParseReply splits a reply line into its detail payload or error.
func ParseReply(line string) (string, error) {
	line = strings.TrimSpace(line)
	switch {
	case line == "ok":
		return "", nil
	case strings.HasPrefix(line, "ok "):
		return line[len("ok "):], nil
	case strings.HasPrefix(line, "error "):
		return "", errors.New(line[len("error "):])
	}
	return "", errors.New("malformed reply " + strconv.Quote(line))
}
