package search

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxOptLevel is the highest accepted -O level.
const MaxOptLevel = 3

// DebugOpts is a set of -D diagnostics.
type DebugOpts uint16

const (
	DebugExec   DebugOpts = 1 << iota // Log every leaf test and its outcome
	DebugOpt                          // Log the parsed expression tree
	DebugRates                        // Log throttled progress while walking
	DebugSearch                       // Log every directory listed
	DebugStat                         // Log final traversal statistics
	DebugTree                         // Prefix result lines with tree connectors
	DebugHelp                         // Print the debug options and exit

	DebugAll = DebugExec | DebugOpt | DebugRates | DebugSearch | DebugStat | DebugTree
)

var debugNames = []struct {
	name string
	opt  DebugOpts
	help string
}{
	{"exec", DebugExec, "log every test evaluated and its result"},
	{"opt", DebugOpt, "log the parsed expression"},
	{"rates", DebugRates, "log traversal rates while searching"},
	{"search", DebugSearch, "log every directory as it is listed"},
	{"stat", DebugStat, "log traversal statistics when done"},
	{"tree", DebugTree, "render results with tree connectors"},
	{"all", DebugAll, "enable every option above"},
	{"help", DebugHelp, "print this list"},
}

// ParseDebugOpts parses a comma separated list of debug option names.
func ParseDebugOpts(s string) (DebugOpts, error) {
	var opts DebugOpts
	for _, field := range strings.Split(s, ",") {
		field = strings.ToLower(strings.TrimSpace(field))
		if field == "" {
			continue
		}
		found := false
		for _, d := range debugNames {
			if d.name == field {
				opts |= d.opt
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("%w: %q (try -D help)", ErrInvalidDebugOpt, field)
		}
	}
	return opts, nil
}

// Has reports whether every option in o is set.
func (d DebugOpts) Has(o DebugOpts) bool {
	return o != 0 && d&o == o
}

// String lists the set options, comma separated.
func (d DebugOpts) String() string {
	var names []string
	for _, n := range debugNames {
		if n.opt == DebugAll {
			continue
		}
		if d.Has(n.opt) {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, ",")
}

// DebugHelpText describes every debug option.
func DebugHelpText() string {
	var sb strings.Builder
	sb.WriteString("Valid arguments for -D:\n")
	for _, d := range debugNames {
		fmt.Fprintf(&sb, "  %-7s %s\n", d.name, d.help)
	}
	return sb.String()
}

// ParseOptLevel parses a -O value.
func ParseOptLevel(s string) (uint8, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 8)
	if err != nil || n > MaxOptLevel {
		return 0, fmt.Errorf("%w: %q (expected 0-%d)", ErrInvalidOptLevel, s, MaxOptLevel)
	}
	return uint8(n), nil
}
