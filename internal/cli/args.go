// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strconv"
	"strings"
)

// =============================================================================
// ARG PARSER
// =============================================================================

// ArgParser provides unified argument parsing for CLI commands.
// It handles multiple flag formats consistently:
//   - Long flags: --flag value or --flag=value
//   - Short flags: -f value
//   - Boolean flags: --flag (no value needed)
//   - Positional arguments: arguments without flags
//   - Subcommands: first positional argument
type ArgParser struct {
	subcommand string
	flags      map[string]string
	boolFlags  map[string]bool
	positional []string
	raw        []string
}

// NewArgParser parses raw arguments into flags and positionals.
//
// Example:
//
//	args := NewArgParser([]string{"list", "--limit", "50", "--json"})
//	args.Subcommand()     // "list"
//	args.Flag("limit")    // "50"
//	args.BoolFlag("json") // true
func NewArgParser(raw []string) *ArgParser {
	p := &ArgParser{
		flags:     make(map[string]string),
		boolFlags: make(map[string]bool),
		raw:       raw,
	}

	i := 0
	for i < len(raw) {
		arg := raw[i]
		if !strings.HasPrefix(arg, "-") {
			p.positional = append(p.positional, arg)
			i++
			continue
		}

		if name, value, found := strings.Cut(strings.TrimLeft(arg, "-"), "="); found {
			if value == "true" || value == "false" {
				p.boolFlags[name] = value == "true"
			} else {
				p.flags[name] = value
			}
			i++
			continue
		}

		name := strings.TrimLeft(arg, "-")
		if i+1 < len(raw) && !strings.HasPrefix(raw[i+1], "-") && flagTakesValue(name) {
			p.flags[name] = raw[i+1]
			i += 2
		} else {
			p.boolFlags[name] = true
			i++
		}
	}

	if len(p.positional) > 0 {
		p.subcommand = p.positional[0]
	}
	return p
}

// flagTakesValue distinguishes value flags from boolean ones so that a
// positional argument after a boolean flag is not swallowed.
func flagTakesValue(name string) bool {
	switch name {
	case "limit", "l", "source", "interval", "backend", "config", "range":
		return true
	}
	return false
}

// Subcommand returns the first positional argument, or "".
func (p *ArgParser) Subcommand() string {
	return p.subcommand
}

// Flag returns the value of a string flag, or "".
func (p *ArgParser) Flag(names ...string) string {
	for _, name := range names {
		if v, ok := p.flags[name]; ok {
			return v
		}
	}
	return ""
}

// IntFlag returns the value of an integer flag, or the fallback.
func (p *ArgParser) IntFlag(fallback int, names ...string) int {
	v := p.Flag(names...)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// BoolFlag reports whether any of the named boolean flags was given.
func (p *ArgParser) BoolFlag(names ...string) bool {
	for _, name := range names {
		if p.boolFlags[name] {
			return true
		}
	}
	return false
}

// Positional returns positional arguments after the subcommand.
func (p *ArgParser) Positional() []string {
	if len(p.positional) <= 1 {
		return nil
	}
	return p.positional[1:]
}

// All returns every positional argument including the subcommand.
func (p *ArgParser) All() []string {
	return p.positional
}
