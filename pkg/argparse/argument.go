package argparse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// Action defines what an optional flag does with the values it receives.
type Action int

const (
	// ActionStore keeps the last value given.
	ActionStore Action = iota
	// ActionStoreTrue stores true when the flag is present.
	ActionStoreTrue
	// ActionAppend collects every occurrence as a []string. Values are never
	// split on commas, so "-e list=[1,2]" stays one value.
	ActionAppend
	// ActionCount counts occurrences (-vvv).
	ActionCount
)

// Type is the value type of an ActionStore flag or of a single positional.
type Type int

const (
	TypeString Type = iota
	TypeInt
	TypeFloat
	TypeBool
)

// NArgs is the arity of a positional argument.
type NArgs string

const (
	// NArgsOne consumes exactly one token.
	NArgsOne NArgs = ""
	// NArgsOptional consumes one token when available.
	NArgsOptional NArgs = "?"
	// NArgsZeroOrMore consumes any number of tokens.
	NArgsZeroOrMore NArgs = "*"
	// NArgsOneOrMore consumes at least one token.
	NArgsOneOrMore NArgs = "+"
	// NArgsRemainder consumes every remaining token as-is.
	NArgsRemainder NArgs = "..."
)

// Argument describes a flag or positional argument to register on a Parser.
//
// Flags whose entries start with a dash ("-c", "--config") define an optional
// flag; a single entry without a dash ("target") defines a positional.
type Argument struct {
	Flags    []string
	Dest     string
	Action   Action
	Type     Type
	NArgs    NArgs
	Default  any
	Required bool
	Help     string
	Metavar  string
}

// argument is a registered Argument with its resolved names.
type argument struct {
	Argument
	long       string
	short      string
	positional bool
}

func resolveArgument(arg Argument) (*argument, error) {
	if len(arg.Flags) == 0 {
		return nil, fmt.Errorf("argument needs at least one flag or a positional name")
	}

	resolved := &argument{Argument: arg}

	if !strings.HasPrefix(arg.Flags[0], "-") {
		if len(arg.Flags) > 1 {
			return nil, fmt.Errorf("positional argument %q cannot have more than one name", arg.Flags[0])
		}
		resolved.positional = true
		if resolved.Dest == "" {
			resolved.Dest = arg.Flags[0]
		}
		return resolved, nil
	}

	for _, flag := range arg.Flags {
		switch {
		case strings.HasPrefix(flag, "--") && len(flag) > 2:
			if resolved.long == "" {
				resolved.long = flag[2:]
			}
		case strings.HasPrefix(flag, "-") && len(flag) == 2 && flag[1] != '-':
			if resolved.short == "" {
				resolved.short = flag[1:]
			}
		default:
			return nil, fmt.Errorf("invalid option string %q: must be -x or --name", flag)
		}
	}

	if resolved.long == "" {
		// pflag needs a long name for every flag.
		resolved.long = resolved.short
	}

	if resolved.Dest == "" {
		resolved.Dest = strings.ReplaceAll(resolved.long, "-", "_")
	}

	if arg.Action == ActionAppend && arg.Type != TypeString {
		return nil, fmt.Errorf("flag --%s: append action only collects strings", resolved.long)
	}

	return resolved, nil
}

// register defines the flag on fs.
func (a *argument) register(fs *pflag.FlagSet) {
	help := a.Help
	switch a.Action {
	case ActionStoreTrue:
		fs.BoolP(a.long, a.short, false, help)
	case ActionCount:
		fs.CountP(a.long, a.short, help)
	case ActionAppend:
		fs.StringArrayP(a.long, a.short, nil, help)
	default:
		switch a.Type {
		case TypeInt:
			def, _ := a.Default.(int)
			fs.IntP(a.long, a.short, def, help)
		case TypeFloat:
			def, _ := a.Default.(float64)
			fs.Float64P(a.long, a.short, def, help)
		case TypeBool:
			def, _ := a.Default.(bool)
			fs.BoolP(a.long, a.short, def, help)
		default:
			def, _ := a.Default.(string)
			fs.StringP(a.long, a.short, def, help)
		}
	}
}

// defaultValue is what lands in the namespace when the flag was not given.
func (a *argument) defaultValue() any {
	if a.Default != nil {
		return a.Default
	}
	switch a.Action {
	case ActionStoreTrue:
		return false
	case ActionCount:
		return 0
	}
	return nil
}

// value reads the parsed flag value from fs.
func (a *argument) value(fs *pflag.FlagSet) (any, bool, error) {
	flag := fs.Lookup(a.long)
	if flag == nil || !flag.Changed {
		return a.defaultValue(), false, nil
	}

	var (
		v   any
		err error
	)
	switch a.Action {
	case ActionStoreTrue:
		v, err = fs.GetBool(a.long)
	case ActionCount:
		v, err = fs.GetCount(a.long)
	case ActionAppend:
		v, err = fs.GetStringArray(a.long)
	default:
		switch a.Type {
		case TypeInt:
			v, err = fs.GetInt(a.long)
		case TypeFloat:
			v, err = fs.GetFloat64(a.long)
		case TypeBool:
			v, err = fs.GetBool(a.long)
		default:
			v, err = fs.GetString(a.long)
		}
	}
	return v, true, err
}

// optionString is the user facing name of a flag, used in error messages.
func (a *argument) optionString() string {
	if a.positional {
		return a.Flags[0]
	}
	return "--" + a.long
}

// minTokens is the number of tokens a positional needs at least.
func (a *argument) minTokens() int {
	switch a.NArgs {
	case NArgsOne, NArgsOneOrMore:
		return 1
	default:
		return 0
	}
}

// metavar renders a positional for the usage line.
func (a *argument) metavar() string {
	name := a.Metavar
	if name == "" {
		name = a.Flags[0]
	}
	switch a.NArgs {
	case NArgsOptional:
		return "[" + name + "]"
	case NArgsZeroOrMore:
		return "[" + name + "...]"
	case NArgsOneOrMore:
		return name + " [" + name + "...]"
	case NArgsRemainder:
		return "..."
	default:
		return name
	}
}

// convert applies the argument's Type to a single positional token.
func (a *argument) convert(token string) (any, error) {
	switch a.Type {
	case TypeInt:
		v, err := strconv.Atoi(token)
		if err != nil {
			return nil, fmt.Errorf("argument %s: invalid int value: %q", a.optionString(), token)
		}
		return v, nil
	case TypeFloat:
		v, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return nil, fmt.Errorf("argument %s: invalid float value: %q", a.optionString(), token)
		}
		return v, nil
	case TypeBool:
		v, err := strconv.ParseBool(token)
		if err != nil {
			return nil, fmt.Errorf("argument %s: invalid bool value: %q", a.optionString(), token)
		}
		return v, nil
	default:
		return token, nil
	}
}

// bindPositionals distributes tokens over the positionals in declaration
// order and returns the tokens nobody consumed.
func bindPositionals(ns Namespace, positionals []*argument, tokens []string) ([]string, error) {
	rest := tokens
	for i, pos := range positionals {
		reserved := 0
		for _, next := range positionals[i+1:] {
			reserved += next.minTokens()
		}
		available := len(rest) - reserved

		switch pos.NArgs {
		case NArgsOne:
			if available < 1 {
				return rest, fmt.Errorf("the following arguments are required: %s", pos.optionString())
			}
			v, err := pos.convert(rest[0])
			if err != nil {
				return rest, err
			}
			ns[pos.Dest] = v
			rest = rest[1:]
		case NArgsOptional:
			if available >= 1 {
				v, err := pos.convert(rest[0])
				if err != nil {
					return rest, err
				}
				ns[pos.Dest] = v
				rest = rest[1:]
			} else {
				ns[pos.Dest] = pos.Default
			}
		case NArgsZeroOrMore, NArgsOneOrMore:
			if available < pos.minTokens() {
				return rest, fmt.Errorf("the following arguments are required: %s", pos.optionString())
			}
			if available < 0 {
				available = 0
			}
			if available == 0 && pos.Default != nil {
				ns[pos.Dest] = pos.Default
			} else {
				ns[pos.Dest] = append([]string{}, rest[:available]...)
			}
			rest = rest[available:]
		case NArgsRemainder:
			ns[pos.Dest] = append([]string{}, rest...)
			rest = nil
		default:
			return rest, fmt.Errorf("argument %s: unsupported nargs %q", pos.optionString(), pos.NArgs)
		}
	}
	return rest, nil
}
