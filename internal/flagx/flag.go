// Package flagx lets several config loaders share one command line: each
// loader picks out only the flags it owns and parses them on a private
// FlagSet.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// configFileFlags are the spellings accepted for the JSON config path.
var configFileFlags = []string{"-c", "-config", "--config"}

// FilterArgs keeps only the flags listed in allowedFlags, together with their
// values. Both "-a value" and "-a=value" forms are recognized. A token that
// starts with "-" is never consumed as a value.
//
// The result is never nil.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, ok := strings.Cut(arg, "="); ok && strings.HasPrefix(arg, "-") {
			if _, keep := allowed[name]; keep {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, keep := allowed[arg]; !keep {
			continue
		}
		filtered = append(filtered, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// ConfigFileFlag returns the JSON config path given on the command line via
// -c, -config or --config, or "" when none is present. The last occurrence wins.
func ConfigFileFlag() string {
	return configFileFrom(os.Args[1:])
}

func configFileFrom(args []string) string {
	var path string

	fs := flag.NewFlagSet("config-file", flag.ContinueOnError)
	fs.SetOutput(discard{})
	fs.StringVar(&path, "config", "", "path to JSON config file")
	fs.StringVar(&path, "c", "", "path to JSON config file (short)")
	_ = fs.Parse(FilterArgs(args, configFileFlags))

	return path
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
