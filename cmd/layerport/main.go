// Package main is the entry point for the layerport settings tool.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/layerport/layerport/internal/app"
	"github.com/layerport/layerport/internal/setting"
	"github.com/layerport/layerport/internal/setting/persist"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		settingsPath   string
		definitionPath string
		logLevel       string
		get            string
		set            multiFlag
		reset          bool
		list           bool
		showVersion    bool
	)

	flag.StringVar(&settingsPath, "settings", "", "Path to the persistent settings file")
	flag.StringVar(&definitionPath, "definition", "", "Lua script defining the settings tree")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.StringVar(&get, "get", "", "Print the value of the setting at the given path")
	flag.Var(&set, "set", "Assign path=value (repeatable)")
	flag.BoolVar(&reset, "reset", false, "Reset settings to their defaults")
	flag.BoolVar(&list, "list", false, "List all settings and their values")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "layerport - batch layer export settings tool\n\n")
		fmt.Fprintf(os.Stderr, "Usage: layerport [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  layerport -list                                  Show all settings\n")
		fmt.Fprintf(os.Stderr, "  layerport -get main/file_extension               Print one value\n")
		fmt.Fprintf(os.Stderr, "  layerport -set main/file_extension=jpg          Assign and save\n")
		fmt.Fprintf(os.Stderr, "  layerport -reset                                 Restore defaults\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("layerport %s (%s)\n", version, commit)
		return 0
	}

	application, err := app.New(app.Options{
		SettingsPath:   settingsPath,
		DefinitionPath: definitionPath,
		LogLevel:       logLevel,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer application.Close()

	if result := application.Load(); result.Status == persist.ReadFail {
		fmt.Fprintf(os.Stderr, "Error: %s\n", result.Message)
		return 1
	}

	settings := application.Settings()

	if reset {
		application.Reset()
	}

	for _, assignment := range set {
		if err := applyAssignment(settings, assignment); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	if reset || len(set) > 0 {
		if result := application.Save(); result.Status != persist.Success {
			fmt.Fprintf(os.Stderr, "Error: %s\n", result.Message)
			return 1
		}
	}

	if get != "" {
		s, err := settings.SettingAt(get)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Println(formatValue(s.Value()))
	}

	if list {
		for _, entry := range settings.Values() {
			fmt.Printf("%s = %s\n", entry.Key, formatValue(entry.Value))
		}
	}

	return 0
}

// applyAssignment parses "path=value" and assigns the value, converting
// the literal to the setting's type.
func applyAssignment(settings *setting.Group, assignment string) error {
	path, literal, ok := strings.Cut(assignment, "=")
	if !ok {
		return fmt.Errorf("invalid assignment %q, expected path=value", assignment)
	}

	s, err := settings.SettingAt(path)
	if err != nil {
		return err
	}
	return s.SetValue(parseLiteral(s, literal))
}

// parseLiteral converts a command-line literal to the value type the
// setting expects. Unparseable literals pass through as strings so the
// setting's own validation reports them.
func parseLiteral(s *setting.Setting, literal string) any {
	switch s.TypeName() {
	case "int":
		if n, err := strconv.ParseInt(literal, 10, 64); err == nil {
			return n
		}
	case "float":
		if f, err := strconv.ParseFloat(literal, 64); err == nil {
			return f
		}
	case "bool":
		if b, err := strconv.ParseBool(literal); err == nil {
			return b
		}
	}
	return literal
}

func formatValue(v any) string {
	if v == nil {
		return "<unset>"
	}
	return fmt.Sprintf("%v", v)
}

// multiFlag collects repeated flag values.
type multiFlag []string

// String implements flag.Value.
func (m *multiFlag) String() string { return strings.Join(*m, ",") }

// Set implements flag.Value.
func (m *multiFlag) Set(value string) error {
	*m = append(*m, value)
	return nil
}
