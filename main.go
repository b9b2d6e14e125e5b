package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/mcncl/jsontyper/internal/config"
	"github.com/mcncl/jsontyper/internal/errors"
	"github.com/mcncl/jsontyper/internal/formatter"
	"github.com/mcncl/jsontyper/internal/logging"
	"github.com/mcncl/jsontyper/internal/runner"
	"github.com/mcncl/jsontyper/internal/schema"
	"github.com/mcncl/jsontyper/internal/source"
)

// Version information
const (
	Version = "0.2.0"
)

// Globals are flags shared by every command.
type Globals struct {
	Config   string `help:"Path to config file. Searched for upwards from the working directory when empty." short:"c" type:"path"`
	Lang     string `help:"Target language: rust or go." short:"l"`
	Package  string `help:"Package name for generated Go code." short:"p"`
	NoFormat bool   `help:"Skip formatting of the generated code."`
	Debug    bool   `help:"Enable debug logging." short:"d"`
}

// CLI defines the command-line interface
var CLI struct {
	Globals

	Generate GenerateCmd `cmd:"" default:"withargs" help:"Generate types from one JSON document (default)."`
	Batch    BatchCmd    `cmd:"" help:"Generate types for a directory of JSON files or the configured sources."`
	Watch    WatchCmd    `cmd:"" help:"Regenerate types whenever a JSON file in a directory changes."`
	Version  VersionCmd  `cmd:"" help:"Show version information."`
}

// GenerateCmd turns one document into source code.
type GenerateCmd struct {
	Input       string `help:"Path, file:// or http(s) URL of the input JSON. Reads stdin when empty." short:"i"`
	Output      string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	RootName    string `help:"Name for the root type." short:"r"`
	Query       string `help:"jq expression selecting the part of the input to type." short:"q"`
	Schema      bool   `help:"Treat the input as a JSON Schema document." short:"s"`
	AllOptional bool   `help:"Make every field optional." short:"a"`
	Singularize bool   `help:"Name array element types after the singular of the field."`
	Interactive bool   `help:"Run in interactive mode, allowing direct JSON input with Ctrl+D to process." short:"I"`
}

// BatchCmd generates one file per document.
type BatchCmd struct {
	Src     string `help:"Directory of .json files to mirror. Overrides src from the config file." type:"path"`
	Dist    string `help:"Output directory for the mirror. Overrides dist from the config file." type:"path"`
	Workers int    `help:"Number of documents generated at once. Overrides workers from the config file." short:"w"`
}

// WatchCmd mirrors a directory and keeps it up to date.
type WatchCmd struct {
	Src  string `help:"Directory of .json files to watch." type:"path"`
	Dist string `help:"Output directory." type:"path"`
}

// VersionCmd prints the version.
type VersionCmd struct{}

func main() {
	parser := kong.Must(&CLI,
		kong.Name("jsontyper"),
		kong.Description("A tool to turn JSON samples into Rust or Go type declarations"),
		kong.UsageOnError(),
	)

	ctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		parser.FatalIfErrorf(err)
	}

	// Without arguments there is nothing to read but the terminal.
	if len(os.Args) == 1 {
		CLI.Generate.Interactive = true
	}

	if err := ctx.Run(&CLI.Globals); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: jsontyper --help\n")
		os.Exit(1)
	}
}

// Run prints the version.
func (v *VersionCmd) Run() error {
	fmt.Printf("jsontyper version %s\n", Version)
	return nil
}

// Run executes the single-document pipeline.
func (g *GenerateCmd) Run(globals *Globals) error {
	cfg, cleanup, err := prepare(globals, config.Overrides{
		RootName:    g.RootName,
		AllOptional: g.AllOptional,
		Singularize: g.Singularize,
	})
	if err != nil {
		return err
	}
	defer func() { _ = cleanup() }()

	data, err := g.readInput(context.Background())
	if err != nil {
		return err
	}

	code, err := g.generate(cfg, data)
	if err != nil {
		return err
	}

	if cfg.Formatting.Enabled {
		code, err = formatter.Format(cfg.TargetLanguage(), code)
		if err != nil {
			return err
		}
	}

	return writeOutput(code, g.Output)
}

func (g *GenerateCmd) generate(cfg *config.Config, data []byte) (string, error) {
	if !g.Schema {
		gen, err := cfg.Generator()
		if err != nil {
			return "", err
		}
		return gen.Generate(string(data), cfg.RootName)
	}

	result, err := schema.Convert(schemaRoot(cfg, g.RootName), data)
	if err != nil {
		return "", err
	}
	b, err := cfg.Builder()
	if err != nil {
		return "", err
	}
	return result.Annotate(b).Build().RenderFile(result.Structures), nil
}

// schemaRoot leaves the root unnamed when nobody chose one so that the
// schema title can name it.
func schemaRoot(cfg *config.Config, flag string) string {
	if flag == "" && cfg.RootName == config.NewConfig().RootName {
		return ""
	}
	return cfg.RootName
}

// readInput reads JSON from a file, a URL or stdin and applies the query.
func (g *GenerateCmd) readInput(ctx context.Context) ([]byte, error) {
	if g.Input != "" {
		return source.Fetch(ctx, source.Spec{Name: g.Input, URL: g.Input, Query: g.Query})
	}

	data, err := readStdin(g.Interactive)
	if err != nil {
		return nil, err
	}
	if g.Query == "" {
		return data, nil
	}
	return source.Query(data, g.Query)
}

func readStdin(interactive bool) ([]byte, error) {
	stdinInfo, err := os.Stdin.Stat()
	if err != nil {
		return nil, errors.NewInputError("failed to access stdin", err)
	}

	if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
		if interactive {
			return readInteractiveInput()
		}
		return nil, errors.NewInputError("no input provided", errors.ErrNoInput)
	}

	jsonData, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, errors.NewInputError("failed to read from stdin", err)
	}
	if len(jsonData) == 0 {
		return nil, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}
	return jsonData, nil
}

// readInteractiveInput lets users paste JSON and signal completion with
// Ctrl+D (EOF).
func readInteractiveInput() ([]byte, error) {
	fmt.Fprintln(os.Stderr, "jsontyper interactive mode")
	fmt.Fprintln(os.Stderr, "Paste your JSON below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	reader := bufio.NewReader(os.Stdin)
	var jsonBuilder strings.Builder

	for {
		line, err := reader.ReadString('\n')
		jsonBuilder.WriteString(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewInputError("error reading input", err)
		}
	}

	if strings.TrimSpace(jsonBuilder.String()) == "" {
		return nil, errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}

	fmt.Fprintln(os.Stderr, "\nProcessing JSON...")
	return []byte(jsonBuilder.String()), nil
}

// writeOutput writes code to file or stdout
func writeOutput(code, output string) error {
	if output != "" {
		if err := os.WriteFile(output, []byte(code), 0o644); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", output), err)
		}
		fmt.Fprintf(os.Stderr, "Generated code written to %s\n", output)
		return nil
	}

	if _, err := fmt.Println(strings.TrimSpace(code)); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

// Run generates every planned document and reports failures together.
func (b *BatchCmd) Run(globals *Globals) error {
	cfg, cleanup, err := prepare(globals, config.Overrides{})
	if err != nil {
		return err
	}
	defer func() { _ = cleanup() }()

	if b.Workers > 0 {
		cfg.Workers = b.Workers
	}
	src, dist := firstNonEmpty(b.Src, cfg.Src), firstNonEmpty(b.Dist, cfg.Dist)

	var jobs []runner.Job
	switch {
	case src != "":
		if dist == "" {
			return errors.NewConfigError("a src directory needs a dist directory", errors.ErrInvalidFilePath)
		}
		jobs, err = runner.PlanDirectory(src, dist, cfg.TargetLanguage())
	default:
		jobs, err = runner.PlanSources(cfg.DistRoot, cfg.Sources, cfg.TargetLanguage())
	}
	if err != nil {
		return err
	}

	r, err := newRunner(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report := r.Run(ctx, jobs)
	fmt.Fprintf(os.Stderr, "Generated %d of %d files\n", len(report.Results)-len(report.Failed()), len(report.Results))
	return report.Err()
}

// Run mirrors the directory once and then regenerates on change until
// interrupted.
func (w *WatchCmd) Run(globals *Globals) error {
	cfg, cleanup, err := prepare(globals, config.Overrides{})
	if err != nil {
		return err
	}
	defer func() { _ = cleanup() }()

	src, dist := firstNonEmpty(w.Src, cfg.Src), firstNonEmpty(w.Dist, cfg.Dist)
	if src == "" || dist == "" {
		return errors.NewConfigError("watch needs src and dist directories", errors.ErrInvalidFilePath)
	}

	r, err := newRunner(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "Watching %s, press Ctrl+C to stop\n", src)
	return r.Watch(ctx, src, dist)
}

// prepare loads the configuration with command-line precedence and installs
// the logger it describes.
func prepare(globals *Globals, o config.Overrides) (*config.Config, func() error, error) {
	path := globals.Config
	if path == "" {
		path = config.FindConfigFile()
	}

	o.Language = globals.Lang
	o.Package = globals.Package
	o.NoFormat = globals.NoFormat
	o.Debug = globals.Debug

	cfg, err := config.LoadConfigWithCLI(path, o)
	if err != nil {
		return nil, nil, err
	}

	cleanup, err := logging.Setup(cfg.Log)
	if err != nil {
		return nil, nil, errors.NewConfigError("failed to set up logging", err)
	}
	return cfg, cleanup, nil
}

func newRunner(cfg *config.Config) (*runner.Runner, error) {
	gen, err := cfg.Generator()
	if err != nil {
		return nil, err
	}
	return runner.New(gen,
		runner.WithWorkers(cfg.Workers),
		runner.WithFormatting(cfg.Formatting.Enabled),
	), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
