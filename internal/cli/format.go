package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yaklabco/gomdwrap/internal/configloader"
	"github.com/yaklabco/gomdwrap/internal/logging"
	"github.com/yaklabco/gomdwrap/internal/ui/pretty"
	"github.com/yaklabco/gomdwrap/pkg/config"
	"github.com/yaklabco/gomdwrap/pkg/editor"
	"github.com/yaklabco/gomdwrap/pkg/fix"
	"github.com/yaklabco/gomdwrap/pkg/fsutil"
	"github.com/yaklabco/gomdwrap/pkg/langdetect"
	"github.com/yaklabco/gomdwrap/pkg/reformat"
	"github.com/yaklabco/gomdwrap/pkg/runner"
	"github.com/yaklabco/gomdwrap/pkg/wrap"
)

// stdinName labels standard input in messages and diffs.
const stdinName = "<stdin>"

// formatFlags holds the flags of the format command.
type formatFlags struct {
	width          int
	tableEqual     bool
	newline        string
	algorithm      string
	detectLanguage bool
	backup         bool
	exclude        []string
	jobs           int

	cursor    string
	selection string

	write bool
	check bool
	diff  bool
}

func newFormatCommand(globals *globalFlags) *cobra.Command {
	flags := &formatFlags{}

	cmd := &cobra.Command{
		Use:   "format [files...]",
		Short: "Reformat Markdown files or standard input",
		Long: `Reformat Markdown to the configured text width.

Without file arguments the document is read from standard input and the
result written to standard output. With --cursor only the block under the
cursor is reformatted and the new cursor position is printed to standard
error. With --selection the given lines are reformatted.

Directory arguments are searched recursively for .md and .markdown files.
Hidden entries and paths matching an exclude pattern are skipped.`,
		Example: `  gomdwrap format < README.md
  gomdwrap format --width 72 --write docs/*.md
  gomdwrap format --check --exclude 'vendor/**' .
  gomdwrap format --cursor 12:5 notes.md`,
		Aliases: []string{"fmt"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormat(cmd, globals, flags, args)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&flags.width, "width", "w", config.DefaultTextWidth, "maximum line width in display columns")
	f.BoolVar(&flags.tableEqual, "table-equal", false, "pad all table columns to the same width")
	f.StringVar(&flags.newline, "newline", string(config.NewlineAuto), "line terminator: auto, lf, crlf")
	f.StringVar(&flags.algorithm, "algorithm", string(config.WrapOptimal), "line breaking: optimal, first-fit")
	f.BoolVar(&flags.detectLanguage, "detect-language", false, "tag unlabeled code blocks with a detected language")
	f.BoolVar(&flags.backup, "backup", false, "keep a backup of rewritten files")
	f.StringSliceVar(&flags.exclude, "exclude", nil, "glob patterns to skip when walking directories")
	f.IntVarP(&flags.jobs, "jobs", "j", 0, "number of files formatted concurrently (0 = number of CPUs)")
	f.StringVar(&flags.cursor, "cursor", "", "reformat the block at LINE:COL (1-based)")
	f.StringVar(&flags.selection, "selection", "", "reformat lines FIRST:LAST (1-based, inclusive)")
	f.BoolVar(&flags.write, "write", false, "write the result back to the files")
	f.BoolVar(&flags.check, "check", false, "exit with status 1 if any file would change")
	f.BoolVar(&flags.diff, "diff", false, "print a unified diff instead of the result")

	return cmd
}

// overrides turns the flags set on the command line into config overrides.
func (f *formatFlags) overrides(cmd *cobra.Command) []func(*config.Config) {
	changed := cmd.Flags().Changed
	var out []func(*config.Config)
	add := func(name string, fn func(*config.Config)) {
		if changed(name) {
			out = append(out, fn)
		}
	}
	add("width", func(c *config.Config) { c.TextWidth = f.width })
	add("table-equal", func(c *config.Config) { c.TableColumnsEqualWidth = f.tableEqual })
	add("newline", func(c *config.Config) { c.Newline = config.Newline(f.newline) })
	add("algorithm", func(c *config.Config) { c.WrapAlgorithm = config.WrapAlgorithm(f.algorithm) })
	add("detect-language", func(c *config.Config) { c.DetectCodeLanguage = f.detectLanguage })
	add("backup", func(c *config.Config) { c.Backup = f.backup })
	add("exclude", func(c *config.Config) { c.Exclude = append(c.Exclude, f.exclude...) })
	return append(out, func(c *config.Config) {
		c.Write = f.write
		c.Check = f.check
		c.Diff = f.diff
	})
}

// formatOptions builds the reformat options from a validated config.
func formatOptions(cfg *config.Config) (reformat.Options, error) {
	alg, err := wrap.ParseAlgorithm(string(cfg.WrapAlgorithm))
	if err != nil {
		return reformat.Options{}, err
	}
	opts := reformat.Options{
		TextWidth:              cfg.TextWidth,
		TableColumnsEqualWidth: cfg.TableColumnsEqualWidth,
		Newline:                cfg.Newline.Terminator(),
		Algorithm:              alg,
	}
	if cfg.DetectCodeLanguage {
		opts.DetectLanguage = langdetect.Detect
	}
	return opts, nil
}

func runFormat(cmd *cobra.Command, globals *globalFlags, flags *formatFlags, args []string) error {
	ctx := cmd.Context()
	if err := checkFormatArgs(cmd, flags, args); err != nil {
		return err
	}

	res, err := configloader.Load(ctx, configloader.LoadOptions{
		ExplicitPath: globals.configPath,
		Overrides:    flags.overrides(cmd),
	})
	if err != nil {
		return err
	}
	cfg := res.Config

	level := cfg.LogLevel
	if globals.debug {
		level = "debug"
	}
	logger := logging.NewWithWriter(cmd.ErrOrStderr(), level)
	ctx = logging.WithLogger(ctx, logger)
	logger.Debug("configuration loaded",
		logging.FieldSource, strings.Join(res.LoadedFrom, ","),
		logging.FieldWidth, cfg.TextWidth,
		logging.FieldAlgorithm, cfg.WrapAlgorithm,
		logging.FieldNewline, cfg.Newline)

	opts, err := formatOptions(cfg)
	if err != nil {
		return newUsageError(err)
	}

	e := &emitter{
		cmd:    cmd,
		cfg:    cfg,
		styles: pretty.NewStyles(pretty.IsColorEnabled(globals.color, cmd.OutOrStdout())),
	}
	if len(args) == 0 || flags.cursor != "" || flags.selection != "" {
		return formatSingle(ctx, e, flags, opts, args)
	}
	return formatFiles(ctx, e, flags, opts, args)
}

// formatSingle formats standard input or one file, honoring --cursor and
// --selection.
func formatSingle(ctx context.Context, e *emitter, flags *formatFlags, opts reformat.Options, args []string) error {
	name := stdinName
	var (
		content string
		snap    *fsutil.Snapshot
	)
	if len(args) == 0 {
		data, err := io.ReadAll(e.cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read %s: %w", stdinName, err)
		}
		content = string(data)
	} else {
		var err error
		name = args[0]
		if content, snap, err = fsutil.Read(ctx, name); err != nil {
			return err
		}
	}

	buf := editor.NewBuffer(content)
	if err := placeCursor(buf, flags); err != nil {
		return err
	}
	ctx, _ = logging.WithPath(ctx, name)
	outcome, err := editor.Format(ctx, buf, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	file := runner.FileOutcome{
		Path:      name,
		Snapshot:  snap,
		Original:  content,
		Formatted: buf.Text(),
		Changed:   outcome.Changed,
	}
	if err := e.emit(ctx, file); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if flags.cursor != "" {
		p := buf.CursorPos()
		fmt.Fprintf(e.cmd.ErrOrStderr(), "cursor %d:%d\n", p.Line+1, p.Col+1)
	}
	return e.finish(pretty.Stats{Files: 1, Changed: e.changed, Written: e.written}, false)
}

// formatFiles formats every file under args concurrently and emits the
// outcomes in path order.
func formatFiles(ctx context.Context, e *emitter, flags *formatFlags, opts reformat.Options, args []string) error {
	result, err := runner.Run(ctx, runner.Options{
		Paths:        args,
		ExcludeGlobs: e.cfg.Exclude,
		Jobs:         flags.jobs,
		Format:       opts,
	})
	if err != nil {
		return err
	}
	if len(result.Files) > 1 && !e.cfg.Write && !e.cfg.Check && !e.cfg.Diff {
		return newUsageError(fmt.Errorf("%d files found; multiple files need --write, --check or --diff", len(result.Files)))
	}

	logger := logging.FromContext(ctx)
	stats := pretty.Stats{Files: len(result.Files)}
	var errs []error
	for _, file := range result.Files {
		if file.Error == nil {
			file.Error = e.emit(ctx, file)
		}
		if file.Error != nil {
			logger.Error("format failed", logging.FieldPath, file.Path, logging.FieldError, file.Error)
			stats.Failed++
			errs = append(errs, fmt.Errorf("%s: %w", file.Path, file.Error))
		}
	}
	stats.Changed, stats.Written = e.changed, e.written
	if len(errs) > 0 {
		e.summary(stats, true)
		return errors.Join(errs...)
	}
	return e.finish(stats, len(result.Files) > 1)
}

// emitter writes format results the way the output flags ask for.
type emitter struct {
	cmd    *cobra.Command
	cfg    *config.Config
	styles *pretty.Styles

	changed int
	written int
}

func (e *emitter) emit(ctx context.Context, file runner.FileOutcome) error {
	out := e.cmd.OutOrStdout()
	switch {
	case e.cfg.Check:
		if file.Changed {
			fmt.Fprintf(out, "would reformat %s\n", e.styles.FilePath.Render(file.Path))
		}
	case e.cfg.Diff:
		if d := fix.GenerateDiff(file.Path, file.Original, file.Formatted); d.HasChanges() {
			fmt.Fprint(out, e.styles.FormatDiff(d))
		}
	case e.cfg.Write:
		if file.Changed {
			written, err := fsutil.Rewrite(ctx, file.Snapshot, file.Formatted, fsutil.RewriteOptions{Backup: e.cfg.Backup})
			if err != nil {
				return err
			}
			if written {
				e.written++
			}
		}
	default:
		fmt.Fprint(out, file.Formatted)
	}
	if file.Changed {
		e.changed++
	}
	return nil
}

func (e *emitter) summary(stats pretty.Stats, force bool) {
	if force || e.cfg.Check || e.cfg.Write {
		fmt.Fprint(e.cmd.ErrOrStderr(), e.styles.FormatSummary(stats, e.cfg.Check))
	}
}

func (e *emitter) finish(stats pretty.Stats, many bool) error {
	e.summary(stats, many)
	if e.cfg.Check && stats.Changed > 0 {
		return ErrWouldChange
	}
	return nil
}

// checkFormatArgs rejects flag combinations that cannot be honored.
func checkFormatArgs(cmd *cobra.Command, flags *formatFlags, args []string) error {
	switch {
	case flags.write && flags.check:
		return newUsageError(errors.New("--write and --check are mutually exclusive"))
	case flags.cursor != "" && flags.selection != "":
		return newUsageError(errors.New("--cursor and --selection are mutually exclusive"))
	case (flags.cursor != "" || flags.selection != "") && len(args) > 1:
		return newUsageError(errors.New("--cursor and --selection need a single input"))
	case len(args) > 1 && !flags.write && !flags.check && !flags.diff:
		return newUsageError(errors.New("multiple files need --write, --check or --diff"))
	case len(args) == 0 && flags.write:
		return newUsageError(errors.New("--write needs file arguments"))
	case len(args) == 0 && isTerminal(cmd.InOrStdin()):
		return newUsageError(errors.New("no input files and standard input is a terminal"))
	}
	return nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// placeCursor sets the buffer cursor or selection from the flags. Without
// either the whole document is selected.
func placeCursor(buf *editor.Buffer, flags *formatFlags) error {
	switch {
	case flags.cursor != "":
		line, col, err := parsePair(flags.cursor, "--cursor")
		if err != nil {
			return err
		}
		buf.SetCursorPos(editor.Pos{Line: line - 1, Col: col - 1}, false)
	case flags.selection != "":
		first, last, err := parsePair(flags.selection, "--selection")
		if err != nil {
			return err
		}
		if last < first {
			return newUsageError(fmt.Errorf("--selection %q: last line before first", flags.selection))
		}
		buf.Select(buf.LineStart(first-1), buf.ByteAt(editor.Pos{Line: last - 1, Col: math.MaxInt}))
	default:
		buf.Select(0, buf.Len())
	}
	return nil
}

// parsePair parses "A:B" with both parts positive integers.
func parsePair(value, flag string) (int, int, error) {
	a, b, ok := strings.Cut(value, ":")
	if !ok {
		return 0, 0, newUsageError(fmt.Errorf("%s %q: want N:M", flag, value))
	}
	x, errA := strconv.Atoi(a)
	y, errB := strconv.Atoi(b)
	if errA != nil || errB != nil || x < 1 || y < 1 {
		return 0, 0, newUsageError(fmt.Errorf("%s %q: want positive integers", flag, value))
	}
	return x, y, nil
}
