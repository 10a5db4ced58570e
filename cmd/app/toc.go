package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/urfave/cli/v3"

	"github.com/starford/onboard/internal/toc"
)

// runTOC formats the file named by the first argument, or stdin.
func runTOC(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := cfg.TOC.Options()
	if m := cmd.String("marker"); m != "" {
		if utf8.RuneCountInString(m) != 1 {
			return fmt.Errorf("marker must be a single character, got %q", m)
		}
		opts.Marker, _ = utf8.DecodeRuneInString(m)
	}
	f, err := toc.New(opts)
	if err != nil {
		return err
	}

	in := io.Reader(os.Stdin)
	if name := cmd.Args().First(); name != "" && name != "-" {
		file, err := os.Open(name)
		if err != nil {
			return err
		}
		defer file.Close()
		in = file
	}

	return printTOC(os.Stdout, in, f)
}

// printTOC writes the table of contents, a blank line, then the annotated
// text. Without qualifying headings only the text is written.
func printTOC(w io.Writer, r io.Reader, f *toc.Formatter) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	res := f.FormatText(strings.TrimSuffix(string(data), "\n"))

	if res.TOC != "" {
		if _, err := fmt.Fprintf(w, "%s\n\n", res.TOC); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(w, res.Content)
	return err
}
