// Command checkers-replay validates a checkers transcript: one move per line
// ("C3-D4", "E3:C5"), optionally preceded by [Tag "value"] lines.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/park285/cheese-checkers-bot/internal/match"
	"github.com/park285/cheese-checkers-bot/internal/msgcat"
	"github.com/park285/cheese-checkers-bot/internal/obslog"
	"github.com/park285/cheese-checkers-bot/internal/render"
	"go.uber.org/zap/zapcore"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("checkers-replay", flag.ContinueOnError)
	fs.SetOutput(stderr)
	pngPath := fs.String("png", "", "write the last valid position to this PNG file")
	squarePx := fs.Int("px", render.DefaultSquarePx, "board square size in pixels for -png")
	messagesDir := fs.String("messages", "", "message catalog override directory")
	verbose := fs.Bool("v", false, "log rule checks to stderr (debug level unless LOG_LEVEL is set)")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: checkers-replay [flags] [file|-]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *verbose {
		o := obslog.OptionsFromEnv()
		o.Console, o.Output = true, stderr
		if os.Getenv("LOG_LEVEL") == "" {
			o.Level = zapcore.DebugLevel
		}
		l, err := obslog.New(o)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
		prev := obslog.L()
		obslog.Set(l)
		defer func() {
			_ = l.Sync()
			obslog.Set(prev)
		}()
	}

	text, err := readTranscript(fs.Arg(0), stdin)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	cat, err := msgcat.New(*messagesDir)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	px := 0
	if *pngPath != "" {
		px = *squarePx
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sum, err := match.Replay(ctx, text, cat, px)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	for i, mv := range sum.Moves {
		fmt.Fprintf(stdout, "%3d. %s\n", i+1, mv)
	}
	fmt.Fprintln(stdout, match.ReplayText(cat, sum))

	if *pngPath != "" && len(sum.BoardImage) > 0 {
		if err := os.WriteFile(*pngPath, sum.BoardImage, 0o644); err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
	}
	if sum.Failed() {
		return 1
	}
	return 0
}

func readTranscript(path string, stdin io.Reader) (string, error) {
	if path == "" || path == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read transcript: %w", err)
	}
	return string(b), nil
}
