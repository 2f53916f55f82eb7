// Command rruleexpand reads an RFC 5545 recurrence text block from a
// file or stdin and prints the instants it produces.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/go-recur/rrule"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		count   int
		after   string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "rruleexpand [file]",
		Short: "Expand an RFC 5545 recurrence rule into its occurrences",
		Long: "rruleexpand parses DTSTART/RRULE/EXRULE/RDATE/EXDATE property\n" +
			"lines from a file (or stdin, with no argument) and prints the\n" +
			"resulting instants, one per line, in RFC 3339.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configureLogging(verbose)

			var r io.Reader = os.Stdin
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			text, err := readAll(r)
			if err != nil {
				return err
			}

			set, err := rrule.StrToRRuleSet(text)
			if err != nil {
				kind, _ := rrule.KindOf(err)
				log.Error().Str("kind", kind.String()).Err(err).Msg("failed to parse recurrence")
				return err
			}

			var afterTime time.Time
			if after != "" {
				afterTime, err = time.Parse(time.RFC3339, after)
				if err != nil {
					return fmt.Errorf("invalid --after value: %w", err)
				}
			}

			if set.Total() == -1 && count == 0 {
				log.Warn().Msg("recurrence is unbounded; pass --count to limit output")
				count = 100
			}

			return printOccurrences(cmd.OutOrStdout(), set, afterTime, count)
		},
	}

	cmd.Flags().IntVar(&count, "count", 0, "maximum number of occurrences to print (0 = all, capped at 100 for unbounded rules)")
	cmd.Flags().StringVar(&after, "after", "", "only print occurrences after this RFC 3339 instant")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log parse diagnostics to stderr")

	return cmd
}

func configureLogging(verbose bool) {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
}

func readAll(r io.Reader) (string, error) {
	var sb []byte
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		sb = append(sb, scanner.Bytes()...)
		sb = append(sb, '\n')
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return string(sb), nil
}

func printOccurrences(w io.Writer, set *rrule.Set, after time.Time, count int) error {
	next := set.Iterator()
	printed := 0
	for {
		if count != 0 && printed >= count {
			return nil
		}
		dt, ok := next()
		if !ok {
			return nil
		}
		if !after.IsZero() && !dt.After(after) {
			continue
		}
		if _, err := fmt.Fprintln(w, dt.Format(time.RFC3339)); err != nil {
			return err
		}
		printed++
	}
}
