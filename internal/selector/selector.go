package selector

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nerrad567/hwlog/internal/sensorlog"
)

// Families is the read side of a family index the selector browses.
// *sensorlog.FamilyIndex satisfies it.
type Families interface {
	Families() []string
	ColumnsOf(family string) []string
}

// Logger records selection events.
type Logger interface {
	Debug(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}

type state int

const (
	deviceChoice state = iota
	columnChoice
)

// Selector runs the interactive selection dialogue.
type Selector struct {
	in     *bufio.Scanner
	out    io.Writer
	logger Logger
}

// New creates a Selector reading operator input from in and writing prompts to out.
func New(in io.Reader, out io.Writer) *Selector {
	return &Selector{
		in:     bufio.NewScanner(in),
		out:    out,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for selection events.
func (s *Selector) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	s.logger = logger
}

// Run lets the operator build a selection from the families in index.
//
// The dialogue ends on an empty line at the device prompt or at end of
// input. Each prompt blocks until a full line is read; ctx is checked
// between prompts only.
//
// Parameters:
//   - ctx: Cancels the dialogue between prompts
//   - index: Families and their columns, in display order
//
// Returns:
//   - sensorlog.Selection: Chosen columns in the order they were entered
//   - error: ctx.Err() or a read error from the input
func (s *Selector) Run(ctx context.Context, index Families) (sensorlog.Selection, error) {
	sel := sensorlog.Selection{}
	families := index.Families()
	if len(families) == 0 {
		s.printf("No devices found in log.\n")
		return sel, nil
	}

	current := deviceChoice
	var family string

	for {
		if err := ctx.Err(); err != nil {
			return sel, err
		}

		switch current {
		case deviceChoice:
			s.printf("\nPlease select a device.\n")
			printList(s.out, families)
			s.printf("Enter a device index, or press ENTER on an empty line to finish: ")

			line, ok, err := s.readLine()
			if err != nil {
				return sel, err
			}
			if !ok {
				s.printf("\n")
				return sel, nil
			}

			i, done, err := parseDeviceChoice(line, len(families))
			if err != nil {
				s.printf("%v\n", err)
				continue
			}
			if done {
				return sel, nil
			}
			family = families[i]
			current = columnChoice

		case columnChoice:
			columns := index.ColumnsOf(family)
			s.printf("\nSelected device: %s\n", family)
			printList(s.out, columns)
			s.printf("Enter column indices separated by spaces, or press ENTER to skip: ")

			line, ok, err := s.readLine()
			if err != nil {
				return sel, err
			}
			if !ok {
				s.printf("\n")
				return sel, nil
			}

			picks, err := parseColumnChoice(line, len(columns))
			if err != nil {
				s.printf("%v\n", err)
				continue
			}
			for _, i := range picks {
				sel = append(sel, columns[i])
			}
			s.logger.Debug("columns selected", "device", family, "added", len(picks), "total", len(sel))
			s.printf("%d column(s) selected.\n", len(sel))
			current = deviceChoice
		}
	}
}

// readLine returns the next input line. ok is false at end of input.
func (s *Selector) readLine() (line string, ok bool, err error) {
	if s.in.Scan() {
		return strings.TrimSuffix(s.in.Text(), "\r"), true, nil
	}
	if err := s.in.Err(); err != nil {
		return "", false, fmt.Errorf("reading selection input: %w", err)
	}
	return "", false, nil
}

func (s *Selector) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...) //nolint:errcheck // Prompt output is best effort
}

func printList(w io.Writer, items []string) {
	for i, item := range items {
		fmt.Fprintf(w, "[%d] %s\n", i, item) //nolint:errcheck // Prompt output is best effort
	}
}

// parseDeviceChoice interprets a DeviceChoice line. A blank line ends the
// dialogue; otherwise it must be a single index below n.
func parseDeviceChoice(line string, n int) (index int, done bool, err error) {
	fields := strings.Fields(line)
	switch len(fields) {
	case 0:
		return 0, true, nil
	case 1:
		i, err := parseIndex(fields[0], n)
		return i, false, err
	default:
		return 0, false, fmt.Errorf("%w: enter a single device index", ErrInvalidChoice)
	}
}

// parseColumnChoice interprets a ColumnChoice line. Every token must be a
// valid index below n or the whole line is rejected. A blank line yields no
// picks.
func parseColumnChoice(line string, n int) ([]int, error) {
	fields := strings.Fields(line)
	picks := make([]int, 0, len(fields))
	for _, field := range fields {
		i, err := parseIndex(field, n)
		if err != nil {
			return nil, err
		}
		picks = append(picks, i)
	}
	return picks, nil
}

func parseIndex(token string, n int) (int, error) {
	i, err := strconv.Atoi(token)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidChoice, token)
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("%w: %d is out of range 0-%d", ErrInvalidChoice, i, n-1)
	}
	return i, nil
}
