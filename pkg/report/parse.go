package report

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Parse reads reports written by TextFormatter. Timestamps carry no year, so
// FlushedAt is returned in year 0 of time.Local.
func Parse(r io.Reader) ([]*Report, error) {
	var (
		reports []*Report
		current *Report
		lineNo  int
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			current = nil
			continue
		}

		stamp, rest, err := splitStamp(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		switch {
		case rest == titleText:
			at, err := time.ParseInLocation(strings.TrimRight(StampLayout, " "), strings.TrimRight(stamp, " "), time.Local)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid timestamp %q: %w", lineNo, stamp, err)
			}
			current = &Report{FlushedAt: at}
			reports = append(reports, current)
		case rest == headerText:
			if current == nil {
				return nil, fmt.Errorf("line %d: column header outside of a report", lineNo)
			}
		default:
			if current == nil {
				return nil, fmt.Errorf("line %d: row outside of a report", lineNo)
			}
			row, err := parseRow(rest)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			current.Rows = append(current.Rows, row)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read report log: %w", err)
	}

	return reports, nil
}

func splitStamp(line string) (string, string, error) {
	n := len(StampLayout)
	if len(line) < n+2 || line[n:n+2] != ": " {
		return "", "", fmt.Errorf("missing timestamp prefix in %q", line)
	}
	return line[:n], line[n+2:], nil
}

func parseRow(text string) (Row, error) {
	fields := strings.Split(text, "\t ")
	if len(fields) < 6 {
		return Row{}, fmt.Errorf("expected 6 columns, got %d in %q", len(fields), text)
	}

	numbers := fields[len(fields)-5:]
	values := make([]int64, len(numbers))
	for i, field := range numbers {
		v, err := strconv.ParseInt(strings.TrimSpace(field), 10, 64)
		if err != nil {
			return Row{}, fmt.Errorf("invalid number %q: %w", field, err)
		}
		values[i] = v
	}
	if values[3] < 0 {
		return Row{}, fmt.Errorf("negative count %d", values[3])
	}

	return Row{
		Name:    strings.Join(fields[:len(fields)-5], "\t "),
		Total:   time.Duration(values[0]),
		Max:     time.Duration(values[1]),
		Min:     time.Duration(values[2]),
		Count:   uint64(values[3]),
		Average: time.Duration(values[4]),
	}, nil
}
