package utils

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"
)

// LogStats summarises one day of payment activity from the log files
type LogStats struct {
	Day                 time.Time
	OrdersCreated       int
	RetriesStarted      int
	RetriesRefused      int
	GatewayAccepted     int
	GatewayRejections   int
	GatewayTimeouts     int
	CallbacksApplied    int
	CallbacksDuplicated int
	IntegrityWarnings   int
	TotalErrors         int
	OrderActivity       map[string]int
	ErrorPatterns       map[string]int
}

var (
	orderIDRegex   = regexp.MustCompile(`order ([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})`)
	logPrefixRegex = regexp.MustCompile(`^(INFO|WARN|ERROR|DEBUG): \S+ \S+ \S+: `)
	idRegex        = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}|JS-\d{8}-[0-9A-F]{16}`)
)

// AnalyzeLogs reads the info and error logs written on day under dir.
// A missing file counts as an empty one.
func AnalyzeLogs(dir string, day time.Time) (*LogStats, error) {
	stats := &LogStats{
		Day:           day,
		OrderActivity: make(map[string]int),
		ErrorPatterns: make(map[string]int),
	}
	if err := scanLog(LogFileName(dir, "info", day), stats.addInfoLine); err != nil {
		return nil, err
	}
	if err := scanLog(LogFileName(dir, "error", day), stats.addErrorLine); err != nil {
		return nil, err
	}
	return stats, nil
}

func scanLog(path string, fn func(string)) error {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error opening log file %s: %v", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fn(scanner.Text())
	}
	return scanner.Err()
}

func (s *LogStats) addInfoLine(line string) {
	switch {
	case strings.Contains(line, "Created order "):
		s.OrdersCreated++
	case strings.Contains(line, "Retry attempt "):
		s.RetriesStarted++
	case strings.Contains(line, "Retry for order ") && strings.Contains(line, " refused"):
		s.RetriesRefused++
	case strings.Contains(line, "Gateway accepted payment "):
		s.GatewayAccepted++
	case strings.Contains(line, " resolved as "):
		s.CallbacksApplied++
	case strings.Contains(line, "Duplicate notification "):
		s.CallbacksDuplicated++
	default:
		return
	}
	if m := orderIDRegex.FindStringSubmatch(line); m != nil {
		s.OrderActivity[m[1]]++
	}
}

func (s *LogStats) addErrorLine(line string) {
	if strings.HasPrefix(line, "WARN: ") {
		s.IntegrityWarnings++
		return
	}
	if !strings.HasPrefix(line, "ERROR: ") {
		// continuation of a stack trace
		return
	}
	s.TotalErrors++
	switch {
	case strings.Contains(line, "Gateway rejected payment "):
		s.GatewayRejections++
	case strings.Contains(line, "Gateway initiate failed "):
		s.GatewayTimeouts++
	}
	s.ErrorPatterns[errorPattern(line)]++
}

// errorPattern strips the log prefix and ids so that equal failures group together
func errorPattern(line string) string {
	msg := logPrefixRegex.ReplaceAllString(line, "")
	return idRegex.ReplaceAllString(msg, "<id>")
}

// WriteReport prints the statistics in a human readable form
func (s *LogStats) WriteReport(w io.Writer, top int) {
	fmt.Fprintln(w, "=== Payment Log Report ===")
	fmt.Fprintln(w, "Day:", s.Day.Format("2006-01-02"))

	fmt.Fprintln(w, "\n1. Orders and attempts:")
	fmt.Fprintf(w, "   Orders created: %d\n", s.OrdersCreated)
	fmt.Fprintf(w, "   Retries started: %d\n", s.RetriesStarted)
	fmt.Fprintf(w, "   Retries refused: %d\n", s.RetriesRefused)

	fmt.Fprintln(w, "\n2. Gateway:")
	fmt.Fprintf(w, "   Accepted: %d\n", s.GatewayAccepted)
	fmt.Fprintf(w, "   Rejected: %d\n", s.GatewayRejections)
	fmt.Fprintf(w, "   Timed out: %d\n", s.GatewayTimeouts)
	fmt.Fprintf(w, "   Callbacks applied: %d\n", s.CallbacksApplied)
	fmt.Fprintf(w, "   Callbacks duplicated: %d\n", s.CallbacksDuplicated)

	fmt.Fprintln(w, "\n3. Problems:")
	fmt.Fprintf(w, "   Integrity warnings: %d\n", s.IntegrityWarnings)
	fmt.Fprintf(w, "   Total errors: %d\n", s.TotalErrors)

	fmt.Fprintln(w, "\n4. Busiest orders:")
	for _, e := range topEntries(s.OrderActivity, top) {
		fmt.Fprintf(w, "   %s: %d events\n", e.key, e.count)
	}

	fmt.Fprintln(w, "\n5. Most common errors:")
	for _, e := range topEntries(s.ErrorPatterns, top) {
		fmt.Fprintf(w, "   %s: %d occurrences\n", e.key, e.count)
	}
}

type countEntry struct {
	key   string
	count int
}

func topEntries(counts map[string]int, limit int) []countEntry {
	entries := make([]countEntry, 0, len(counts))
	for k, c := range counts {
		entries = append(entries, countEntry{k, c})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count == entries[j].count {
			return entries[i].key < entries[j].key
		}
		return entries[i].count > entries[j].count
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
