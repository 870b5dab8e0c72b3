package logs

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// zapTimeLayout matches zapcore.ISO8601TimeEncoder
const zapTimeLayout = "2006-01-02T15:04:05.000Z0700"

// Entry is one decoded line of the run log
type Entry struct {
	Level   string
	Time    time.Time
	Message string
	RunID   string
	Fields  map[string]any
}

// RunInfo summarizes one driver run found in the logs
type RunInfo struct {
	ID        string
	StartTime time.Time
	EndTime   time.Time
	Entries   int
	Errors    int
}

// Reader scans the log files of a project
type Reader struct {
	logsDir string
}

// NewReader creates a reader for logsDir
func NewReader(logsDir string) *Reader {
	return &Reader{logsDir: logsDir}
}

// Dir returns the logs directory (for display)
func (r *Reader) Dir() string {
	return r.logsDir
}

// Files returns the log files, oldest first
func (r *Reader) Files() ([]string, error) {
	entries, err := os.ReadDir(r.logsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot read logs directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, FilePrefix) || !strings.HasSuffix(name, ".log") {
			continue
		}
		files = append(files, filepath.Join(r.logsDir, name))
	}
	// Date-stamped names sort chronologically
	sort.Strings(files)
	return files, nil
}

// Runs groups every entry by run id, most recent last
func (r *Reader) Runs() ([]RunInfo, error) {
	byID := map[string]*RunInfo{}
	err := r.scan(func(e Entry) {
		if e.RunID == "" {
			return
		}
		info, ok := byID[e.RunID]
		if !ok {
			info = &RunInfo{ID: e.RunID, StartTime: e.Time}
			byID[e.RunID] = info
		}
		info.Entries++
		if e.Level == "error" {
			info.Errors++
		}
		if e.Time.Before(info.StartTime) {
			info.StartTime = e.Time
		}
		if e.Time.After(info.EndTime) {
			info.EndTime = e.Time
		}
	})
	if err != nil {
		return nil, err
	}

	runs := make([]RunInfo, 0, len(byID))
	for _, info := range byID {
		runs = append(runs, *info)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartTime.Before(runs[j].StartTime)
	})
	return runs, nil
}

// Latest returns the most recent run
func (r *Reader) Latest() (*RunInfo, error) {
	runs, err := r.Runs()
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("no runs found")
	}
	return &runs[len(runs)-1], nil
}

// Entries returns the entries of the run whose id starts with prefix
func (r *Reader) Entries(prefix string) ([]Entry, error) {
	if prefix == "" {
		return nil, fmt.Errorf("run id is required")
	}

	var entries []Entry
	ids := map[string]bool{}
	err := r.scan(func(e Entry) {
		if strings.HasPrefix(e.RunID, prefix) {
			ids[e.RunID] = true
			entries = append(entries, e)
		}
	})
	if err != nil {
		return nil, err
	}
	if len(ids) > 1 {
		return nil, fmt.Errorf("run id prefix %q is ambiguous (%d runs)", prefix, len(ids))
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no entries for run %s", prefix)
	}
	return entries, nil
}

func (r *Reader) scan(fn func(Entry)) error {
	files, err := r.Files()
	if err != nil {
		return err
	}
	for _, path := range files {
		if err := scanFile(path, fn); err != nil {
			return err
		}
	}
	return nil
}

func scanFile(path string, fn func(Entry)) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open log file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	// Failure logs can be long
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		entry, ok := decodeEntry(line)
		if !ok {
			continue // Skip malformed entries
		}
		fn(entry)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading log file %s: %w", filepath.Base(path), err)
	}
	return nil
}

func decodeEntry(line []byte) (Entry, bool) {
	var raw map[string]any
	if err := json.Unmarshal(line, &raw); err != nil {
		return Entry{}, false
	}

	e := Entry{Fields: map[string]any{}}
	for key, value := range raw {
		switch key {
		case "level":
			e.Level, _ = value.(string)
		case "msg":
			e.Message, _ = value.(string)
		case "ts":
			if s, ok := value.(string); ok {
				e.Time, _ = time.Parse(zapTimeLayout, s)
			}
		case FieldRunID:
			e.RunID, _ = value.(string)
		case "caller", "stacktrace":
		default:
			e.Fields[key] = value
		}
	}
	return e, true
}

// Markdown formats the entries of one run for reading
func Markdown(entries []Entry) string {
	if len(entries) == 0 {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Run %s\n\n", entries[0].Time.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "Run ID: `%s`\n\n", entries[0].RunID)
	sb.WriteString("| Time | Level | Event | Details |\n")
	sb.WriteString("|------|-------|-------|---------|\n")

	for _, e := range entries {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n",
			e.Time.Format("15:04:05"), e.Level, e.Message, formatFields(e.Fields))
	}
	return sb.String()
}

func formatFields(fields map[string]any) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := strings.ReplaceAll(fmt.Sprint(fields[k]), "\n", " ")
		if len(v) > 60 {
			v = v[:57] + "..."
		}
		parts = append(parts, k+"="+strings.ReplaceAll(v, "|", "\\|"))
	}
	return strings.Join(parts, " ")
}
