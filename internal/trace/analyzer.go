// Package trace reconstructs per-method execution-time samples from
// interleaved enter/exit call traces and classifies whether the timing shift
// between two versions is statistically meaningful.
package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// linePattern matches one trace event: "[<timestamp>] S|E <method-or-hash>".
var linePattern = regexp.MustCompile(`^\[(\d+)\] (S|E) (.+)`)

// fileMetadata accompanies each log file of a trace: a per-file clock offset
// and the mapping from original signature to the hash used in the log body.
type fileMetadata struct {
	LogTimeDifference   int64             `json:"log_time_difference"`
	MethodSignatureHash map[string]string `json:"method_signature_hash"`
}

// frame is one open call on the replay stack.
type frame struct {
	method string
	enter  int64
}

// Analyzer replays the trace files sharing one path prefix and accumulates
// execution times per method. The sample lists are append-only during
// Analyze and read-only afterward; an Analyzer must not be reused across
// unrelated traces.
type Analyzer struct {
	traceDir       string
	tracePrefix    string
	ExecutionTimes map[string][]float64
	logger         *logrus.Logger
}

// NewAnalyzer builds an Analyzer for the trace named by traceDataPath, e.g.
// "traces/run1.log" covers traces/run1_*.log and their metadata files.
func NewAnalyzer(traceDataPath string, logger *logrus.Logger) *Analyzer {
	if logger == nil {
		logger = logrus.New()
	}
	dir := filepath.Dir(traceDataPath)
	prefix := strings.TrimSuffix(filepath.Base(traceDataPath), ".log")
	return &Analyzer{
		traceDir:       dir,
		tracePrefix:    prefix,
		ExecutionTimes: make(map[string][]float64),
		logger:         logger,
	}
}

// Analyze merges every log/metadata file pair belonging to the trace and
// replays all events against one shared call stack. Log files without a
// metadata companion are skipped; malformed metadata fails fast.
func (a *Analyzer) Analyze() error {
	entries, err := os.ReadDir(a.traceDir)
	if err != nil {
		return fmt.Errorf("read trace directory %s: %w", a.traceDir, err)
	}

	var stack []frame
	for _, entry := range entries {
		name := entry.Name()
		if !strings.Contains(name, a.tracePrefix) || !strings.HasSuffix(name, ".log") {
			continue
		}

		suffix := strings.TrimSuffix(strings.TrimPrefix(name, a.tracePrefix+"_"), ".log")
		metaPath := filepath.Join(a.traceDir, fmt.Sprintf("%s_%s.json", a.tracePrefix, suffix))
		meta, err := loadMetadata(metaPath)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return err
		}

		if err := a.replayFile(filepath.Join(a.traceDir, name), meta, &stack); err != nil {
			return err
		}
	}

	return nil
}

// replayFile feeds one log file's events, offset-adjusted and with hashes
// translated back to signatures, into the shared stack.
func (a *Analyzer) replayFile(path string, meta *fileMetadata, stack *[]frame) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open trace log %s: %w", path, err)
	}
	defer file.Close()

	// Invert original->hash so log lines can be translated back.
	hashToMethod := make(map[string]string, len(meta.MethodSignatureHash))
	for original, hash := range meta.MethodSignatureHash {
		hashToMethod[hash] = original
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		m := linePattern.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		ts, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		method := m[3]
		if original, ok := hashToMethod[method]; ok {
			method = original
		}
		a.processEvent(ts+meta.LogTimeDifference, m[2], method, stack)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan trace log %s: %w", path, err)
	}

	return nil
}

// ProcessLines replays in-memory trace lines against a fresh call stack.
// Lines that do not match the event format are ignored.
func (a *Analyzer) ProcessLines(lines []string) {
	var stack []frame
	for _, line := range lines {
		m := linePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		ts, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		a.processEvent(ts, m[2], m[3], &stack)
	}
}

// processEvent applies one event to the call stack. An exit pops only when
// the stack top names the same method; mismatched exits are dropped, which
// tolerates truncated or interleaved traces at the cost of losing those
// spans.
func (a *Analyzer) processEvent(ts int64, kind, method string, stack *[]frame) {
	switch kind {
	case "S":
		*stack = append(*stack, frame{method: method, enter: ts})
	case "E":
		s := *stack
		if len(s) == 0 || s[len(s)-1].method != method {
			return
		}
		top := s[len(s)-1]
		*stack = s[:len(s)-1]
		a.ExecutionTimes[method] = append(a.ExecutionTimes[method], float64(ts-top.enter))
	}
}

func loadMetadata(path string) (*fileMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("read trace metadata %s: %w", path, err)
	}
	var meta fileMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("invalid JSON in %s: %w", path, err)
	}
	return &meta, nil
}
