package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/opnlaas/v2vlens/db"
	"github.com/opnlaas/v2vlens/logline"
	"github.com/opnlaas/v2vlens/run"
	"github.com/z46-dev/go-logger"
)

var ingestLog *logger.Logger = logger.NewLogger().SetPrefix("[INGEST]", logger.BoldBlue).IncludeTimestamp()

var (
	mu   sync.RWMutex
	runs map[string]*run.Run = make(map[string]*run.Run)
)

// Get returns the parsed run for a name, or nil if it was never ingested
// this process lifetime.
func Get(name string) *run.Run {
	mu.RLock()
	defer mu.RUnlock()
	return runs[name]
}

func Names() (names []string) {
	mu.RLock()
	defer mu.RUnlock()

	for name := range runs {
		names = append(names, name)
	}

	return
}

// Forget drops a run from the in-memory registry and the database.
func Forget(name string) (err error) {
	mu.Lock()
	delete(runs, name)
	mu.Unlock()

	return db.ConversionRuns.Delete(name)
}

// File parses one conversion log from disk, registers it, and persists its
// summary. Re-ingesting the same path replaces the previous parse.
func File(path string) (err error) {
	var (
		stat os.FileInfo
		data []byte
		name string = runName(path)
	)

	if stat, err = os.Stat(path); err != nil {
		return fmt.Errorf("stat log: %w", err)
	}

	if data, err = os.ReadFile(path); err != nil {
		return fmt.Errorf("read log: %w", err)
	}

	var parsed *run.Run = run.Load(name, string(data))

	mu.Lock()
	var replacing bool = runs[name] != nil
	runs[name] = parsed
	mu.Unlock()

	var record db.ConversionRun = summarize(parsed, path, stat.Size())

	if replacing {
		err = db.ConversionRuns.Update(&record)
	} else if err = db.ConversionRuns.Insert(&record); err != nil {
		// A run persisted by a previous process won't be in the registry
		err = db.ConversionRuns.Update(&record)
	}

	if err != nil {
		return fmt.Errorf("persist run %s: %w", name, err)
	}

	ingestLog.Successf("Ingested %s (%d lines, %d stages)\n", name, record.TotalLines, len(record.Stages))
	return
}

// runName derives the registry key from the file name. Collector-fetched
// logs are prefixed host-name-..., which keeps names unique across hosts.
func runName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func summarize(parsed *run.Run, path string, size int64) (record db.ConversionRun) {
	record = db.ConversionRun{
		Name:       parsed.Name,
		SourcePath: path,
		SourceHost: hostFromName(parsed.Name),
		IngestedAt: time.Now(),
		SizeBytes:  size,
		TotalLines: parsed.TotalLines(),
		GuestName:  parsed.SourceInfo().Name,
		Firmware:   parsed.Firmware().Firmware,
	}

	record.ApiCallCount = len(parsed.Calls())
	record.FileCopyCount = len(parsed.Copies())

	for _, line := range parsed.Lines {
		switch line.Category {
		case logline.CategoryError:
			record.ErrorCount++
		case logline.CategoryWarning:
			record.WarningCount++
		}
	}

	var finished bool
	for _, stage := range parsed.Stages() {
		record.Stages = append(record.Stages, db.StageSummary{
			Name:           stage.Name,
			StartLine:      stage.StartLine,
			EndLine:        stage.EndLine,
			ElapsedSeconds: stage.ElapsedSeconds,
		})

		if strings.HasPrefix(stage.Name, "Finishing off") {
			finished = true
		}
	}

	switch {
	case record.ErrorCount > 0 && !finished:
		record.Status = db.RunStatusFailed
	case finished:
		record.Status = db.RunStatusCompleted
	default:
		record.Status = db.RunStatusUnknown
	}

	if len(record.Stages) > 0 {
		record.GuestOS = guestOSGuess(parsed)
	}

	return
}

// hostFromName recovers the collector's host prefix, if any.
func hostFromName(name string) string {
	if idx := strings.Index(name, "-"); idx > 0 {
		return name[:idx]
	}

	return ""
}

func guestOSGuess(parsed *run.Run) string {
	if len(parsed.Kernels()) > 0 {
		return "linux"
	}

	for _, copy := range parsed.Copies() {
		if strings.HasSuffix(strings.ToLower(copy.Destination), ".sys") {
			return "windows"
		}
	}

	return ""
}
