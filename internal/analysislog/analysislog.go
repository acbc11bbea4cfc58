package analysislog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"asset-guardian/internal/types"
)

// Entry is one line of the daily run log.
type Entry struct {
	Time         string                   `json:"time"`
	RunID        string                   `json:"run_id"`
	Symbol       string                   `json:"symbol"`
	LongOutlook  types.Outlook            `json:"long_outlook,omitempty"`
	MidOutlook   types.Outlook            `json:"mid_outlook,omitempty"`
	ShortOutlook types.Outlook            `json:"short_outlook,omitempty"`
	Errors       map[types.Horizon]string `json:"errors,omitempty"`
	Report       string                   `json:"report_provider,omitempty"`
}

// Log appends run summaries to <dir>/<YYYY-MM-DD>.txt, one JSON object per line.
type Log struct {
	mu  sync.Mutex
	dir string
	loc *time.Location
	now func() time.Time
}

func New(dir string, loc *time.Location) *Log {
	if dir == "" {
		dir = "logs"
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Log{dir: dir, loc: loc, now: time.Now}
}

// WithClock replaces the time source.
func (l *Log) WithClock(now func() time.Time) *Log {
	l.now = now
	return l
}

func (l *Log) dailyFilepath(t time.Time) string {
	return filepath.Join(l.dir, t.In(l.loc).Format(types.ReportDateLayout)+".txt")
}

// Append writes the summary of res. provider names the report generator, if a report was produced.
func (l *Log) Append(res *types.AnalysisResult, provider string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now().In(l.loc)
	e := Entry{
		Time:         now.Format("2006-01-02 15:04:05"),
		RunID:        res.RunID,
		Symbol:       res.Symbol,
		LongOutlook:  res.Summary.LongOutlook,
		MidOutlook:   res.Summary.MidOutlook,
		ShortOutlook: res.Summary.ShortOutlook,
		Report:       provider,
	}
	if errs := res.Errors(); len(errs) > 0 {
		e.Errors = errs
	}

	p := l.dailyFilepath(now)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// CompressOlder gzips log files last modified more than retentionDays ago.
func (l *Log) CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().AddDate(0, 0, -retentionDays)
	return filepath.WalkDir(l.dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() || filepath.Ext(p) != ".txt" {
			return nil
		}
		info, err := d.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			return nil
		}
		gz := p + ".gz"
		// a complete archive from an earlier pass means only the .txt is left to remove
		if validGzip(gz) {
			_ = os.Remove(p)
			return nil
		}
		if err := gzipFile(p, gz); err != nil {
			return nil
		}
		_ = os.Remove(p)
		return nil
	})
}

// gzipFile compresses src into dst. dst never survives a failed call.
func gzipFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			out.Close()
			os.Remove(dst)
		}
	}()

	gw := gzip.NewWriter(out)
	if _, err = io.Copy(gw, in); err != nil {
		return err
	}
	if err = gw.Close(); err != nil {
		return err
	}
	if err = out.Sync(); err != nil {
		return err
	}
	return out.Close()
}

// validGzip reports whether path holds a gzip stream that decodes to the end.
func validGzip(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	r, err := gzip.NewReader(f)
	if err != nil {
		return false
	}
	_, err = io.Copy(io.Discard, r)
	return err == nil
}
