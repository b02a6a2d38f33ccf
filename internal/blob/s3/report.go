package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/perpx/arbot/internal/backtest"
)

// ReportArchiver implements backtest.ReportArchiver by serializing the full
// report to JSON and uploading it to the object store. The returned string is
// the object key the report was written to.
type ReportArchiver struct {
	writer *Writer
}

// NewReportArchiver creates a ReportArchiver that uploads through the given
// client's bucket.
func NewReportArchiver(c *Client) *ReportArchiver {
	return &ReportArchiver{writer: NewWriter(c)}
}

// ArchiveReport uploads the report to backtests/{symbol}/{run_id}.json.
func (a *ReportArchiver) ArchiveReport(ctx context.Context, report backtest.Report) (string, error) {
	buf, err := marshalReport(report)
	if err != nil {
		return "", fmt.Errorf("s3blob: marshal backtest report %s: %w", report.RunID, err)
	}

	key := reportKey(report)
	if err := a.writer.Put(ctx, key, bytes.NewReader(buf), "application/json"); err != nil {
		return "", fmt.Errorf("s3blob: archive backtest report %s: %w", report.RunID, err)
	}
	return key, nil
}

// reportKey builds the S3 key for a backtest report, partitioned by symbol.
//
//	backtests/HYPE/7f4c9b1e-....json
func reportKey(report backtest.Report) string {
	runID := report.RunID
	if runID == "" {
		runID = time.Now().UTC().Format("20060102T150405Z")
	}
	return fmt.Sprintf("backtests/%s/%s.json", report.Symbol, runID)
}

func marshalReport(report backtest.Report) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
