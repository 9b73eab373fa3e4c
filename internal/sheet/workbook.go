package sheet

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/YesAndBack/TakeWaterBot/internal/domain"
)

// Column layout of a month sheet. Data rows start at row 2; the month summary
// lives in H2:I3 so it never collides with the data columns.
var headers = []string{"Date", "User ID", "Total (ml)", "Daily norm", "% of norm", "Status"}

const (
	statusMet    = "Met"
	statusMissed = "Missed"
	firstDataRow = 2
)

// Workbook persists daily totals to an xlsx file, one sheet per month. It is a
// settle.Sink: submitting the same (user, date) again overwrites that row.
type Workbook struct {
	path string
	log  *zap.Logger
	mu   sync.Mutex // excelize files are not safe for concurrent use
}

func New(path string, log *zap.Logger) *Workbook {
	return &Workbook{path: path, log: log}
}

// Submit writes one user's daily totals into the month sheet for sum.Date.
func (w *Workbook) Submit(ctx context.Context, sum domain.DaySummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	day, err := time.Parse("2006-01-02", sum.Date)
	if err != nil {
		return fmt.Errorf("bad summary date %q: %w", sum.Date, err)
	}
	sheetName := day.Format("January_2006")

	f, err := w.open(sheetName)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	row, err := w.findRow(f, sheetName, sum)
	if err != nil {
		return err
	}

	pct := domain.PercentOfNorm(sum.Total, sum.Norm)
	status := statusMissed
	if sum.Total >= sum.Norm {
		status = statusMet
	}
	values := []interface{}{
		sum.Date,
		strconv.FormatInt(sum.ChatID, 10),
		sum.Total,
		sum.Norm,
		fmt.Sprintf("%.1f%%", pct),
		status,
	}
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, v); err != nil {
			return err
		}
	}

	if err := w.writeSummary(f, sheetName); err != nil {
		return err
	}
	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	w.log.Info("workbook row written",
		zap.String("sheet", sheetName),
		zap.Int64("chatID", sum.ChatID),
		zap.String("date", sum.Date),
		zap.Int("row", row),
	)
	return nil
}

// open loads the workbook (creating the file on first use) and makes sure the
// month sheet exists with its header row.
func (w *Workbook) open(sheetName string) (*excelize.File, error) {
	var f *excelize.File
	if _, err := os.Stat(w.path); err == nil {
		f, err = excelize.OpenFile(w.path)
		if err != nil {
			return nil, fmt.Errorf("open workbook: %w", err)
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
			return nil, err
		}
		f = excelize.NewFile()
		// A fresh workbook starts with a default sheet; claim it for the month.
		if err := f.SetSheetName("Sheet1", sheetName); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	idx, err := f.GetSheetIndex(sheetName)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if idx < 0 {
		if _, err := f.NewSheet(sheetName); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	if err := w.writeHeaders(f, sheetName); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

func (w *Workbook) writeHeaders(f *excelize.File, sheetName string) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
	}
	return nil
}

// findRow returns the row holding this user+date, or the first free data row.
func (w *Workbook) findRow(f *excelize.File, sheetName string, sum domain.DaySummary) (int, error) {
	user := strconv.FormatInt(sum.ChatID, 10)
	for row := firstDataRow; ; row++ {
		date, err := f.GetCellValue(sheetName, fmt.Sprintf("A%d", row))
		if err != nil {
			return 0, err
		}
		if date == "" {
			return row, nil
		}
		got, err := f.GetCellValue(sheetName, fmt.Sprintf("B%d", row))
		if err != nil {
			return 0, err
		}
		if date == sum.Date && got == user {
			return row, nil
		}
	}
}

// writeSummary maintains the month statistics block.
func (w *Workbook) writeSummary(f *excelize.File, sheetName string) error {
	if err := f.SetCellValue(sheetName, "H1", "Month statistics"); err != nil {
		return err
	}
	if err := f.SetCellValue(sheetName, "H2", "Daily average:"); err != nil {
		return err
	}
	if err := f.SetCellFormula(sheetName, "I2", "IFERROR(AVERAGE(C2:C1000),0)"); err != nil {
		return err
	}
	if err := f.SetCellValue(sheetName, "H3", "Month total:"); err != nil {
		return err
	}
	return f.SetCellFormula(sheetName, "I3", "SUM(C2:C1000)")
}
