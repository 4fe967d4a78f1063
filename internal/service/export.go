package service

import (
	"bytes"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"

	"github.com/joemerrillis/sniffr/internal/model"
)

// ExportFile 导出结果
type ExportFile struct {
	Filename    string
	ContentType string
	Body        *bytes.Buffer
}

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

var weekdayNames = [7]string{"周日", "周一", "周二", "周三", "周四", "周五", "周六"}

// ── Excel ──

// sheetWriter 单工作表写入器：标题行 + 表头 + 数据行
type sheetWriter struct {
	f     *excelize.File
	sheet string
	row   int
}

func newSheetWriter(sheet, title string, headers []string, widths []float64) (*sheetWriter, error) {
	f := excelize.NewFile()
	idx, err := f.NewSheet(sheet)
	if err != nil {
		f.Close()
		return nil, err
	}
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	for i, w := range widths {
		col := colName(i)
		f.SetColWidth(sheet, col, col, w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheet, "A1", title)
	f.MergeCell(sheet, "A1", cell(colName(len(headers)-1), 1))
	f.SetCellStyle(sheet, "A1", "A1", headerStyle)

	// 表头
	for i, h := range headers {
		f.SetCellValue(sheet, cell(colName(i), 2), h)
	}
	f.SetCellStyle(sheet, "A2", cell(colName(len(headers)-1), 2), headerStyle)

	return &sheetWriter{f: f, sheet: sheet, row: 3}, nil
}

func (w *sheetWriter) append(values ...interface{}) {
	for i, v := range values {
		w.f.SetCellValue(w.sheet, cell(colName(i), w.row), v)
	}
	w.row++
}

func (w *sheetWriter) finish(filename string) (*ExportFile, error) {
	defer w.f.Close()
	buf := new(bytes.Buffer)
	if err := w.f.Write(buf); err != nil {
		return nil, err
	}
	return &ExportFile{Filename: filename, ContentType: contentTypeXLSX, Body: buf}, nil
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// buildPendingWalksSheet 待确认遛狗导出为 xlsx
func buildPendingWalksSheet(walks []model.PendingWalk, from, to time.Time) (*ExportFile, error) {
	w, err := newSheetWriter("待确认遛狗",
		fmt.Sprintf("待确认遛狗 %s ~ %s", from.Format(model.DateLayout), to.Format(model.DateLayout)),
		[]string{"日期", "星期", "开始", "结束", "状态"},
		[]float64{14, 8, 10, 10, 12},
	)
	if err != nil {
		return nil, err
	}
	for _, p := range walks {
		w.append(p.WalkDate.Format(model.DateLayout), weekdayNames[p.WalkDate.Weekday()], p.WindowStart, p.WindowEnd, p.Status)
	}
	return w.finish(fmt.Sprintf("pending-walks_%s_%s.xlsx", from.Format(model.DateLayout), to.Format(model.DateLayout)))
}

// buildBoardingsSheet 寄养列表导出为 xlsx
func buildBoardingsSheet(tenantName string, boardings []model.Boarding, dogCounts map[string]int) (*ExportFile, error) {
	w, err := newSheetWriter("寄养",
		fmt.Sprintf("%s 寄养列表", tenantName),
		[]string{"寄养ID", "客户ID", "送达日", "接回日", "狗数", "状态", "报价", "成交价"},
		[]float64{38, 38, 12, 12, 6, 12, 10, 10},
	)
	if err != nil {
		return nil, err
	}
	for _, b := range boardings {
		final := ""
		if b.FinalPrice.Valid {
			final = b.FinalPrice.Decimal.StringFixed(2)
		}
		w.append(
			b.BoardingID,
			b.UserID,
			b.DropOffDay.Format(model.DateLayout),
			b.PickUpDay.Format(model.DateLayout),
			dogCounts[b.BoardingID],
			b.Status,
			b.Price.StringFixed(2),
			final,
		)
	}
	return w.finish(fmt.Sprintf("boardings_%s.xlsx", time.Now().UTC().Format("20060102")))
}

// ── iCalendar ──

// buildPendingWalksCalendar 待确认遛狗导出为 .ics，时刻按服务时区解释
func buildPendingWalksCalendar(walks []model.PendingWalk, loc *time.Location, stamp time.Time) (*ExportFile, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//sniffr//pending walks//CN")

	for _, p := range walks {
		start, err := walkInstant(p.WalkDate, p.WindowStart, loc)
		if err != nil {
			return nil, err
		}
		end, err := walkInstant(p.WalkDate, p.WindowEnd, loc)
		if err != nil {
			return nil, err
		}

		event := cal.AddEvent(p.PendingWalkID + "@sniffr")
		event.SetDtStampTime(stamp)
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary("遛狗（待确认）")
		event.SetStatus(ics.ObjectStatusTentative)
	}

	buf := bytes.NewBufferString(cal.Serialize())
	return &ExportFile{Filename: "pending-walks.ics", ContentType: contentTypeICS, Body: buf}, nil
}

func walkInstant(day time.Time, clock string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04:05", day.Format(model.DateLayout)+" "+clock, loc)
}
