package service

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	ContentTypeCSV  = "text/csv; charset=UTF-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	exportStampLayout = "20060102150405"
	utf8BOM           = "\ufeff"
)

var (
	ErrInvalidReportKind   = errors.New("invalid report kind")
	ErrInvalidReportFormat = errors.New("invalid export format")
)

// ReportKinds lists the exportable datasets.
var ReportKinds = []string{"users", "visits", "supplier", "category", "consult_status", "consult_staff", "consult_period"}

type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// reportTable is one dataset flattened into a header row and cell rows.
type reportTable struct {
	headers []string
	rows    [][]interface{}
}

func tableFor(report *Report, kind string) (*reportTable, error) {
	t := &reportTable{}
	switch kind {
	case "users":
		t.headers = []string{"period", "count"}
		for _, r := range report.UsersByPeriod {
			t.rows = append(t.rows, []interface{}{r.Period, r.Count})
		}
	case "visits":
		t.headers = []string{"period", "views", "sessions"}
		for _, r := range report.VisitsByPeriod {
			t.rows = append(t.rows, []interface{}{r.Period, r.Views, r.Sessions})
		}
	case "supplier":
		t.headers = salesHeaders("supplier", report.CanSeeRevenue)
		for _, r := range report.OrdersBySupplier {
			t.rows = append(t.rows, salesRow(r.Supplier, r.Orders, r.Quantity, r.Revenue, report.CanSeeRevenue))
		}
	case "category":
		t.headers = salesHeaders("category", report.CanSeeRevenue)
		for _, r := range report.OrdersByCategory {
			t.rows = append(t.rows, salesRow(r.Category, r.Orders, r.Quantity, r.Revenue, report.CanSeeRevenue))
		}
	case "consult_status":
		t.headers = []string{"status", "count"}
		for _, r := range report.ConsultByStatus {
			t.rows = append(t.rows, []interface{}{r.Status, r.Count})
		}
	case "consult_staff":
		t.headers = []string{"staff", "count"}
		for _, r := range report.ConsultByStaff {
			t.rows = append(t.rows, []interface{}{r.Staff, r.Count})
		}
	case "consult_period":
		t.headers = []string{"period", "total", "done", "avg_seconds"}
		for _, r := range report.ConsultByPeriod {
			var avg interface{} = ""
			if r.AvgSeconds != nil {
				avg = *r.AvgSeconds
			}
			t.rows = append(t.rows, []interface{}{r.Period, r.Total, r.Done, avg})
		}
	default:
		return nil, ErrInvalidReportKind
	}
	return t, nil
}

func salesHeaders(label string, withRevenue bool) []string {
	headers := []string{label, "orders", "quantity"}
	if withRevenue {
		headers = append(headers, "revenue")
	}
	return headers
}

func salesRow(label string, orders, quantity int64, revenue *decimal.Decimal, withRevenue bool) []interface{} {
	row := []interface{}{label, orders, quantity}
	if withRevenue {
		if revenue != nil {
			row = append(row, revenue.StringFixed(2))
		} else {
			row = append(row, "")
		}
	}
	return row
}

// Export renders one dataset as a downloadable file.
func (s *reportService) Export(params ReportParams, viewer *model.User, kind, format string) (*ExportFile, error) {
	if format != FormatCSV && format != FormatXLSX {
		return nil, ErrInvalidReportFormat
	}
	report, err := s.Build(params, viewer)
	if err != nil {
		return nil, err
	}
	table, err := tableFor(report, kind)
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("%s-%s.%s", kind, s.now().In(s.loc).Format(exportStampLayout), format)
	if format == FormatCSV {
		data, err := table.csv()
		if err != nil {
			return nil, err
		}
		return &ExportFile{Filename: filename, ContentType: ContentTypeCSV, Data: data}, nil
	}

	data, err := table.xlsx(kind)
	if err != nil {
		return nil, err
	}
	return &ExportFile{Filename: filename, ContentType: ContentTypeXLSX, Data: data}, nil
}

// csv writes UTF-8 with a byte order mark so spreadsheet apps detect the encoding.
func (t *reportTable) csv() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write(t.headers); err != nil {
		return nil, err
	}
	for _, row := range t.rows {
		record := make([]string, len(row))
		for i, cell := range row {
			record[i] = formatCell(cell)
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatCell(cell interface{}) string {
	switch v := cell.(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return fmt.Sprint(cell)
}

func (t *reportTable) xlsx(sheet string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(t.headers))
	for i, h := range t.headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, row := range t.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
