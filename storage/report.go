package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"loopnet_scraper/models"
)

const reportSheet = "Assisted Living - LoopNet"

// Header row sits below the merged title and generated rows plus one spacer.
const headerRow = 4

var reportColumns = []string{
	"#", "State", "Property Address", "Asking Price", "CAP Rate", "Beds",
	"Units", "Sq Ft", "Property Type", "Broker / Company", "Broker Phone",
	"Broker Email", "Listing URL",
}

var reportColWidths = []float64{5, 7, 40, 16, 10, 8, 8, 14, 24, 26, 18, 28, 50}

// ReportFilename returns a timestamped report name so a new report never
// collides with one already open elsewhere.
func ReportFilename(t time.Time) string {
	return fmt.Sprintf("loopnet_assisted_living_%s.xlsx", t.Format("20060102_150405"))
}

type reportStyles struct {
	title     int
	generated int
	header    int
	data      int
	dataAlt   int
	link      int
	linkAlt   int
	total     int
}

func newReportStyles(f *excelize.File) (*reportStyles, error) {
	thin := []excelize.Border{
		{Type: "left", Style: 1, Color: "D9D9D9"},
		{Type: "right", Style: 1, Color: "D9D9D9"},
		{Type: "top", Style: 1, Color: "D9D9D9"},
		{Type: "bottom", Style: 1, Color: "D9D9D9"},
	}
	altFill := excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"F2F7FB"}}
	dataAlign := &excelize.Alignment{Vertical: "top", WrapText: true}

	s := &reportStyles{}
	var err error

	if s.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "Arial", Bold: true, Size: 14, Color: "2F5496"},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	}); err != nil {
		return nil, err
	}
	if s.generated, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Family: "Arial", Size: 9, Italic: true, Color: "666666"},
	}); err != nil {
		return nil, err
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "Arial", Bold: true, Size: 11, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"2F5496"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    thin,
	}); err != nil {
		return nil, err
	}
	if s.data, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "Arial", Size: 10},
		Alignment: dataAlign,
		Border:    thin,
	}); err != nil {
		return nil, err
	}
	if s.dataAlt, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "Arial", Size: 10},
		Fill:      altFill,
		Alignment: dataAlign,
		Border:    thin,
	}); err != nil {
		return nil, err
	}
	if s.link, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "Arial", Size: 10, Color: "0563C1", Underline: "single"},
		Alignment: dataAlign,
		Border:    thin,
	}); err != nil {
		return nil, err
	}
	if s.linkAlt, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "Arial", Size: 10, Color: "0563C1", Underline: "single"},
		Fill:      altFill,
		Alignment: dataAlign,
		Border:    thin,
	}); err != nil {
		return nil, err
	}
	if s.total, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Family: "Arial", Bold: true, Size: 10, Color: "2F5496"},
	}); err != nil {
		return nil, err
	}
	return s, nil
}

// WriteReport writes the final record set to a timestamped styled workbook in
// dir and returns the path written. If the destination cannot be saved
// (locked by another program), it retries once with a _v2 suffix.
func WriteReport(dir string, states []string, minBeds, minUnits int, records []models.ListingRecord, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return "", fmt.Errorf("name sheet: %w", err)
	}

	styles, err := newReportStyles(f)
	if err != nil {
		return "", fmt.Errorf("build styles: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(reportColumns))
	if err != nil {
		return "", err
	}

	f.MergeCell(reportSheet, "A1", lastCol+"1")
	f.SetCellValue(reportSheet, "A1", fmt.Sprintf(
		"LoopNet — Healthcare / Assisted Living For Sale (%s) — %d+ Beds / %d+ Units",
		strings.Join(states, ", "), minBeds, minUnits))
	f.SetCellStyle(reportSheet, "A1", "A1", styles.title)
	f.SetRowHeight(reportSheet, 1, 32)

	f.MergeCell(reportSheet, "A2", lastCol+"2")
	f.SetCellValue(reportSheet, "A2", fmt.Sprintf(
		"Generated: %s  |  Source: loopnet.com", now.Format("January 02, 2006 03:04 PM")))
	f.SetCellStyle(reportSheet, "A2", "A2", styles.generated)

	for i, name := range reportColumns {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return "", err
		}
		f.SetCellValue(reportSheet, col+strconv.Itoa(headerRow), name)
		f.SetColWidth(reportSheet, col, col, reportColWidths[i])
	}
	f.SetCellStyle(reportSheet,
		"A"+strconv.Itoa(headerRow), lastCol+strconv.Itoa(headerRow), styles.header)
	f.SetRowHeight(reportSheet, headerRow, 28)

	urlCol := lastCol
	prevCol, err := excelize.ColumnNumberToName(len(reportColumns) - 1)
	if err != nil {
		return "", err
	}
	for i := range records {
		r := &records[i]
		rowNum := headerRow + 1 + i
		row := strconv.Itoa(rowNum)

		vals := []interface{}{
			i + 1, r.State, r.Address, r.Price, r.CapRate,
			blankIfZero(r.Beds), blankIfZero(r.Units), r.SqFt, r.PropertyType,
			brokerColumn(r), r.BrokerPhone, r.BrokerEmail, r.URL,
		}
		if err := f.SetSheetRow(reportSheet, "A"+row, &vals); err != nil {
			return "", fmt.Errorf("write row %d: %w", i+1, err)
		}

		dataStyle, linkStyle := styles.data, styles.link
		if (i+1)%2 == 0 {
			dataStyle, linkStyle = styles.dataAlt, styles.linkAlt
		}
		f.SetCellStyle(reportSheet, "A"+row, prevCol+row, dataStyle)
		f.SetCellStyle(reportSheet, urlCol+row, urlCol+row, linkStyle)

		if r.URL != "" {
			if err := f.SetCellHyperLink(reportSheet, urlCol+row, r.URL, "External"); err != nil {
				return "", fmt.Errorf("link row %d: %w", i+1, err)
			}
		}
	}

	totalRow := strconv.Itoa(headerRow + len(records) + 2)
	f.MergeCell(reportSheet, "A"+totalRow, lastCol+totalRow)
	f.SetCellValue(reportSheet, "A"+totalRow, fmt.Sprintf("Total: %d listings", len(records)))
	f.SetCellStyle(reportSheet, "A"+totalRow, "A"+totalRow, styles.total)

	f.SetPanes(reportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      headerRow,
		TopLeftCell: "A" + strconv.Itoa(headerRow+1),
		ActivePane:  "bottomLeft",
	})

	filterEnd := headerRow + len(records)
	if len(records) == 0 {
		filterEnd = headerRow + 1
	}
	f.AutoFilter(reportSheet,
		fmt.Sprintf("A%d:%s%d", headerRow, lastCol, filterEnd), nil)

	path := filepath.Join(dir, ReportFilename(now))
	if err := f.SaveAs(path); err != nil {
		alt := strings.TrimSuffix(path, ".xlsx") + "_v2.xlsx"
		if err2 := f.SaveAs(alt); err2 != nil {
			return "", fmt.Errorf("save report %q: %w", path, err)
		}
		path = alt
	}
	return path, nil
}

// brokerColumn combines broker name and company into one display value.
func brokerColumn(r *models.ListingRecord) string {
	switch {
	case r.BrokerCompany != "" && r.BrokerName != "":
		return r.BrokerName + " — " + r.BrokerCompany
	case r.BrokerCompany != "":
		return r.BrokerCompany
	default:
		return r.BrokerName
	}
}

// blankIfZero renders an unknown count as empty rather than a literal 0.
func blankIfZero(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
