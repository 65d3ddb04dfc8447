package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	sheetSummary   = "Summary"
	sheetMedicines = "Medicines"
	sheetLogs      = "Medicine Logs"
	sheetSymptoms  = "Symptoms"
)

var (
	medicineHeader = []string{"Name", "Dosage", "Schedule", "Start Date", "End Date"}
	logHeader      = []string{"Date", "Medicine", "Status"}
	symptomHeader  = []string{"Recorded At", "Pain Level", "Temperature (°F)", "Blood Pressure", "Severity", "Status", "Referral", "Reasons", "Notes"}
)

// Workbook builds the recovery report as an .xlsx file.
func Workbook(d Data) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return nil, fmt.Errorf("rename summary sheet: %w", err)
	}
	for _, name := range []string{sheetMedicines, sheetLogs, sheetSymptoms} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if err := writeSummary(f, d); err != nil {
		return nil, err
	}

	medRows := make([][]any, 0, len(d.Medicines))
	for _, m := range d.Medicines {
		medRows = append(medRows, []any{m.Name, m.Dosage, joinSchedule(m.Schedule), m.StartDate.Format("2006-01-02"), m.EndDate.Format("2006-01-02")})
	}
	if err := writeTable(f, sheetMedicines, medicineHeader, medRows, headerStyle); err != nil {
		return nil, err
	}

	logRows := make([][]any, 0, len(d.Logs))
	for _, l := range d.Logs {
		name := l.MedicineID
		if l.Medicine != nil {
			name = l.Medicine.Name
		}
		logRows = append(logRows, []any{l.Date.Format("2006-01-02 15:04"), name, string(l.Status)})
	}
	if err := writeTable(f, sheetLogs, logHeader, logRows, headerStyle); err != nil {
		return nil, err
	}

	symRows := make([][]any, 0, len(d.Symptoms))
	for _, s := range d.Symptoms {
		v := s.Vitals()
		var temp any = ""
		if s.TemperatureF != nil {
			temp = *s.TemperatureF
		}
		referral := "no"
		if s.ReferralRequired {
			referral = "yes"
		}
		symRows = append(symRows, []any{
			s.RecordedAt.Format("2006-01-02 15:04"), s.PainLevel, temp, v.BloodPressure(),
			s.Severity, s.Tier().Status(), referral, joinReasons(s.Reasons), s.Notes,
		})
	}
	if err := writeTable(f, sheetSymptoms, symptomHeader, symRows, headerStyle); err != nil {
		return nil, err
	}

	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, d Data) error {
	tr := Summarize(recent(d.Symptoms, d.GeneratedAt))
	rows := [][]any{
		{"CareCircle Recovery Report"},
		{"Patient", d.Patient.Name},
		{"Age", d.Patient.Age},
		{"Condition", d.Patient.Condition},
		{"Generated", d.GeneratedAt.Format("2006-01-02 15:04")},
		{"Medicines", len(d.Medicines)},
		{"Symptom entries", len(d.Symptoms)},
		{fmt.Sprintf("Average pain (%d days)", HistoryDays), round1(tr.AvgPain)},
	}
	if tr.TempSamples > 0 {
		rows = append(rows, []any{fmt.Sprintf("Average temperature °F (%d days)", HistoryDays), round1(tr.AvgTempF)})
	}
	if d.Latest != nil {
		rows = append(rows,
			[]any{"Current status", d.Latest.Status()},
			[]any{"Advice", d.Latest.Advice},
			[]any{"Reasons", d.Latest.Summary()},
		)
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheetSummary, cell, &r); err != nil {
			return fmt.Errorf("write summary row %d: %w", i+1, err)
		}
	}
	return f.SetColWidth(sheetSummary, "A", "B", 32)
}

func writeTable(f *excelize.File, sheet string, header []string, rows [][]any, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(header))
	return f.SetColWidth(sheet, "A", lastCol, 18)
}

func joinSchedule(s []string) string { return joinWith(s, ", ") }
func joinReasons(s []string) string  { return joinWith(s, "; ") }

func joinWith(s []string, sep string) string {
	var buf bytes.Buffer
	for i, v := range s {
		if i > 0 {
			buf.WriteString(sep)
		}
		buf.WriteString(v)
	}
	return buf.String()
}

func round1(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}
