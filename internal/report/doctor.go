package report

import (
	"fmt"
	"strings"
)

var rule = strings.Repeat("=", 50)

// DoctorReport renders the plain-text report a caregiver hands to a doctor.
func DoctorReport(d Data) string {
	var b strings.Builder

	fmt.Fprintf(&b, "PATIENT SYMPTOM REPORT\n")
	if d.Patient.Name != "" {
		fmt.Fprintf(&b, "Patient: %s (%d, %s)\n", d.Patient.Name, d.Patient.Age, d.Patient.Gender)
	}
	fmt.Fprintf(&b, "Generated: %s\n", d.GeneratedAt.Format("January 2, 2006 15:04"))
	fmt.Fprintf(&b, "%s\n\n", rule)

	if d.Latest != nil {
		fmt.Fprintf(&b, "CURRENT TRIAGE STATUS\n")
		fmt.Fprintf(&b, "Status: %s\n", strings.ToUpper(d.Latest.Status()))
		fmt.Fprintf(&b, "Assessment: %s\n", d.Latest.Advice)
		fmt.Fprintf(&b, "Reason: %s\n", d.Latest.Summary())
		fmt.Fprintf(&b, "Time: %s\n\n", d.Latest.EvaluatedAt.Format("2006-01-02 15:04"))
	}

	entries := recent(d.Symptoms, d.GeneratedAt)
	fmt.Fprintf(&b, "SYMPTOM HISTORY (Last %d Days)\n", HistoryDays)
	fmt.Fprintf(&b, "%s\n\n", rule)
	if len(entries) == 0 {
		fmt.Fprintf(&b, "No entries recorded.\n\n")
	}
	for i, l := range entries {
		v := l.Vitals()
		fmt.Fprintf(&b, "Entry %d: %s at %s\n", i+1, l.RecordedAt.Format("2006-01-02"), l.RecordedAt.Format("15:04"))
		fmt.Fprintf(&b, "  Pain Level: %d/10\n", l.PainLevel)
		fmt.Fprintf(&b, "  Temperature: %s\n", v.Temperature)
		if bp := v.BloodPressure(); bp != "" {
			fmt.Fprintf(&b, "  Blood Pressure: %s\n", bp)
		}
		if l.Severity != "" {
			fmt.Fprintf(&b, "  Triage: %s\n", l.Tier().Status())
		}
		notes := l.Notes
		if notes == "" {
			notes = "-"
		}
		fmt.Fprintf(&b, "  Notes: %s\n\n", notes)
	}

	tr := Summarize(entries)
	fmt.Fprintf(&b, "TREND OBSERVATIONS\n")
	fmt.Fprintf(&b, "%s\n", rule)
	if tr.Entries > 0 {
		fmt.Fprintf(&b, "Average Pain Level: %.1f/10\n", tr.AvgPain)
	}
	if tr.TempSamples > 0 {
		fmt.Fprintf(&b, "Average Temperature: %.1f°F\n", tr.AvgTempF)
	}
	fmt.Fprintf(&b, "\n%s\n", rule)
	fmt.Fprintf(&b, "End of Report\n")
	return b.String()
}
