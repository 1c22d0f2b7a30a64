// Package report renders and delivers the pump run summary.
package report

import (
	"strconv"

	"github.com/awiddersheim/thruk-downtimes/internal/types"
)

// Generate renders a plain-text summary of one pump run.
func Generate(s *types.Summary) string {
	report := "Downtime Pump Report\n"
	report += "--------------------\n"
	report += "Time Started: " + s.TimeStarted + "\n"
	report += "Time Ended: " + s.TimeEnded + "\n"
	report += "Author: " + s.Author + "\n"
	report += "Thruk URL: " + s.URL + "\n\n"
	report += "Downtimes Prepared: " + strconv.Itoa(s.Prepared) + "\n"
	report += "Downtimes Submitted: " + strconv.Itoa(s.Submitted) + "\n"
	report += "Downtimes Simulated: " + strconv.Itoa(s.Simulated) + "\n"
	report += "Total Failures: " + strconv.Itoa(len(s.Failures)) + "\n"

	if len(s.Failures) > 0 {
		report += "\nFailed Submissions:\n"
		for _, failure := range s.Failures {
			report += "- Target: " + failure.Target + " | " + failure.Detail + "\n"
		}
	}

	return report
}
