// Package report renders assessments for people: one-decimal metrics,
// "level (score)" frailty and "n / 6" lifestyle risk.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/health-assessment-mcp-server/internal/domain"
)

// Output formats accepted by Write.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Metric formats eGFR or BMI to one decimal place.
func Metric(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

// Frailty formats a frailty level with its score, e.g. "pre-frail (2)".
func Frailty(level domain.FrailtyLevel, score int) string {
	return fmt.Sprintf("%s (%d)", level, score)
}

// Lifestyle formats a lifestyle risk score against its ceiling, e.g. "2 / 6".
func Lifestyle(score int) string {
	return fmt.Sprintf("%d / %d", score, domain.MaxLifestyleRiskScore)
}

// Write renders the assessment in the named format.
func Write(w io.Writer, format string, a *domain.Assessment) error {
	switch strings.ToLower(format) {
	case FormatJSON:
		return WriteJSON(w, a)
	case FormatText, "":
		return WriteText(w, a)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// WriteJSON writes the assessment as indented JSON.
func WriteJSON(w io.Writer, a *domain.Assessment) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(a)
}

// WriteText writes a plain-text summary of the assessment.
func WriteText(w io.Writer, a *domain.Assessment) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "Metrics")
	fmt.Fprintf(tw, "  eGFR\t%s\tmL/min/1.73m²\n", Metric(a.Result.EGFR))
	fmt.Fprintf(tw, "  BMI\t%s\tkg/m²\n", Metric(a.Result.BMI))
	fmt.Fprintf(tw, "  Frailty\t%s\t\n", Frailty(a.Result.FrailtyLevel, a.Result.FrailtyScore))
	fmt.Fprintf(tw, "  Lifestyle risk\t%s\t\n", Lifestyle(a.Result.LifestyleRiskScore))
	if err := tw.Flush(); err != nil {
		return err
	}

	writeList(w, "Referrals", specialties(a.Recommendations.Referrals))
	writeList(w, "Advisories", advisories(a.Recommendations.Advisories))

	if len(a.Messages) > 0 {
		fmt.Fprintln(w, "\nMessages")
		for _, m := range a.Messages {
			fmt.Fprintf(w, "  [%s] %s\n", m.Kind, m.Text)
		}
	}

	if len(a.Comparison) > 0 {
		fmt.Fprintln(w, "\nCompared with ideal")
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, p := range a.Comparison {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", p.Label, trimFloat(p.Actual), trimFloat(p.Ideal), p.Unit)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	return nil
}

func writeList(w io.Writer, title string, items []string) {
	fmt.Fprintf(w, "\n%s\n", title)
	if len(items) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}

func specialties(in []domain.Specialty) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = s.String()
	}
	return out
}

func advisories(in []domain.Advisory) []string {
	out := make([]string, len(in))
	for i, a := range in {
		out[i] = a.String()
	}
	return out
}

func trimFloat(v float64) string {
	return strings.TrimSuffix(fmt.Sprintf("%.2f", v), ".00")
}
