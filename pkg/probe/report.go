package probe

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// WriteYAML writes the reports as a YAML document
func WriteYAML(w io.Writer, reports []*Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(reports); err != nil {
		return fmt.Errorf("encode reports: %w", err)
	}
	return enc.Close()
}

// WriteText writes a human readable summary of the reports
func WriteText(w io.Writer, reports []*Report) error {
	var sb strings.Builder
	for _, r := range reports {
		fmt.Fprintf(&sb, "%s (%d components)\n", r.Material, r.Components)
		fmt.Fprintf(&sb, "  rho           %s\n", formatSpectrum(r.Rho))
		for _, d := range r.Directional {
			flag := ""
			if d.Gain {
				flag = "  GAIN"
			}
			fmt.Fprintf(&sb, "  rho(%4.1f°)    %s  mean %.4f ± %.4f%s\n", d.ThetaDeg, formatSpectrum(d.Rho), d.Mean, d.StdError, flag)
		}
		c := r.Consistency
		fmt.Fprintf(&sb, "  consistency   %d checked, %d specular, pdf %d mismatches (max %.2g), value %d mismatches (max %.2g)\n",
			c.Checked, c.Specular, c.PdfMismatches, c.MaxPdfError, c.ValueMismatches, c.MaxValueError)
		rc := r.Reciprocity
		fmt.Fprintf(&sb, "  reciprocity   %d checked, %d non-reciprocal (max %.2g)\n", rc.Checked, rc.NonReciprocal, rc.MaxAsymmetry)
		for _, s := range r.Selection {
			fmt.Fprintf(&sb, "  selected      %-22s %.3f\n", s.Type, s.Frequency)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func formatSpectrum(s []float64) string {
	parts := make([]string, len(s))
	for i, v := range s {
		parts[i] = fmt.Sprintf("%.4f", v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
