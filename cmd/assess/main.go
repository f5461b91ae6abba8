// Package main provides a command line front end to the health assessment engine.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/health-assessment-mcp-server/internal/domain"
	"github.com/health-assessment-mcp-server/internal/logging"
	"github.com/health-assessment-mcp-server/internal/report"
	"github.com/health-assessment-mcp-server/internal/service"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// measurementFlags have no safe default and must be given unless --json is used.
var measurementFlags = []string{
	"age", "sex", "height", "weight", "creatinine",
	"systolic", "diastolic", "stress", "sleep",
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	var (
		input     domain.PatientInput
		jsonPath  string
		outFormat string
		logLevel  string
	)

	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Run an integrated health assessment",
		Long: `Computes eGFR, BMI, frailty and lifestyle risk for one person and prints
the specialist referrals and lifestyle advisories they trigger.

Values come from flags, or from a JSON file (--json, "-" for stdin) whose
fields are overridden by any flags given explicitly.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			patient := input
			if jsonPath == "" {
				if err := requireFlags(cmd.Flags(), measurementFlags...); err != nil {
					return err
				}
			} else {
				loaded, err := loadInput(jsonPath, in)
				if err != nil {
					return err
				}
				overlayFlags(cmd.Flags(), loaded, &input)
				patient = *loaded
			}

			logger := logging.New(logLevel, "text", os.Stderr)
			assessor := service.NewAssessor(logger)

			assessment, err := assessor.Assess(context.Background(), &patient)
			if err != nil {
				return err
			}
			return report.Write(out, outFormat, assessment)
		},
	}

	f := cmd.Flags()
	f.IntVar(&input.Age, "age", 0, "age in years (1-120)")
	f.StringVar((*string)(&input.Sex), "sex", "", "female or male")
	f.Float64Var(&input.HeightCm, "height", 0, "height in cm (100-250)")
	f.Float64Var(&input.WeightKg, "weight", 0, "weight in kg (30-200)")
	f.Float64Var(&input.CreatinineMgDl, "creatinine", 0, "serum creatinine in mg/dL (0.1-15)")
	f.IntVar(&input.SystolicBP, "systolic", 0, "systolic blood pressure in mmHg (80-250)")
	f.IntVar(&input.DiastolicBP, "diastolic", 0, "diastolic blood pressure in mmHg (40-150)")

	f.StringVar((*string)(&input.GripStrength), "grip", string(domain.GripNormal), "grip strength: normal or weak")
	f.StringVar((*string)(&input.SlowWalk), "slow-walk", string(domain.No), "slow walking speed: no or yes")
	f.StringVar((*string)(&input.WeightLoss), "weight-loss", string(domain.No), "unintentional weight loss: no or yes")
	f.StringVar((*string)(&input.Fatigue), "fatigue", string(domain.No), "exhaustion: no or yes")
	f.StringVar((*string)(&input.ActivityLevel), "activity", string(domain.ActivityNormal), "activity level: normal or low")

	f.StringVar((*string)(&input.Drinking), "drinking", string(domain.DrinkingNone), "none, occasional or frequent")
	f.StringVar((*string)(&input.Smoking), "smoking", string(domain.SmokingNone), "none, quit or current")
	f.StringVar((*string)(&input.BetelNut), "betel-nut", string(domain.BetelNutNone), "none, occasional or frequent")
	f.StringVar((*string)(&input.DrugUse), "drug-use", string(domain.DrugUseNone), "none, past or current")
	f.IntVar(&input.StressLevel, "stress", 0, "stress level (0-10)")
	f.Float64Var(&input.SleepHours, "sleep", 0, "average nightly sleep in hours, half-hour steps (0-12)")

	f.StringVar(&jsonPath, "json", "", `read input from a JSON file ("-" for stdin)`)
	f.StringVarP(&outFormat, "output", "o", report.FormatText, "output format: text or json")
	f.StringVar(&logLevel, "log-level", "warn", "log level written to stderr")

	return cmd
}

func loadInput(path string, stdin io.Reader) (*domain.PatientInput, error) {
	r := stdin
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open input file: %w", err)
		}
		defer file.Close()
		r = file
	}

	var input domain.PatientInput
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		return nil, fmt.Errorf("failed to parse input JSON: %w", err)
	}
	return &input, nil
}

func requireFlags(flags *pflag.FlagSet, names ...string) error {
	var missing []string
	for _, name := range names {
		if !flags.Changed(name) {
			missing = append(missing, "--"+name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required flags: %s (or use --json)", strings.Join(missing, ", "))
	}
	return nil
}

// overlayFlags copies every explicitly set flag from flagged onto dst.
func overlayFlags(flags *pflag.FlagSet, dst, flagged *domain.PatientInput) {
	setters := map[string]func(){
		"age":         func() { dst.Age = flagged.Age },
		"sex":         func() { dst.Sex = flagged.Sex },
		"height":      func() { dst.HeightCm = flagged.HeightCm },
		"weight":      func() { dst.WeightKg = flagged.WeightKg },
		"creatinine":  func() { dst.CreatinineMgDl = flagged.CreatinineMgDl },
		"systolic":    func() { dst.SystolicBP = flagged.SystolicBP },
		"diastolic":   func() { dst.DiastolicBP = flagged.DiastolicBP },
		"grip":        func() { dst.GripStrength = flagged.GripStrength },
		"slow-walk":   func() { dst.SlowWalk = flagged.SlowWalk },
		"weight-loss": func() { dst.WeightLoss = flagged.WeightLoss },
		"fatigue":     func() { dst.Fatigue = flagged.Fatigue },
		"activity":    func() { dst.ActivityLevel = flagged.ActivityLevel },
		"drinking":    func() { dst.Drinking = flagged.Drinking },
		"smoking":     func() { dst.Smoking = flagged.Smoking },
		"betel-nut":   func() { dst.BetelNut = flagged.BetelNut },
		"drug-use":    func() { dst.DrugUse = flagged.DrugUse },
		"stress":      func() { dst.StressLevel = flagged.StressLevel },
		"sleep":       func() { dst.SleepHours = flagged.SleepHours },
	}

	flags.Visit(func(f *pflag.Flag) {
		if set, ok := setters[f.Name]; ok {
			set()
		}
	})
}
