package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"carecircle-server/internal/config"
	"carecircle-server/internal/triage"
)

var (
	evalPain    int
	evalTemp    float64
	evalUnit    string
	evalBP      string
	evalHistory []string
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Classify one set of vitals and print the result as JSON",
	Long: `Classify vitals with the configured thresholds (TRIAGE_* variables).

History entries are newest first, written as pain[:temperature[:systolic/diastolic]]
in the same unit as --unit, for example --history 7:101.5 --history 6:101.2:130/85.`,
	Example: `  carecircle evaluate --pain 8 --temp 38.6 --unit C --bp 142/91`,
	RunE:    runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().IntVar(&evalPain, "pain", 0, "Pain level 1..10 (required)")
	evaluateCmd.Flags().Float64Var(&evalTemp, "temp", 0, "Body temperature (0 = not recorded)")
	evaluateCmd.Flags().StringVar(&evalUnit, "unit", "F", "Temperature unit, F or C")
	evaluateCmd.Flags().StringVar(&evalBP, "bp", "", `Blood pressure, "120/80"`)
	evaluateCmd.Flags().StringArrayVar(&evalHistory, "history", nil, "Prior observation, newest first (repeatable)")
	_ = evaluateCmd.MarkFlagRequired("pain")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	th, err := config.LoadThresholds()
	if err != nil {
		return err
	}
	unit, err := triage.ParseUnit(evalUnit)
	if err != nil {
		return err
	}

	current, err := vitals(evalPain, evalTemp, evalBP, unit)
	if err != nil {
		return err
	}
	history := make([]triage.Vitals, 0, len(evalHistory))
	for i, h := range evalHistory {
		v, err := parseHistory(h, unit)
		if err != nil {
			return fmt.Errorf("history[%d]: %w", i, err)
		}
		history = append(history, v)
	}

	res := triage.NewClassifier(th).Evaluate(current, history)

	out := struct {
		triage.Result
		Status   string                `json:"status"`
		Referral triage.ReferralAdvice `json:"referral"`
	}{res, res.Status(), triage.Referral(res.Tier)}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func vitals(pain int, temp float64, bp string, unit triage.Unit) (triage.Vitals, error) {
	if pain < 1 || pain > 10 {
		return triage.Vitals{}, fmt.Errorf("pain must be 1..10, got %d", pain)
	}
	sys, dia, err := triage.ParseBloodPressure(bp)
	if err != nil {
		return triage.Vitals{}, err
	}
	var tp *float64
	if temp != 0 {
		tp = &temp
	}
	return triage.Vitals{
		PainLevel:   pain,
		Temperature: triage.NormalizeTemperature(tp, unit),
		Systolic:    sys,
		Diastolic:   dia,
	}, nil
}

func parseHistory(s string, unit triage.Unit) (triage.Vitals, error) {
	parts := strings.SplitN(s, ":", 3)
	pain, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return triage.Vitals{}, fmt.Errorf("pain %q: %w", parts[0], err)
	}
	var temp float64
	if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
		if temp, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64); err != nil {
			return triage.Vitals{}, fmt.Errorf("temperature %q: %w", parts[1], err)
		}
	}
	var bp string
	if len(parts) > 2 {
		bp = parts[2]
	}
	return vitals(pain, temp, bp, unit)
}
