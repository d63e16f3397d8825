package validation

import (
	"fmt"
	"io"
	"os"
	"time"

	"docuvert/core"

	"github.com/fatih/color"
)

// StepStatus is the status of one validation step.
type StepStatus int

const (
	StepPassed StepStatus = iota
	StepFailed
)

// Step is one executed validation step.
type Step struct {
	Name    string
	Status  StepStatus
	Message string
	Error   error
	Latency time.Duration
}

// SuiteResult is the outcome of a full suite run.
type SuiteResult struct {
	Steps       []Step
	TotalSteps  int
	PassedSteps int
	FailedSteps int
	Duration    time.Duration
	Success     bool
}

// GetFirstError returns the first failed step's error, or nil.
func (r SuiteResult) GetFirstError() error {
	for _, step := range r.Steps {
		if step.Error != nil {
			return step.Error
		}
	}
	return nil
}

// Summary returns a one-line human-readable summary.
func (r SuiteResult) Summary() string {
	verdict := "Passed"
	if !r.Success {
		verdict = "Failed"
	}
	s := fmt.Sprintf("Validation %s: %d/%d checks passed", verdict, r.PassedSteps, r.TotalSteps)
	if r.FailedSteps > 0 {
		s += fmt.Sprintf(", %d failed", r.FailedSteps)
	}
	return s + fmt.Sprintf(" (took %v)", r.Duration.Round(time.Millisecond))
}

// Suite runs all startup checks in sequence with colored progress output.
type Suite struct {
	output       io.Writer
	checker      *ConfigChecker
	showProgress bool
	failFast     bool
}

// NewSuite creates a validation suite for config.
func NewSuite(config *core.Config) *Suite {
	return &Suite{
		output:       os.Stdout,
		checker:      NewConfigChecker(config),
		showProgress: true,
	}
}

// WithOutput redirects progress output.
func (s *Suite) WithOutput(w io.Writer) *Suite {
	s.output = w
	return s
}

// WithShowProgress enables or disables progress output.
func (s *Suite) WithShowProgress(show bool) *Suite {
	s.showProgress = show
	return s
}

// WithFailFast stops the suite at the first failed check.
func (s *Suite) WithFailFast(failFast bool) *Suite {
	s.failFast = failFast
	return s
}

// Validate runs every startup check and returns the collected result.
func (s *Suite) Validate() SuiteResult {
	startTime := time.Now()

	if s.showProgress {
		s.printHeader("Startup Validation")
	}

	checks := []struct {
		name string
		fn   func() CheckResult
	}{
		{"API Key", s.checker.CheckAPIKey},
		{"Data Directory", s.checker.CheckDataDir},
		{"Converter Script", s.checker.CheckConverterScript},
		{"Database Path", s.checker.CheckDatabasePath},
		{"Limits", s.checker.CheckLimits},
	}

	steps := make([]Step, 0, len(checks))
	for _, check := range checks {
		step := s.runStep(check.name, check.fn)
		steps = append(steps, step)
		if s.failFast && step.Status == StepFailed {
			break
		}
	}

	result := s.buildResult(steps, startTime)
	if s.showProgress {
		s.printSummary(result)
	}
	return result
}

func (s *Suite) runStep(name string, fn func() CheckResult) Step {
	startTime := time.Now()
	outcome := fn()

	step := Step{
		Name:    name,
		Message: outcome.Message,
		Error:   outcome.Error,
		Latency: time.Since(startTime),
	}
	if outcome.Valid {
		step.Status = StepPassed
	} else {
		step.Status = StepFailed
	}

	if s.showProgress {
		s.printStep(step)
	}
	return step
}

func (s *Suite) buildResult(steps []Step, startTime time.Time) SuiteResult {
	result := SuiteResult{
		Steps:      steps,
		TotalSteps: len(steps),
		Duration:   time.Since(startTime),
		Success:    true,
	}
	for _, step := range steps {
		if step.Status == StepPassed {
			result.PassedSteps++
		} else {
			result.FailedSteps++
			result.Success = false
		}
	}
	return result
}

func (s *Suite) printHeader(title string) {
	fmt.Fprintln(s.output)
	color.New(color.FgCyan, color.Bold).Fprintf(s.output, "=== %s ===\n", title)
	fmt.Fprintln(s.output)
}

func (s *Suite) printStep(step Step) {
	if step.Status == StepPassed {
		color.New(color.FgGreen).Fprintf(s.output, "  + %s", step.Name)
	} else {
		color.New(color.FgRed).Fprintf(s.output, "  x %s", step.Name)
	}
	if step.Message != "" {
		color.New(color.FgHiBlack).Fprintf(s.output, " - %s", step.Message)
	}
	fmt.Fprintln(s.output)
	if step.Status == StepFailed && step.Error != nil {
		color.New(color.FgRed).Fprintf(s.output, "      %s\n", step.Error.Error())
	}
}

func (s *Suite) printSummary(result SuiteResult) {
	fmt.Fprintln(s.output)
	if result.Success {
		color.New(color.FgGreen, color.Bold).Fprintf(s.output, "%s\n", result.Summary())
	} else {
		color.New(color.FgRed, color.Bold).Fprintf(s.output, "%s\n", result.Summary())
	}
	fmt.Fprintln(s.output)
}
