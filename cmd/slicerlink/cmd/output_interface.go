package cmd

import "slicerlink/internal/output"

// OutputInterface abstracts the CLI's user-facing printing so command
// tests can record what a run would have shown.
type OutputInterface interface {
	Infof(format string, a ...any)
	Errorf(format string, a ...any)
	Successf(format string, a ...any)
	Warningf(format string, a ...any)
	Step(step int, total int, message string)
	Table(headers []string, rows [][]string)
	Blank()
	Bold(text string) string
	Cyan(text string) string
	KeyValue(key, value string)
	Prompt(prompt string) string
	PromptSecret(prompt string) string
}

// outputWrapper forwards every call to the output package.
type outputWrapper struct{}

// NewOutputWrapper returns the production OutputInterface, which prints
// through the output package.
func NewOutputWrapper() OutputInterface {
	return &outputWrapper{}
}

func (o *outputWrapper) Infof(format string, a ...any) {
	output.Infof(format, a...)
}

func (o *outputWrapper) Errorf(format string, a ...any) {
	output.Errorf(format, a...)
}

func (o *outputWrapper) Successf(format string, a ...any) {
	output.Successf(format, a...)
}

func (o *outputWrapper) Warningf(format string, a ...any) {
	output.Warningf(format, a...)
}

func (o *outputWrapper) Step(step int, total int, message string) {
	output.Step(step, total, message)
}

func (o *outputWrapper) Table(headers []string, rows [][]string) {
	output.Table(headers, rows)
}

func (o *outputWrapper) Blank() {
	output.Blank()
}

func (o *outputWrapper) Bold(text string) string {
	return output.Bold(text)
}

func (o *outputWrapper) Cyan(text string) string {
	return output.Cyan(text)
}

func (o *outputWrapper) KeyValue(key, value string) {
	output.KeyValue(key, value)
}

func (o *outputWrapper) Prompt(prompt string) string {
	return output.Prompt(prompt)
}

func (o *outputWrapper) PromptSecret(prompt string) string {
	return output.PromptSecret(prompt)
}
