// Package common provides shared types used across the burrow tool.
// It includes execution results, structured output for rendering, and the
// fault taxonomy used to classify lifecycle failures.
package common

// ExecutionResult represents the outcome of a burrow operation.
type ExecutionResult struct {
	// ExitCode is the status code the process should exit with.
	ExitCode int

	// Output holds structured data to render for the user, if any.
	Output *Output
}

// Output carries structured command output for rendering.
type Output struct {
	// Message is a free-form line printed before any structured data.
	Message string
	// KV is a list of labelled values, printed one per line.
	KV []KV
	// Table is rectangular data, printed with a header row.
	Table *Table
}

// KV is a single labelled value in an Output.
type KV struct {
	Key   string
	Value string
}

// Table is rectangular output data.
type Table struct {
	Header []string
	Rows   [][]string
}
