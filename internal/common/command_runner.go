package common

import (
	"context"
	"fmt"

	"atsgenie/internal/errors"
)

// CreateInputFunc builds the operation input from the documents named on the command line
type CreateInputFunc[Input any] func(docs []Document) (Input, error)

// OperationFunc runs the command's work
type OperationFunc[Input, Output any] func(context.Context, Input) (Output, error)

// Runner ties file reading, the operation and output together for file based commands
type Runner struct {
	Files  *FileProcessor
	Output *OutputHandler
	Logger *errors.Logger
}

// RunCommand reads args, builds the input, runs op and writes the formatted result
func RunCommand[Input, Output any](
	ctx context.Context,
	r *Runner,
	cmdConfig CommandConfig,
	args []string,
	createInput CreateInputFunc[Input],
	op OperationFunc[Input, Output],
) error {
	if err := ValidateOutputTarget(cmdConfig.OutputFormat, cmdConfig.OutputFile); err != nil {
		return err
	}

	docs, err := r.Files.ValidateAndReadFiles(args...)
	if err != nil {
		return err
	}

	input, err := createInput(docs)
	if err != nil {
		return fmt.Errorf("failed to create input from file contents: %w", err)
	}

	r.Logger.Debug("Running command", "files", len(docs), "format", cmdConfig.OutputFormat)

	result, err := op(ctx, input)
	if err != nil {
		return err
	}

	return r.Output.HandleOutput(result, cmdConfig)
}
