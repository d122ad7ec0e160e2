package entities

import "fmt"

// Code is an operational result code produced by an engine. Codes are always
// reported to the host through its result callback and never abort a call.
type Code int32

const (
	// CodeOK indicates the operation succeeded.
	CodeOK Code = iota

	// CodeLambdaUnknown indicates no lambda is registered under the given id.
	CodeLambdaUnknown

	// CodeLambdaCompile indicates the lambda program could not be compiled.
	CodeLambdaCompile

	// CodeLambdaInterface indicates the compiled lambda lacks a required export.
	CodeLambdaInterface

	// CodeLambdaInit indicates the lambda failed while starting up.
	CodeLambdaInit

	// CodeLambdaRuntime indicates the lambda trapped while processing a batch.
	CodeLambdaRuntime

	// CodeLambdaFailed indicates the lambda returned a non-zero status.
	CodeLambdaFailed

	// CodeBatchTooLarge indicates the batch exceeds the engine's input limit.
	CodeBatchTooLarge

	// CodeBatchDuplicate indicates the lambda emitted more than one output batch.
	CodeBatchDuplicate
)

var codeDescriptions = map[Code]string{
	CodeOK:              "no error",
	CodeLambdaUnknown:   "unknown lambda",
	CodeLambdaCompile:   "lambda program failed to compile",
	CodeLambdaInterface: "lambda does not export the required interface",
	CodeLambdaInit:      "lambda failed to initialize",
	CodeLambdaRuntime:   "lambda raised a runtime error",
	CodeLambdaFailed:    "lambda reported failure",
	CodeBatchTooLarge:   "batch exceeds engine size limit",
	CodeBatchDuplicate:  "lambda emitted more than one output batch",
}

// Description returns the human-readable description of the code.
func (c Code) Description() string {
	if d, ok := codeDescriptions[c]; ok {
		return d
	}
	return fmt.Sprintf("unknown error code %d", int32(c))
}

// IsOK reports whether c is CodeOK.
func (c Code) IsOK() bool {
	return c == CodeOK
}

func (c Code) String() string {
	return c.Description()
}
