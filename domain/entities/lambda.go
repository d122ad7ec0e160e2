package entities

// Lambda is a program able to process arbitrary byte array batches.
type Lambda struct {
	// Program is the engine-language source, forwarded to the engine verbatim.
	Program []byte `json:"program"`

	// ID identifies the lambda within a compute context.
	ID int32 `json:"id"`
}

// NewLambda creates a Lambda from program text.
func NewLambda(id int32, program string) Lambda {
	return Lambda{ID: id, Program: []byte(program)}
}

// Batch is an opaque byte payload to be processed by the lambda identified by
// LambdaID.
type Batch struct {
	Data []byte `json:"data"`

	LambdaID int32 `json:"lambda_id"`

	// BatchID is chosen by the host and echoed back in log entries and output.
	BatchID int32 `json:"batch_id"`
}
