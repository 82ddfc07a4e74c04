package types

// Response is the closed set of responses the host emits.
//
// Responses carry no discriminator on the wire. The caller infers the
// shape from the fields present, so every variant serializes only the
// fields it owns.
type Response interface {
	// Succeeded reports the value of the wire "success" field.
	Succeeded() bool

	isResponse()
}

// SaveResult is the response to a SaveRequest.
// Exactly one of FullPath and Error is set, selected by Success.
type SaveResult struct {
	Success  bool    `json:"success"`
	FullPath *string `json:"full_path,omitempty"`
	Error    *string `json:"error,omitempty"`
}

// NewSaveSuccess returns a successful SaveResult for fullPath.
func NewSaveSuccess(fullPath string) *SaveResult {
	return &SaveResult{Success: true, FullPath: &fullPath}
}

// NewSaveFailure returns a failed SaveResult carrying msg.
func NewSaveFailure(msg string) *SaveResult {
	return &SaveResult{Success: false, Error: &msg}
}

// Succeeded implements Response.
func (r *SaveResult) Succeeded() bool { return r.Success }

func (*SaveResult) isResponse() {}

// Pong is the response to a PingRequest. Success is always true.
type Pong struct {
	Success bool `json:"success"`
}

// NewPong returns a Pong.
func NewPong() *Pong {
	return &Pong{Success: true}
}

// Succeeded implements Response.
func (r *Pong) Succeeded() bool { return r.Success }

func (*Pong) isResponse() {}

// ErrorResponse reports a protocol-level failure.
// Framing failures end the host before a response can be written, so the
// relay loop never emits this. It is available to transports that can
// still answer after a bad request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// NewErrorResponse returns an ErrorResponse carrying msg.
func NewErrorResponse(msg string) *ErrorResponse {
	return &ErrorResponse{Success: false, Error: msg}
}

// Succeeded implements Response.
func (r *ErrorResponse) Succeeded() bool { return r.Success }

func (*ErrorResponse) isResponse() {}
