package envelope

import (
	"codeaxe/internal/errors"
)

// Builder constructs Response envelopes using a fluent API.
type Builder struct {
	resp *Response
}

// New creates a new envelope builder.
func New() *Builder {
	return &Builder{
		resp: &Response{
			SchemaVersion: CurrentSchemaVersion,
		},
	}
}

// Data sets the tool-specific payload.
func (b *Builder) Data(data interface{}) *Builder {
	b.resp.Data = data
	return b
}

func (b *Builder) meta() *Meta {
	if b.resp.Meta == nil {
		b.resp.Meta = &Meta{}
	}
	return b.resp.Meta
}

// Provider records which symbol provider answered.
func (b *Builder) Provider(name string) *Builder {
	if name != "" {
		b.meta().Provider = name
	}
	return b
}

// Messages appends user-facing messages.
func (b *Builder) Messages(msgs ...string) *Builder {
	if len(msgs) > 0 {
		m := b.meta()
		m.Messages = append(m.Messages, msgs...)
	}
	return b
}

// Warning adds a warning.
func (b *Builder) Warning(code, msg string) *Builder {
	b.resp.Warnings = append(b.resp.Warnings, Warning{Code: code, Message: msg})
	return b
}

// Error records err. Coded errors keep their code; anything else is
// reported as INTERNAL_ERROR.
func (b *Builder) Error(err error) *Builder {
	if err == nil {
		return b
	}
	code := errors.CodeOf(err)
	if code == "" {
		code = errors.InternalError
	}
	b.resp.Error = &ErrorInfo{Code: string(code), Message: err.Error()}
	return b
}

// Build returns the envelope.
func (b *Builder) Build() *Response {
	return b.resp
}

// Failed reports whether the response carries an error that is not one of
// the informational conditions.
func (r *Response) Failed() bool {
	if r.Error == nil {
		return false
	}
	switch errors.ErrorCode(r.Error.Code) {
	case errors.NoActiveContext, errors.NoSymbols, errors.NoEnclosingFunction:
		return false
	}
	return true
}
