package mcp

const jsonrpcVersion = "2.0"

// Message is one line of the stdio stream. Requests carry a method and an id,
// notifications a method only, and responses an id with a result or an error.
type Message struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id,omitempty"`
	Method  string      `json:"method,omitempty"`
	Params  interface{} `json:"params,omitempty"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

// RPCError is the error member of a failed response.
type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

const (
	ParseError     = -32700
	InvalidRequest = -32600
	MethodNotFound = -32601
	InvalidParams  = -32602
	InternalError  = -32603
)

func failure(id interface{}, code int, message string) *Message {
	return &Message{JSONRPC: jsonrpcVersion, ID: id, Error: &RPCError{Code: code, Message: message}}
}

func reply(id interface{}, result interface{}) *Message {
	return &Message{JSONRPC: jsonrpcVersion, ID: id, Result: result}
}

func (m *Message) isRequest() bool      { return m.Method != "" && m.ID != nil }
func (m *Message) isNotification() bool { return m.Method != "" && m.ID == nil }

// isResponse reports a client reply to a server request, which needs no answer.
func (m *Message) isResponse() bool {
	return m.Method == "" && m.ID != nil && (m.Result != nil || m.Error != nil)
}
