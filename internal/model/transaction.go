package model

// MoveCall is one invocation of a published module's function recorded on a
// transaction's logical content.
type MoveCall struct {
	Package  ObjectID `json:"package"`
	Module   string   `json:"module"`
	Function string   `json:"function"`
}

// GasData describes how a transaction pays for execution.
type GasData struct {
	Payment []ObjectRef `json:"payment"`
	Owner   Address     `json:"owner"`
	Price   uint64      `json:"price"`
	Budget  uint64      `json:"budget"`
}

// TransactionData is the verified logical content of one transaction.
type TransactionData struct {
	Sender Address    `json:"sender"`
	Gas    GasData    `json:"gas"`
	Calls  []MoveCall `json:"calls,omitempty"`
}

// MoveCalls returns the recorded calls in the transaction's own call order.
func (t *TransactionData) MoveCalls() []MoveCall {
	return t.Calls
}
