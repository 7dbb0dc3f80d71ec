package parser

import "fmt"

// Record kinds reported in DecodeError.
const (
	KindMarketDetails = "market_details"
	KindTicker        = "ticker"
	KindOrderBook     = "orderbook"
)

// DecodeError reports a response body that could not be turned into records.
// Index is the offending array element (-1 for document-level failures) and
// Field the offending key when known.
type DecodeError struct {
	Kind  string
	Index int
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	switch {
	case e.Field != "" && e.Index >= 0:
		return fmt.Sprintf("decode %s[%d].%s: %v", e.Kind, e.Index, e.Field, e.Err)
	case e.Field != "":
		return fmt.Sprintf("decode %s.%s: %v", e.Kind, e.Field, e.Err)
	case e.Index >= 0:
		return fmt.Sprintf("decode %s[%d]: %v", e.Kind, e.Index, e.Err)
	default:
		return fmt.Sprintf("decode %s: %v", e.Kind, e.Err)
	}
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func documentError(kind string, err error) *DecodeError {
	return &DecodeError{Kind: kind, Index: -1, Err: err}
}
