// internal/blockchain/solbc/errors.go
package solbc

import "fmt"

// Error представляет ошибку RPC с именем метода.
type Error struct {
	Err    error
	Method string
}

func (e *Error) Error() string {
	return fmt.Sprintf("RPC error [%s]: %v", e.Method, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
