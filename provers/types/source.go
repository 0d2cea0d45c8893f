package types

// Source defines the interface for obtaining the message to hash and prove
type Source interface {
	Message() ([]byte, error)
}
