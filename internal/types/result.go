package types

// Source names the store that served a storage call.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)

// Result wraps data returned by the storage layer together with where it
// came from. Notice is set when the remote API failed and the local store
// was used instead.
type Result[T any] struct {
	Data   T      `json:"data"`
	Source Source `json:"source"`
	Notice string `json:"notice,omitempty"`
}
