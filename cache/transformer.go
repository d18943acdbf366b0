package cache

import "github.com/vmihailenco/msgpack/v5"

// Transformer is the serialize/deserialize pair applied by stores that
// persist cached values as bytes. The in-process store keeps live values
// and never uses it.
type Transformer interface {
	Serialize(v any) ([]byte, error)
	Deserialize(data []byte, v any) error
}

type msgpackTransformer struct{}

// NewMsgpackTransformer returns the default Transformer, encoding values
// with msgpack.
func NewMsgpackTransformer() Transformer {
	return msgpackTransformer{}
}

func (msgpackTransformer) Serialize(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (msgpackTransformer) Deserialize(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}
