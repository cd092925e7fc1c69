package codec

// Identity returns a Codec[T,T] that performs identity transformations.
// It is the default conversion for fields whose wire and native
// representations coincide.
func Identity[T any]() Codec[T, T] { return identityCodec[T]{} }

type identityCodec[T any] struct{}

func (identityCodec[T]) Decode(w T) (T, error) { return w, nil }
func (identityCodec[T]) Encode(n T) (T, error) { return n, nil }
