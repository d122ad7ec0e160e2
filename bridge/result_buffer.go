package bridge

// resultBuffer holds the output of the batch being processed until it is
// handed to the host. It holds at most one value; nil means empty, while an
// empty output batch is staged as a non-nil zero-length slice.
type resultBuffer struct {
	data []byte
}

func (b *resultBuffer) put(data []byte) {
	b.data = data
}

// take returns the staged output, or nil, and empties the slot.
func (b *resultBuffer) take() []byte {
	data := b.data
	b.clear()
	return data
}

func (b *resultBuffer) clear() {
	b.data = nil
}
