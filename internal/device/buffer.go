package device

import "fmt"

// Scalar lists the element types a Buffer can hold.
type Scalar interface {
	~float32 | ~int32 | ~uint8
}

// Kind identifies the element type of a buffer binding.
type Kind uint8

const (
	// KindFloat32 is a storage buffer of float32 values.
	KindFloat32 Kind = iota + 1
	// KindInt32 is a buffer of int32 values.
	KindInt32
	// KindUint8 is a byte buffer, used for RGBA8 targets.
	KindUint8
)

func (k Kind) String() string {
	switch k {
	case KindFloat32:
		return "f32"
	case KindInt32:
		return "i32"
	case KindUint8:
		return "u8"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

func kindOf[T Scalar]() Kind {
	var zero T
	switch any(zero).(type) {
	case float32:
		return KindFloat32
	case int32:
		return KindInt32
	case uint8:
		return KindUint8
	}
	return 0
}

// BufferDescriptor describes a buffer allocation.
type BufferDescriptor struct {
	Label string
	// Len is the number of elements.
	Len int
}

// Buffer is device memory holding Len elements of T. The host never touches
// data directly; see Queue.WriteBuffer and ReadBuffer.
type Buffer[T Scalar] struct {
	label string
	data  []T
}

// CreateBuffer allocates a zero-filled buffer.
func CreateBuffer[T Scalar](d *Device, desc BufferDescriptor) (*Buffer[T], error) {
	if err := d.Err(); err != nil {
		return nil, err
	}
	if desc.Len <= 0 || desc.Len > d.limits.MaxBufferElements {
		return nil, fmt.Errorf("%w: buffer %q of %d elements (max %d)", ErrAllocation, desc.Label, desc.Len, d.limits.MaxBufferElements)
	}
	return &Buffer[T]{label: desc.Label, data: make([]T, desc.Len)}, nil
}

// Label returns the debug label.
func (b *Buffer[T]) Label() string { return b.label }

// Len returns the element count.
func (b *Buffer[T]) Len() int { return len(b.data) }

// Destroy releases the backing memory. The buffer must not be used after.
func (b *Buffer[T]) Destroy() { b.data = nil }

func (b *Buffer[T]) kind() Kind { return kindOf[T]() }

func (b *Buffer[T]) raw() any { return b.data }
