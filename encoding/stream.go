package encoding

import (
	"encoding/binary"
	"io"
)

type Stream interface {
	ByteOrder() binary.ByteOrder
	Offset() uint64
	Skip(int) error
	Read([]byte) (int, error)
	Write([]byte) (int, error)
}

type bufferStream struct {
	buf   []byte
	off   int
	order binary.ByteOrder
}

// BufferStream reads and writes a fixed byte slice. Accesses past its end
// fail with io.ErrUnexpectedEOF.
func BufferStream(buf []byte, order binary.ByteOrder) Stream {
	return &bufferStream{buf: buf, order: order}
}

func (bs *bufferStream) ByteOrder() binary.ByteOrder {
	return bs.order
}

func (bs *bufferStream) Offset() uint64 {
	return uint64(bs.off)
}

func (bs *bufferStream) Skip(n int) error {
	if n < 0 || n > len(bs.buf)-bs.off {
		return io.ErrUnexpectedEOF
	}
	bs.off += n
	return nil
}

func (bs *bufferStream) Read(b []byte) (int, error) {
	if len(b) > len(bs.buf)-bs.off {
		return 0, io.ErrUnexpectedEOF
	}
	n := copy(b, bs.buf[bs.off:])
	bs.off += n
	return n, nil
}

func (bs *bufferStream) Write(b []byte) (int, error) {
	if len(b) > len(bs.buf)-bs.off {
		return 0, io.ErrUnexpectedEOF
	}
	n := copy(bs.buf[bs.off:], b)
	bs.off += n
	return n, nil
}
