// Package encoding converts between Go values and the packed little-endian
// structures the boot chain leaves in memory. Fields are laid out back to
// back with no alignment padding; a field tagged `encoding:"ignore"` takes
// no space.
package encoding

import (
	"iter"
	"reflect"
	"sync"
	"unsafe"

	"github.com/modern-go/reflect2"
)

type handler = func(Stream, unsafe.Pointer) error

type handlerData struct {
	handler handler
	size    int
}

type structData struct {
	handler handler
	offset  uintptr
}

var encodeProcess sync.Map

// Size returns the packed size of val's type. val may be a value or a pointer.
func Size(val any) int {
	typ := elemType(reflect2.TypeOf(val))
	if typ == nil {
		return 0
	}
	return getMarshalData(typ).size
}

func Encode(stream Stream, val any) error {
	typ := reflect2.TypeOf(val)
	if typ == nil {
		return ErrValueInvalid
	}
	ptr := reflect2.PtrOf(val)
	if typ.Kind() == reflect.Pointer {
		if ptr == nil {
			return ErrValueInvalid
		}
		typ = typ.(reflect2.PtrType).Elem()
	}
	return getMarshalData(typ).handler(stream, ptr)
}

func elemType(typ reflect2.Type) reflect2.Type {
	if typ != nil && typ.Kind() == reflect.Pointer {
		return typ.(reflect2.PtrType).Elem()
	}
	return typ
}

func getMarshalData(typ reflect2.Type) *handlerData {
	key := typ.RType()
	if v, ok := encodeProcess.Load(key); ok {
		return v.(*handlerData)
	}
	marshal, size := encode(typ)
	data := &handlerData{marshal, size}
	encodeProcess.Store(key, data)
	return data
}

func encode(typ reflect2.Type) (handler, int) {
	switch typ.Kind() {
	case reflect.Bool, reflect.Int8, reflect.Uint8:
		return func(stream Stream, ptr unsafe.Pointer) error {
			_, err := stream.Write(unsafe.Slice((*byte)(ptr), 1))
			return err
		}, 1
	case reflect.Int16, reflect.Uint16:
		return func(stream Stream, ptr unsafe.Pointer) error {
			var b [2]byte
			stream.ByteOrder().PutUint16(b[:], *(*uint16)(ptr))
			_, err := stream.Write(b[:])
			return err
		}, 2
	case reflect.Int32, reflect.Uint32:
		return func(stream Stream, ptr unsafe.Pointer) error {
			var b [4]byte
			stream.ByteOrder().PutUint32(b[:], *(*uint32)(ptr))
			_, err := stream.Write(b[:])
			return err
		}, 4
	case reflect.Int64, reflect.Uint64:
		return func(stream Stream, ptr unsafe.Pointer) error {
			var b [8]byte
			stream.ByteOrder().PutUint64(b[:], *(*uint64)(ptr))
			_, err := stream.Write(b[:])
			return err
		}, 8
	case reflect.Array:
		return encodeArray(typ.(reflect2.ArrayType))
	case reflect.Struct:
		return encodeStruct(typ.(reflect2.StructType))
	}
	panic("Unsupported Type")
}

func encodeArray(typ reflect2.ArrayType) (handler, int) {
	count := typ.Len()
	if isByte(typ.Elem()) {
		return func(stream Stream, ptr unsafe.Pointer) error {
			_, err := stream.Write(unsafe.Slice((*byte)(ptr), count))
			return err
		}, count
	}
	marshal, elemSize := encode(typ.Elem())
	return func(stream Stream, ptr unsafe.Pointer) error {
		for i := 0; i < count; i++ {
			if err := marshal(stream, typ.UnsafeGetIndex(ptr, i)); err != nil {
				return err
			}
		}
		return nil
	}, elemSize * count
}

func encodeStruct(typ reflect2.StructType) (handler, int) {
	var size int
	fields := make([]structData, 0, typ.NumField())
	for field := range rangeField(typ) {
		marshal, fieldSize := encode(field.Type())
		size += fieldSize
		fields = append(fields, structData{marshal, field.Offset()})
	}
	return func(stream Stream, ptr unsafe.Pointer) error {
		for _, data := range fields {
			if err := data.handler(stream, unsafe.Add(ptr, data.offset)); err != nil {
				return err
			}
		}
		return nil
	}, size
}

func rangeField(typ reflect2.StructType) iter.Seq[reflect2.StructField] {
	return func(yield func(reflect2.StructField) bool) {
		for i := 0; i < typ.NumField(); i++ {
			field := typ.Field(i)
			if field.Tag().Get("encoding") == "ignore" {
				continue
			}
			if !yield(field) {
				return
			}
		}
	}
}

func isByte(typ reflect2.Type) bool {
	switch typ.Kind() {
	case reflect.Bool, reflect.Int8, reflect.Uint8:
		return true
	}
	return false
}
