package encoding

import (
	"reflect"
	"sync"
	"unsafe"

	"github.com/modern-go/reflect2"
)

var decodeProcess sync.Map

// Decode fills the value val points to from stream.
func Decode(stream Stream, val any) error {
	typ := reflect2.TypeOf(val)
	if typ == nil || typ.Kind() != reflect.Pointer {
		return ErrValueInvalid
	}
	ptr := reflect2.PtrOf(val)
	if ptr == nil {
		return ErrValueInvalid
	}
	return getUnmarshalData(typ.(reflect2.PtrType).Elem()).handler(stream, ptr)
}

func getUnmarshalData(typ reflect2.Type) *handlerData {
	key := typ.RType()
	if v, ok := decodeProcess.Load(key); ok {
		return v.(*handlerData)
	}
	unmarshal, size := decode(typ)
	data := &handlerData{unmarshal, size}
	decodeProcess.Store(key, data)
	return data
}

func decode(typ reflect2.Type) (handler, int) {
	switch typ.Kind() {
	case reflect.Bool, reflect.Int8, reflect.Uint8:
		return func(stream Stream, ptr unsafe.Pointer) error {
			_, err := stream.Read(unsafe.Slice((*byte)(ptr), 1))
			return err
		}, 1
	case reflect.Int16, reflect.Uint16:
		return func(stream Stream, ptr unsafe.Pointer) error {
			var b [2]byte
			_, err := stream.Read(b[:])
			if err == nil {
				*(*uint16)(ptr) = stream.ByteOrder().Uint16(b[:])
			}
			return err
		}, 2
	case reflect.Int32, reflect.Uint32:
		return func(stream Stream, ptr unsafe.Pointer) error {
			var b [4]byte
			_, err := stream.Read(b[:])
			if err == nil {
				*(*uint32)(ptr) = stream.ByteOrder().Uint32(b[:])
			}
			return err
		}, 4
	case reflect.Int64, reflect.Uint64:
		return func(stream Stream, ptr unsafe.Pointer) error {
			var b [8]byte
			_, err := stream.Read(b[:])
			if err == nil {
				*(*uint64)(ptr) = stream.ByteOrder().Uint64(b[:])
			}
			return err
		}, 8
	case reflect.Array:
		return decodeArray(typ.(reflect2.ArrayType))
	case reflect.Struct:
		return decodeStruct(typ.(reflect2.StructType))
	}
	panic("Unsupported Type")
}

func decodeArray(typ reflect2.ArrayType) (handler, int) {
	count := typ.Len()
	if isByte(typ.Elem()) {
		return func(stream Stream, ptr unsafe.Pointer) error {
			_, err := stream.Read(unsafe.Slice((*byte)(ptr), count))
			return err
		}, count
	}
	unmarshal, elemSize := decode(typ.Elem())
	return func(stream Stream, ptr unsafe.Pointer) error {
		for i := 0; i < count; i++ {
			if err := unmarshal(stream, typ.UnsafeGetIndex(ptr, i)); err != nil {
				return err
			}
		}
		return nil
	}, elemSize * count
}

func decodeStruct(typ reflect2.StructType) (handler, int) {
	var size int
	fields := make([]structData, 0, typ.NumField())
	for field := range rangeField(typ) {
		unmarshal, fieldSize := decode(field.Type())
		size += fieldSize
		fields = append(fields, structData{unmarshal, field.Offset()})
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
