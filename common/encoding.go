package common

import (
	"encoding/binary"
	"unsafe"
)

// Values in row blocks and vectors are stored in little-endian order.
// Most CPU architectures are little-endian so this allows us to simply cast values in the case of int types

var littleEndian = binary.LittleEndian
var IsLittleEndian = isLittleEndian()

func AppendUint32ToBufferLE(buffer []byte, v uint32) []byte {
	return append(buffer, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func AppendUint64ToBufferLE(buffer []byte, v uint64) []byte {
	return append(buffer, byte(v), byte(v>>8), byte(v>>16), byte(v>>24), byte(v>>32),
		byte(v>>40), byte(v>>48), byte(v>>56))
}

func ReadUint32FromBufferLE(buffer []byte, offset int) (uint32, int) {
	if IsLittleEndian {
		_ = buffer[offset+3]
		// nolint: gosec
		return *(*uint32)(unsafe.Pointer(&buffer[offset])), offset + 4
	}
	return littleEndian.Uint32(buffer[offset:]), offset + 4
}

func ReadUint64FromBufferLE(buffer []byte, offset int) (uint64, int) {
	if IsLittleEndian {
		// If architecture is little endian we can simply cast to a pointer
		_ = buffer[offset+7]
		// nolint: gosec
		return *(*uint64)(unsafe.Pointer(&buffer[offset])), offset + 8
	}
	return littleEndian.Uint64(buffer[offset:]), offset + 8
}

// WriteUint32ToBufferLE writes v in place at offset and returns the offset following it
func WriteUint32ToBufferLE(buffer []byte, offset int, v uint32) int {
	littleEndian.PutUint32(buffer[offset:offset+4], v)
	return offset + 4
}

// WriteUint64ToBufferLE writes v in place at offset and returns the offset following it
func WriteUint64ToBufferLE(buffer []byte, offset int, v uint64) int {
	littleEndian.PutUint64(buffer[offset:offset+8], v)
	return offset + 8
}

// ReadBitmapWordLE reads the 64 bits of bitmap starting at bit wordIndex*64. Bytes past the end of the bitmap read
// as zero so a short final word can be read without padding.
func ReadBitmapWordLE(bitmap []byte, wordIndex int) uint64 {
	start := wordIndex * 8
	if start+8 <= len(bitmap) {
		w, _ := ReadUint64FromBufferLE(bitmap, start)
		return w
	}
	var w uint64
	for i := start; i < len(bitmap); i++ {
		w |= uint64(bitmap[i]) << (8 * uint(i-start))
	}
	return w
}

// WriteBitmapWordLE writes the low nbits bits of word into bitmap at bit wordIndex*64 leaving the remaining bits of
// that word untouched.
func WriteBitmapWordLE(bitmap []byte, wordIndex int, word uint64, nbits int) {
	start := wordIndex * 8
	if nbits == 64 && start+8 <= len(bitmap) {
		WriteUint64ToBufferLE(bitmap, start, word)
		return
	}
	for i := 0; i < nbits; i++ {
		b := &bitmap[start+i/8]
		mask := byte(1) << uint(i%8)
		if word&(1<<uint(i)) != 0 {
			*b |= mask
		} else {
			*b &^= mask
		}
	}
}

// Are we running on a machine with a little endian architecture?
func isLittleEndian() bool {
	val := uint64(123456)
	buffer := make([]byte, 0, 8)
	buffer = AppendUint64ToBufferLE(buffer, val)
	valRead := *(*uint64)(unsafe.Pointer(&buffer[0])) // nolint: gosec
	return val == valRead
}
