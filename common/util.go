package common

import (
	"unsafe"
)

func ByteSliceToStringZeroCopy(buffer []byte) string {
	if len(buffer) == 0 {
		return ""
	}
	// nolint: gosec
	return unsafe.String(&buffer[0], len(buffer))
}

func StringToByteSliceZeroCopy(str string) []byte {
	if str == "" {
		return nil
	}
	// nolint: gosec
	return unsafe.Slice(unsafe.StringData(str), len(str))
}

func CopyByteSlice(buff []byte) []byte {
	res := make([]byte, len(buff))
	copy(res, buff)
	return res
}

// RoundUpToMultiple rounds n up to the next multiple of m, m must be a power of two
func RoundUpToMultiple(n int, m int) int {
	return (n + m - 1) &^ (m - 1)
}
