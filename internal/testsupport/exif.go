package testsupport

import (
	"encoding/binary"
	"time"
)

// TIFFWithDateTimeOriginal 构造最小的小端 TIFF 数据：IFD0 只含 ExifIFDPointer，
// Exif IFD 只含一个 DateTimeOriginal 标签。也可直接作为 .nef 测试文件的内容。
func TIFFWithDateTimeOriginal(t time.Time) []byte {
	return tiffWithRawDate(t.Format("2006:01:02 15:04:05"))
}

// JPEGWithDateTimeOriginal 把上面的 TIFF 数据包进 SOI + APP1("Exif") + EOI。
func JPEGWithDateTimeOriginal(t time.Time) []byte {
	return jpegWithTIFF(TIFFWithDateTimeOriginal(t))
}

// JPEGWithRawDate 允许测试写入任意（可能非法的）日期字符串。
func JPEGWithRawDate(raw string) []byte {
	return jpegWithTIFF(tiffWithRawDate(raw))
}

// TIFFWithRawDate 是 JPEGWithRawDate 的 TIFF 版本。
func TIFFWithRawDate(raw string) []byte {
	return tiffWithRawDate(raw)
}

// PlainJPEG 是不含任何 APP1 段的 JPEG 标记流。
func PlainJPEG() []byte {
	return []byte{0xFF, 0xD8, 0xFF, 0xDB, 0x00, 0x04, 0x00, 0x00, 0xFF, 0xD9}
}

// CorruptExifJPEG 带有 APP1 Exif 段，但其中的 TIFF 头是垃圾数据。
func CorruptExifJPEG() []byte {
	return jpegWithTIFF([]byte{'X', 'X', 0x00, 0x00, 0xde, 0xad, 0xbe, 0xef, 0x01, 0x02})
}

const (
	tagExifIFDPointer   = 0x8769
	tagDateTimeOriginal = 0x9003
	typeASCII           = 2
	typeLong            = 4
)

func tiffWithRawDate(raw string) []byte {
	le := binary.LittleEndian
	date := append([]byte(raw), 0)

	const (
		ifd0Off = 8
		ifdLen  = 2 + 12 + 4
		exifOff = ifd0Off + ifdLen
		dataOff = exifOff + ifdLen
	)

	b := make([]byte, dataOff+len(date))
	copy(b[0:], "II")
	le.PutUint16(b[2:], 42)
	le.PutUint32(b[4:], ifd0Off)

	putIFD(b[ifd0Off:], tagExifIFDPointer, typeLong, 1, exifOff)

	if len(date) <= 4 {
		// 短值直接内联在条目里
		putIFD(b[exifOff:], tagDateTimeOriginal, typeASCII, uint32(len(date)), 0)
		copy(b[exifOff+2+8:], date)
		return b[:dataOff]
	}
	putIFD(b[exifOff:], tagDateTimeOriginal, typeASCII, uint32(len(date)), dataOff)
	copy(b[dataOff:], date)
	return b
}

// putIFD 写入只有一个条目、下一 IFD 偏移为 0 的 IFD。
func putIFD(b []byte, tag, typ uint16, count, value uint32) {
	le := binary.LittleEndian
	le.PutUint16(b[0:], 1)
	le.PutUint16(b[2:], tag)
	le.PutUint16(b[4:], typ)
	le.PutUint32(b[6:], count)
	le.PutUint32(b[10:], value)
	le.PutUint32(b[14:], 0)
}

func jpegWithTIFF(tiff []byte) []byte {
	payload := append([]byte("Exif\x00\x00"), tiff...)
	segLen := len(payload) + 2

	out := make([]byte, 0, 4+2+len(payload)+2)
	out = append(out, 0xFF, 0xD8, 0xFF, 0xE1, byte(segLen>>8), byte(segLen))
	out = append(out, payload...)
	out = append(out, 0xFF, 0xD9)
	return out
}
