// Package checksum 计算用于确认副本与源文件逐字节一致的内容指纹。
//
// 算法为 CRC-32（IEEE 多项式，与 zlib 的 crc32 取值相同）。
// 只用于发现意外损坏，不提供密码学意义上的保证。
package checksum

import (
	"fmt"
	"hash/crc32"
	"io"
	"os"
)

// File 以流式方式对 path 的完整内容计算 CRC-32。
func File(path string) (uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	h := crc32.NewIEEE()
	if _, err := io.Copy(h, f); err != nil {
		return 0, fmt.Errorf("checksum %q: %w", path, err)
	}
	return h.Sum32(), nil
}
