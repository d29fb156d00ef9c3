package domain

// ImageFile 描述一次扫描得到的图片文件（只做 stat，不读内容）。
//
// 不变量：
// - AbsPath 为规范化的绝对路径
// - Ext 为小写且保留前导点（".jpg"）
type ImageFile struct {
	AbsPath string
	RelPath string // 相对 Root
	Root    string // 发现该文件的输入目录
	Dir     string
	Name    string
	Ext     string
	Size    int64
}
