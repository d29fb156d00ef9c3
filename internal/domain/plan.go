package domain

// TransferPlan 描述单个文件的去向。它只是数据；执行由引擎负责，且必须遵循
// 先复制、再校验、最后删除的顺序。
type TransferPlan struct {
	File   ImageFile
	Date   CaptureDate
	DstDir string // <output>/<year>/<month>
	Dst    string // <output>/<year>/<month>/<name>
}
