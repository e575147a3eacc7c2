package symbol

import (
	"encoding/binary"

	"github.com/go-kit/log"
	"go.uber.org/atomic"
)

var (
	imageSeqNo = atomic.NewUint64(0)
)

// Image an analyzed executable opened in a session
type Image struct {
	ID uint64 // image number, unique within the process
	*BinaryInfo
}

// OpenImage analyzes `path` and assigns it the next image number.
func OpenImage(path string, order binary.ByteOrder, logger log.Logger) (*Image, error) {
	bi, err := Analyze(path, order, logger)
	if err != nil {
		return nil, err
	}
	return &Image{ID: imageSeqNo.Add(1), BinaryInfo: bi}, nil
}

// Images all opened images
type Images []*Image

// Len 返回长度
func (im Images) Len() int {
	return len(im)
}

// Less 检查im[i]是否小于im[j]
func (im Images) Less(i, j int) bool {
	return im[i].ID < im[j].ID
}

// Swap 交换im[i]和im[j]
func (im Images) Swap(i, j int) {
	im[i], im[j] = im[j], im[i]
}
