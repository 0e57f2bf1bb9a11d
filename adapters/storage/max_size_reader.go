package storage

import (
	"fmt"
	"io"
)

var ErrReachLimitType *ReachLimitError

// ReachLimitError 表示上傳的圖片超過大小上限
// 訊息會直接顯示給上傳者，所以用 FormatBytes 轉成可讀的單位
type ReachLimitError struct {
	MaxBytes int64
}

func (e *ReachLimitError) Error() string {
	return fmt.Sprintf("image exceeds the %s size limit", FormatBytes(e.MaxBytes))
}

// NewMaxSizeReader 包裝上傳串流，限制總共可讀取的長度
// 超過 maxSize 時回傳 ReachLimitError，呼叫端以 errors.As 判斷
func NewMaxSizeReader(r io.Reader, maxSize int64) io.Reader {
	return &maxSizeReader{
		reader:    r,
		limit:     maxSize,
		remaining: maxSize,
	}
}

type maxSizeReader struct {
	reader    io.Reader
	limit     int64 // 大小上限
	remaining int64 // 尚可讀取的長度
}

func (r *maxSizeReader) Read(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}
	// 最多只需要讀到剩餘額度再多一個 byte 就足以判斷是否超限，
	// 不必把超出的內容整段讀進來
	if int64(len(p)) > r.remaining+1 {
		p = p[:r.remaining+1]
	}
	n, err = r.reader.Read(p)

	// 還在額度內，照原樣回傳
	if int64(n) <= r.remaining {
		r.remaining -= int64(n)
		return n, err
	}

	// 讀到的長度吃掉了多出來的那個 byte，表示來源超過上限
	// 把額度內的部分還給呼叫端，並回報超限
	n = int(r.remaining)
	r.remaining = 0
	return n, &ReachLimitError{r.limit}
}
