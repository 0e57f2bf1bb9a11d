package storage

import (
	"regexp"
	"strings"
)

// AllowedExtensions 定義了允許上傳的圖片副檔名
var AllowedExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"gif":  {},
}

// AllowedExtension 檢查檔名最後一個 . 之後的副檔名（不分大小寫）是否在允許清單中
// 沒有副檔名的檔名一律不允許
func AllowedExtension(filename string) bool {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return false
	}
	_, ok := AllowedExtensions[strings.ToLower(filename[idx+1:])]
	return ok
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// SanitizeFilename 將使用者提供的檔名轉換成可以安全放進物件 key 與 URL 的形式
// 只保留最後一段路徑，並把不安全的字元壓縮成底線
// 清理後可能是空字串，由呼叫端決定如何處理
func SanitizeFilename(name string) string {
	if idx := strings.LastIndexAny(name, `/\`); idx >= 0 {
		name = name[idx+1:]
	}
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	return strings.Trim(name, "._")
}
