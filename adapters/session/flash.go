package session

import (
	"encoding/base64"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

const flashKey = "flashes"

// Flash 是排隊等著在下一個頁面顯示給使用者的一次性訊息
type Flash struct {
	Category string
	Message  string
}

// AddFlash 將訊息累積到 session 中，等待下一次渲染時取出
// 訊息清單以 msgpack 序列化後用 base64 存成單一 session 值
func AddFlash(sess ISession, category, message string) error {
	const op = "session.AddFlash"
	flashes, err := decodeFlashes(sess.Get(flashKey))
	if err != nil {
		// 解不開的 flash 資料直接丟棄，從頭開始累積
		flashes = nil
	}
	flashes = append(flashes, Flash{Category: category, Message: message})
	encoded, err := encodeFlashes(flashes)
	if err != nil {
		return fmt.Errorf("%s: failed to encode flashes: %w", op, err)
	}
	sess.Set(flashKey, encoded)
	return nil
}

// PopFlashes 取出並清空 session 中累積的訊息
func PopFlashes(sess ISession) []Flash {
	flashes, err := decodeFlashes(sess.Get(flashKey))
	if err != nil {
		flashes = nil
	}
	sess.Delete(flashKey)
	return flashes
}

func encodeFlashes(flashes []Flash) (string, error) {
	raw, err := msgpack.Marshal(flashes)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func decodeFlashes(encoded string) ([]Flash, error) {
	if encoded == "" {
		return nil, nil
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	var flashes []Flash
	if err := msgpack.Unmarshal(raw, &flashes); err != nil {
		return nil, err
	}
	return flashes, nil
}
