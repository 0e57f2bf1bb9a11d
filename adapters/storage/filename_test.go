package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pixelframe/adapters/storage"
)

func TestAllowedExtension(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     bool
	}{
		{
			name:     "png lowercase",
			filename: "cat.png",
			want:     true,
		},
		{
			name:     "jpeg uppercase",
			filename: "photo.JPEG",
			want:     true,
		},
		{
			name:     "mixed case gif",
			filename: "anim.GiF",
			want:     true,
		},
		{
			name:     "沒有副檔名",
			filename: "README",
			want:     false,
		},
		{
			name:     "不允許的副檔名",
			filename: "script.svg",
			want:     false,
		},
		{
			name:     "只看最後一個點",
			filename: "archive.png.exe",
			want:     false,
		},
		{
			name:     "空字串",
			filename: "",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, storage.AllowedExtension(tt.filename))
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "已經安全的檔名",
			input: "cat.png",
			want:  "cat.png",
		},
		{
			name:  "移除路徑",
			input: "../../etc/passwd.png",
			want:  "passwd.png",
		},
		{
			name:  "Windows 路徑",
			input: `C:\photos\dog.jpg`,
			want:  "dog.jpg",
		},
		{
			name:  "空白與特殊字元壓縮成底線",
			input: "my cool photo!.png",
			want:  "my_cool_photo_.png",
		},
		{
			name:  "移除開頭的點",
			input: ".hidden.png",
			want:  "hidden.png",
		},
		{
			name:  "只有不安全字元",
			input: "///",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, storage.SanitizeFilename(tt.input))
		})
	}
}
