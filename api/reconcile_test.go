package api

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"

	"pixelframe/adapters/catalog"
	"pixelframe/adapters/storage"
	"pixelframe/models"
)

func TestReconcileOnce(t *testing.T) {
	// List 跟目錄的 Url 欄位存的是同一種值，測試資料照著真實後端的格式給
	tests := []struct {
		name        string
		blobURLs    []string
		catalogURLs []string
		wantLogs    []string
	}{
		{
			name:        "兩邊一致時不應回報孤兒",
			blobURLs:    []string{"https://storage.googleapis.com/bucket/cat.png"},
			catalogURLs: []string{"https://storage.googleapis.com/bucket/cat.png"},
			wantLogs:    nil,
		},
		{
			name:        "blob沒有對應紀錄時應回報孤兒blob",
			blobURLs:    []string{"https://storage.googleapis.com/bucket/cat.png", "https://storage.googleapis.com/bucket/stray.png"},
			catalogURLs: []string{"https://storage.googleapis.com/bucket/cat.png"},
			wantLogs:    []string{"Orphaned blob without catalog record", "https://storage.googleapis.com/bucket/stray.png"},
		},
		{
			name:        "紀錄沒有對應blob時應回報孤兒紀錄",
			blobURLs:    []string{},
			catalogURLs: []string{"https://storage.googleapis.com/bucket/gone.png"},
			wantLogs:    []string{"Orphaned catalog record without blob", "https://storage.googleapis.com/bucket/gone.png"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			objectStore := storage.NewMockIObjectStore(ctrl)
			cat := catalog.NewMockICatalog(ctrl)

			objectStore.EXPECT().List(gomock.Any()).Return(tt.blobURLs, nil)
			images := make([]models.Image, 0, len(tt.catalogURLs))
			for _, url := range tt.catalogURLs {
				images = append(images, models.Image{Url: url})
			}
			cat.EXPECT().ListAll(gomock.Any()).Return(images, nil)

			impl := &ServerImpl{objectStore: objectStore, catalog: cat}
			buf := &bytes.Buffer{}
			impl.reconcileOnce(context.Background(), slog.New(slog.NewTextHandler(buf, nil)))

			for _, want := range tt.wantLogs {
				assert.Contains(t, buf.String(), want)
			}
			if tt.wantLogs == nil {
				assert.NotContains(t, buf.String(), "Orphaned")
			}
		})
	}
}

func TestReconcileWorkerLifecycle(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))

	ctrl := gomock.NewController(t)
	objectStore := storage.NewMockIObjectStore(ctrl)
	cat := catalog.NewMockICatalog(ctrl)
	objectStore.EXPECT().List(gomock.Any()).Return([]string{}, nil).AnyTimes()
	cat.EXPECT().ListAll(gomock.Any()).Return([]models.Image{}, nil).AnyTimes()

	impl := &ServerImpl{
		objectStore: objectStore,
		catalog:     cat,
		config: ServerConfig{
			Reconcile: ReconcileConfig{Interval: 10 * time.Millisecond},
		},
	}
	impl.Start()
	time.Sleep(50 * time.Millisecond)
	impl.Close()
}

func TestReconcileWorkerDisabled(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))

	impl := &ServerImpl{}
	impl.Start()
	require.Nil(t, impl.cancelFunc)
	impl.Close()
}
