package api

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"pixelframe/adapters/catalog"
	redisAdapter "pixelframe/adapters/redis"
	"pixelframe/adapters/storage"
	"pixelframe/models"
)

// 以 miniredis 驗證登入狀態可以經由 Redis session 跨請求存活
func TestSessionOverRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	users := catalog.NewMockIUserStore(ctrl)
	cat := catalog.NewMockICatalog(ctrl)

	hash, err := hashPassword("correct horse")
	require.NoError(t, err)
	users.EXPECT().
		FindByUsername(gomock.Any(), "alice").
		Return(&models.User{ID: 7, Username: "alice", PasswordHash: hash}, nil)
	cat.EXPECT().
		ListByOwner(gomock.Any(), uint(7)).
		Return([]models.Image{{Title: "cat", Url: "https://cdn.example.com/user_7/cat.png"}}, nil)

	impl := &ServerImpl{
		objectStore:  storage.NewMockIObjectStore(ctrl),
		catalog:      cat,
		users:        users,
		sessionStore: redisAdapter.NewStore(client, redisAdapter.WithStorePrefix("pixelframe:sess:")),
		uploadAuth:   SessionPolicy{},
		deleteAuth:   SessionPolicy{},
		htmlChecker:  bluemonday.UGCPolicy(),
		config:       ServerConfig{Auth: AuthConfig{Mode: AuthModeSession}},
	}
	router := gin.New()
	RegisterHandlers(router, impl)

	// 登入
	form := url.Values{"username": {"alice"}, "password": {"correct horse"}}
	loginReq := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	loginReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, loginReq)
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/gallery", w.Header().Get("Location"))

	// 用同一個 cookie 再發一個請求，登入狀態應該還在
	galleryReq := httptest.NewRequest(http.MethodGet, "/gallery", nil)
	for _, cookie := range w.Result().Cookies() {
		galleryReq.AddCookie(cookie)
	}
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, galleryReq)
	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Contains(t, w2.Body.String(), "user_7/cat.png")
}
