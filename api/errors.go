package api

import "errors"

// 工作流程的錯誤分類
// 這些錯誤都會在請求邊界被攔下，轉成 flash 訊息加上重導向，不會往外傳播
var (
	ErrInvalidCredentials     = errors.New("invalid username or password")
	ErrUsernameTaken          = errors.New("username already exists")
	ErrInvalidModeratorSecret = errors.New("invalid moderator password")
	ErrLoginRequired          = errors.New("login required")
	ErrNoFile                 = errors.New("no file supplied")
	ErrUnsupportedType        = errors.New("file type not allowed")
	ErrDuplicateImage         = errors.New("duplicate image title")
	ErrRateLimited            = errors.New("upload limit reached")
	ErrStorage                = errors.New("object storage operation failed")
	ErrCatalog                = errors.New("image catalog operation failed")
)

// flashMessage 將工作流程錯誤轉成要顯示給使用者的訊息
// 不認識的錯誤一律顯示一般性的訊息，細節只進日誌
func flashMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid username or password"
	case errors.Is(err, ErrUsernameTaken):
		return "Username already exists."
	case errors.Is(err, ErrInvalidModeratorSecret):
		return "Invalid moderator password"
	case errors.Is(err, ErrLoginRequired):
		return "Please log in first"
	case errors.Is(err, ErrNoFile):
		return "No file part"
	case errors.Is(err, ErrUnsupportedType):
		return "No selected file or file type not allowed"
	case errors.Is(err, ErrDuplicateImage):
		return "Duplicate files not allowed"
	case errors.Is(err, ErrRateLimited):
		return "Upload limit reached, try again later"
	case errors.Is(err, ErrStorage):
		return "Error accessing image storage"
	case errors.Is(err, ErrCatalog):
		return "Error accessing image records"
	default:
		return "Something went wrong"
	}
}
