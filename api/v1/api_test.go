package v1_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"ailablog/config"
	"ailablog/internal/router"
	"ailablog/internal/storage"
	"ailablog/model"
	myvalidator "ailablog/internal/validator"
)

var registerValidatorsOnce sync.Once

// setupServer 构建一个无 Redis、无 Kafka 的完整 API：会话与限流降级关闭，
// 其余行为与生产一致。
func setupServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registerValidatorsOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			if err := v.RegisterValidation("category", myvalidator.IsCategory); err != nil {
				t.Fatalf("register category validator: %v", err)
			}
			if err := v.RegisterValidation("role", myvalidator.IsRole); err != nil {
				t.Fatalf("register role validator: %v", err)
			}
		}
	})

	config.GlobalConfig = &config.Config{
		JWT: config.JWTConfig{
			Secret:        "test-secret",
			AccessExpire:  900,
			RefreshExpire: 3600,
			ResetExpire:   300,
		},
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("access sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	if err := db.AutoMigrate(
		&model.User{}, &model.Post{}, &model.Tag{},
		&model.Comment{}, &model.PostLike{}, &model.CommentLike{},
	); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}

	return router.Setup(db, nil, router.Options{
		Store: storage.NewImageStore(t.TempDir()),
	})
}

func doJSON(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doForm(r *gin.Engine, method, path, token string, fields map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	_ = mw.Close()
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return m
}

// registerAndLogin 注册并登录，返回 access token
func registerAndLogin(t *testing.T, r *gin.Engine, username, email, role string) string {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/v1/users/register", "", gin.H{
		"username": username,
		"email":    email,
		"password": "Passw0rd!",
		"role":     role,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("register %s: status %d body %s", username, w.Code, w.Body.String())
	}
	w = doJSON(r, http.MethodPost, "/api/v1/users/login", "", gin.H{
		"email":    email,
		"password": "Passw0rd!",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", username, w.Code, w.Body.String())
	}
	token, _ := decode(t, w)["access_token"].(string)
	if token == "" {
		t.Fatalf("no access token in login response: %s", w.Body.String())
	}
	return token
}

func createPost(t *testing.T, r *gin.Engine, token, title, category, tags string) string {
	t.Helper()
	w := doForm(r, http.MethodPost, "/api/v1/posts", token, map[string]string{
		"title":    title,
		"content":  "Content of " + title,
		"category": category,
		"tags":     tags,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create post %q: status %d body %s", title, w.Code, w.Body.String())
	}
	slug, _ := decode(t, w)["slug"].(string)
	if slug == "" {
		t.Fatalf("no slug in create response: %s", w.Body.String())
	}
	return slug
}

func TestRegisterValidationAndConflicts(t *testing.T) {
	r := setupServer(t)

	// 缺字段
	w := doJSON(r, http.MethodPost, "/api/v1/users/register", "", gin.H{"username": "Eva21"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for incomplete payload, got %d", w.Code)
	}

	// 非法角色被 binding 拦截
	w = doJSON(r, http.MethodPost, "/api/v1/users/register", "", gin.H{
		"username": "Eva21", "email": "eva21@mail.com", "password": "Passw0rd!", "role": "superuser",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad role, got %d", w.Code)
	}

	registerAndLogin(t, r, "Eva21", "eva21@mail.com", "")

	// 用户名冲突
	w = doJSON(r, http.MethodPost, "/api/v1/users/register", "", gin.H{
		"username": "Eva21", "email": "other@mail.com", "password": "Passw0rd!",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for duplicate username, got %d", w.Code)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	r := setupServer(t)
	registerAndLogin(t, r, "Eva21", "eva21@mail.com", "")

	w := doJSON(r, http.MethodPost, "/api/v1/users/login", "", gin.H{
		"email": "eva21@mail.com", "password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPostLifecycleOverHTTP(t *testing.T) {
	r := setupServer(t)
	token := registerAndLogin(t, r, "Eva21", "eva21@mail.com", "")

	// 未登录不可发文
	w := doForm(r, http.MethodPost, "/api/v1/posts", "", map[string]string{
		"title": "T", "content": "C", "category": "Skincare",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}

	// 非法栏目被表单校验拦截
	w = doForm(r, http.MethodPost, "/api/v1/posts", token, map[string]string{
		"title": "T", "content": "C", "category": "Nonsense",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad category, got %d: %s", w.Code, w.Body.String())
	}

	slug := createPost(t, r, token, "Title 1", "Skincare", "Test1/Test2")
	if slug != "title-1" {
		t.Errorf("expected slug title-1, got %q", slug)
	}

	// 同标题重复发文 → slug 冲突
	w = doForm(r, http.MethodPost, "/api/v1/posts", token, map[string]string{
		"title": "Title 1", "content": "C", "category": "Skincare",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for duplicate title, got %d: %s", w.Code, w.Body.String())
	}

	// 匿名读详情，计数 +1
	w = doJSON(r, http.MethodGet, "/api/v1/posts/"+slug, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get post: status %d body %s", w.Code, w.Body.String())
	}
	detail := decode(t, w)
	post := detail["post"].(map[string]any)
	if post["views"].(float64) != 1 {
		t.Errorf("expected views 1, got %v", post["views"])
	}
	if detail["liked"].(bool) {
		t.Error("anonymous reader must never appear as having liked")
	}

	// 删除后 404
	w = doJSON(r, http.MethodDelete, "/api/v1/posts/"+slug, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete post: status %d body %s", w.Code, w.Body.String())
	}
	w = doJSON(r, http.MethodGet, "/api/v1/posts/"+slug, "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", w.Code)
	}
}

func TestListPaginationDefaults(t *testing.T) {
	r := setupServer(t)
	token := registerAndLogin(t, r, "Eva21", "eva21@mail.com", "")

	for i := 1; i <= 5; i++ {
		createPost(t, r, token, fmt.Sprintf("Title %d", i), "Skincare", "")
	}

	w := doJSON(r, http.MethodGet, "/api/v1/posts", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: status %d", w.Code)
	}
	page := decode(t, w)
	if page["total"].(float64) != 5 {
		t.Errorf("expected total 5, got %v", page["total"])
	}
	if page["per_page"].(float64) != 3 {
		t.Errorf("expected default per_page 3, got %v", page["per_page"])
	}
	if n := len(page["posts"].([]any)); n != 3 {
		t.Errorf("expected 3 posts on default page, got %d", n)
	}

	w = doJSON(r, http.MethodGet, "/api/v1/posts?page=2&per_page=3", "", nil)
	page = decode(t, w)
	if n := len(page["posts"].([]any)); n != 2 {
		t.Errorf("expected 2 posts on page 2, got %d", n)
	}
}

func TestLikeToggleEndpoint(t *testing.T) {
	r := setupServer(t)
	token := registerAndLogin(t, r, "Eva21", "eva21@mail.com", "")
	slug := createPost(t, r, token, "Title 1", "Skincare", "")

	w := doJSON(r, http.MethodPost, "/api/v1/posts/"+slug+"/like", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("toggle: status %d body %s", w.Code, w.Body.String())
	}
	res := decode(t, w)
	if res["likes"].(float64) != 1 || res["liked"].(bool) != true {
		t.Errorf("expected {likes:1, liked:true}, got %v", res)
	}

	// 登录态读详情，liked 为 true
	w = doJSON(r, http.MethodGet, "/api/v1/posts/"+slug, token, nil)
	detail := decode(t, w)
	if !detail["liked"].(bool) {
		t.Error("expected liked=true for the liking reader")
	}

	// 再点一次取消
	w = doJSON(r, http.MethodPost, "/api/v1/posts/"+slug+"/like", token, nil)
	res = decode(t, w)
	if res["likes"].(float64) != 0 || res["liked"].(bool) != false {
		t.Errorf("expected {likes:0, liked:false}, got %v", res)
	}
}

func TestCommentEndpoints(t *testing.T) {
	r := setupServer(t)
	evaToken := registerAndLogin(t, r, "Eva21", "eva21@mail.com", "")
	ivanToken := registerAndLogin(t, r, "Ivan", "ivan@mail.com", "")
	slug := createPost(t, r, evaToken, "Title 1", "Skincare", "")

	w := doJSON(r, http.MethodPost, "/api/v1/posts/"+slug+"/comments", ivanToken, gin.H{"body": "hello"})
	if w.Code != http.StatusCreated {
		t.Fatalf("add comment: status %d body %s", w.Code, w.Body.String())
	}
	comment := decode(t, w)
	if comment["username"] != "Ivan" {
		t.Errorf("expected stored username Ivan, got %v", comment["username"])
	}
	id := fmt.Sprintf("%.0f", comment["id"].(float64))

	// 他人不可编辑
	w = doJSON(r, http.MethodPut, "/api/v1/comments/"+id, evaToken, gin.H{"body": "hijack"})
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for foreign edit, got %d", w.Code)
	}

	// 评论点赞翻转
	w = doJSON(r, http.MethodPost, "/api/v1/comments/"+id+"/like", evaToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("comment like: status %d body %s", w.Code, w.Body.String())
	}
	res := decode(t, w)
	if res["likes"].(float64) != 1 {
		t.Errorf("expected 1 like, got %v", res["likes"])
	}

	// 作者删除自己的评论
	w = doJSON(r, http.MethodDelete, "/api/v1/comments/"+id, ivanToken, nil)
	if w.Code != http.StatusOK {
		t.Errorf("author delete: status %d body %s", w.Code, w.Body.String())
	}
}

func TestAdminModeration(t *testing.T) {
	r := setupServer(t)
	adminToken := registerAndLogin(t, r, "Olena", "fake24@gmail.com", "admin")
	evaToken := registerAndLogin(t, r, "Eva21", "eva21@mail.com", "")
	slug := createPost(t, r, evaToken, "Title 1", "Skincare", "Test1/Test2")

	// 普通用户不可删除账号
	w := doJSON(r, http.MethodDelete, "/api/v1/users/Olena", evaToken, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}

	// 管理员删除他人文章
	w = doJSON(r, http.MethodDelete, "/api/v1/posts/"+slug, adminToken, nil)
	if w.Code != http.StatusOK {
		t.Errorf("admin post delete: status %d body %s", w.Code, w.Body.String())
	}

	// 管理员账号不可删除
	w = doJSON(r, http.MethodDelete, "/api/v1/users/Olena", adminToken, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for admin self-delete, got %d", w.Code)
	}

	// 管理员删除普通账号
	w = doJSON(r, http.MethodDelete, "/api/v1/users/Eva21", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Errorf("admin user delete: status %d body %s", w.Code, w.Body.String())
	}
}

func TestSearchEndpoint(t *testing.T) {
	r := setupServer(t)
	token := registerAndLogin(t, r, "Eva21", "eva21@mail.com", "")
	createPost(t, r, token, "Vitamin C serum", "Skincare", "")
	createPost(t, r, token, "Clay mask", "Skincare", "")

	w := doJSON(r, http.MethodGet, "/api/v1/posts/search?q=vitamin", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search: status %d body %s", w.Code, w.Body.String())
	}
	res := decode(t, w)
	if n := len(res["posts"].([]any)); n != 1 {
		t.Errorf("expected 1 match, got %d", n)
	}

	// 缺关键词
	w = doJSON(r, http.MethodGet, "/api/v1/posts/search", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without q, got %d", w.Code)
	}
}

func TestPasswordResetEndpoints(t *testing.T) {
	r := setupServer(t)
	registerAndLogin(t, r, "Eva21", "eva21@mail.com", "")

	// 无论邮箱是否注册，响应一致
	for _, email := range []string{"eva21@mail.com", "nobody@mail.com"} {
		w := doJSON(r, http.MethodPost, "/api/v1/users/reset/request", "", gin.H{"email": email})
		if w.Code != http.StatusOK {
			t.Errorf("reset request for %s: status %d", email, w.Code)
		}
	}

	// 伪造 token 一律拒绝
	w := doJSON(r, http.MethodPost, "/api/v1/users/reset/confirm", "", gin.H{
		"token": "forged", "password": "NewPassw0rd!",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for forged token, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUserPostsEndpoint(t *testing.T) {
	r := setupServer(t)
	token := registerAndLogin(t, r, "Eva21", "eva21@mail.com", "")
	createPost(t, r, token, "Title 1", "Skincare", "")
	createPost(t, r, token, "Title 2", "Hand-made", "")

	w := doJSON(r, http.MethodGet, "/api/v1/users/Eva21/posts", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("user posts: status %d body %s", w.Code, w.Body.String())
	}
	res := decode(t, w)
	posts := res["posts"].(map[string]any)
	if posts["total"].(float64) != 2 {
		t.Errorf("expected 2 posts, got %v", posts["total"])
	}

	w = doJSON(r, http.MethodGet, "/api/v1/users/Nobody/posts", "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown user, got %d", w.Code)
	}
}
