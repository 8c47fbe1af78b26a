// Command-line stress test that hammers the public read path (view counter)
// and the like toggle with concurrent clients, producing CSV + HTML reports.
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"sync"
	"time"

	"ailablog/config"

	"github.com/go-redis/redis/v8"
)

const baseURL = "http://127.0.0.1:8080/api/v1"

var client = &http.Client{Timeout: 10 * time.Second}

// 简单的 tokenPair
type tokenPair struct {
	Access  string
	Refresh string
}

// readResult 汇总单次详情页请求的行为，方便折叠到报告内。
type readResult struct {
	Reader     string
	Status     int
	Views      int
	ErrMessage string
	Timestamp  time.Time
}

// ======================= 基本 HTTP helper =======================

// doPostJSON is a thin helper that serializes a JSON body and sends a POST request.
func doPostJSON(url string, body any, headers map[string]string) (int, []byte, error) {
	var buf []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		buf = b
	}
	req, _ := http.NewRequest("POST", url, bytes.NewBuffer(buf))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, data, nil
}

// ======================= 注册 / 登录 / 发文 Helpers =======================

// registerRaw issues a raw register request and returns status/data for assertions.
func registerRaw(username, email, password string) (int, []byte, error) {
	body := map[string]string{"username": username, "email": email, "password": password}
	return doPostJSON(baseURL+"/users/register", body, nil)
}

// registerUser ensures the test account exists (idempotent).
func registerUser(username, email, password string) error {
	status, _, err := registerRaw(username, email, password)
	if err != nil {
		return err
	}
	if status != 200 && status != 400 { // 400 表示已存在（可接受）
		return fmt.Errorf("register status %d", status)
	}
	return nil
}

// loginUser logs in by email and returns the issued tokens.
func loginUser(email, password, device string) (tokenPair, error) {
	body := map[string]string{"email": email, "password": password}
	headers := map[string]string{"X-Device": device}
	status, data, err := doPostJSON(baseURL+"/users/login", body, headers)
	if err != nil {
		return tokenPair{}, err
	}
	if status != 200 {
		return tokenPair{}, fmt.Errorf("login status %d body=%s", status, string(data))
	}
	var res map[string]string
	if err := json.Unmarshal(data, &res); err != nil {
		return tokenPair{}, err
	}
	return tokenPair{Access: res["access_token"], Refresh: res["refresh_token"]}, nil
}

// publishPost 以 multipart 表单发布一篇文章，返回 slug
func publishPost(token, title string) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("title", title)
	_ = mw.WriteField("content", "load test content")
	_ = mw.WriteField("category", "Skincare")
	_ = mw.Close()

	req, _ := http.NewRequest("POST", baseURL+"/posts", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("publish status %d body=%s", resp.StatusCode, string(data))
	}
	var post struct {
		Slug string `json:"slug"`
	}
	if err := json.Unmarshal(data, &post); err != nil {
		return "", err
	}
	return post.Slug, nil
}

// viewPost 读一次详情页，返回状态码与服务端累计的浏览数
func viewPost(slug string) (int, int, error) {
	resp, err := client.Get(baseURL + "/posts/" + slug)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, 0, fmt.Errorf("view status %d", resp.StatusCode)
	}
	var detail struct {
		Post struct {
			Views int `json:"views"`
		} `json:"post"`
	}
	if err := json.Unmarshal(data, &detail); err != nil {
		return resp.StatusCode, 0, err
	}
	return resp.StatusCode, detail.Post.Views, nil
}

// toggleLike 翻转点赞，返回服务端回报的计数
func toggleLike(token, slug string) (int64, error) {
	status, data, err := doPostJSON(baseURL+"/posts/"+slug+"/like", nil,
		map[string]string{"Authorization": "Bearer " + token})
	if err != nil {
		return 0, err
	}
	if status != 200 {
		return 0, fmt.Errorf("toggle status %d body=%s", status, string(data))
	}
	var res struct {
		Likes int64 `json:"likes"`
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return 0, err
	}
	return res.Likes, nil
}

// ======================= 基础功能连通性测试 =======================

// endpointSmokeTests exercises register/login/search endpoints with positive and negative cases.
func endpointSmokeTests() error {
	suffix := time.Now().UnixNano() % 1000000
	username := fmt.Sprintf("smoke%d", suffix)
	email := fmt.Sprintf("smoke%d@example.com", suffix)
	password := "SmokePwd123!"
	device := "smoke-device"

	// Fresh registration should succeed.
	if status, _, err := registerRaw(username, email, password); err != nil || status != http.StatusOK {
		return fmt.Errorf("register (new) failed: status=%d err=%v username=%s", status, err, username)
	}

	// Duplicate registration should be rejected (400).
	if status, _, err := registerRaw(username, email, password); err != nil || status != http.StatusBadRequest {
		return fmt.Errorf("register (duplicate) expected 400, username=%s got %d err=%v", username, status, err)
	}

	// Login success path.
	if _, err := loginUser(email, password, device); err != nil {
		return fmt.Errorf("login (valid) failed: %w", err)
	}

	// Login with wrong password should be unauthorized.
	body := map[string]string{"email": email, "password": "wrong-password"}
	if status, _, err := doPostJSON(baseURL+"/users/login", body, nil); err != nil || status != http.StatusUnauthorized {
		return fmt.Errorf("login (invalid creds) expected 401, got %d err=%v", status, err)
	}

	// Search without keyword should be a bad request.
	resp, err := client.Get(baseURL + "/posts/search")
	if err != nil {
		return fmt.Errorf("search probe failed: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		return fmt.Errorf("search (no keyword) expected 400, got %d", resp.StatusCode)
	}

	log.Println("endpoint smoke tests passed: register/login/search basic scenarios verified")
	return nil
}

func sanityFlowTest(username, email, password string) error {
	device := "sanity-device"
	if err := registerUser(username, email, password); err != nil {
		return fmt.Errorf("sanity register failed: %w", err)
	}

	tokens, err := loginUser(email, password, device)
	if err != nil {
		return fmt.Errorf("sanity login failed: %w", err)
	}

	slug, err := publishPost(tokens.Access, fmt.Sprintf("Sanity post %d", time.Now().UnixNano()%1000000))
	if err != nil {
		return fmt.Errorf("sanity publish failed: %w", err)
	}

	if _, _, err := viewPost(slug); err != nil {
		return fmt.Errorf("sanity view failed: %w", err)
	}

	// 点赞两次应回到 0
	if _, err := toggleLike(tokens.Access, slug); err != nil {
		return fmt.Errorf("sanity like failed: %w", err)
	}
	likes, err := toggleLike(tokens.Access, slug)
	if err != nil {
		return fmt.Errorf("sanity unlike failed: %w", err)
	}
	if likes != 0 {
		return fmt.Errorf("sanity toggle did not return to zero: likes=%d", likes)
	}
	return nil
}

// ======================= 并发测试与报告生成 =======================

// concurrentViewTest orchestrates the whole run (publish -> concurrent reads -> report).
// 每次 GET 都应使浏览数 +1，最终计数必须等于总请求数。
func concurrentViewTest(username, email, password string, readers, viewsPerReader int, outCSV, outHTML string) error {
	// 初始化 config + Redis（限流计数用 blog:rl:*，跑压测前清掉）
	config.InitConfig("../../")
	config.InitRedis()
	rdb := config.RedisClient
	_ = rdb.FlushDB(rdb.Context())

	if err := registerUser(username, email, password); err != nil {
		return fmt.Errorf("register error: %v", err)
	}
	tokens, err := loginUser(email, password, "load-device")
	if err != nil {
		return fmt.Errorf("login error: %v", err)
	}
	slug, err := publishPost(tokens.Access, fmt.Sprintf("Load post %d", time.Now().UnixNano()%1000000))
	if err != nil {
		return fmt.Errorf("publish error: %v", err)
	}

	// 并发读者，每人读 viewsPerReader 次
	resCh := make(chan readResult, readers*viewsPerReader)
	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			name := fmt.Sprintf("reader-%d", id)
			for j := 0; j < viewsPerReader; j++ {
				status, views, err := viewPost(slug)
				r := readResult{Reader: name, Status: status, Views: views, Timestamp: time.Now()}
				if err != nil {
					r.ErrMessage = err.Error()
				}
				resCh <- r
			}
		}(i)
	}
	wg.Wait()
	close(resCh)

	// 写 CSV 报告
	csvFile, err := os.Create(outCSV)
	if err != nil {
		return err
	}
	defer csvFile.Close()
	csvWriter := csv.NewWriter(csvFile)
	defer csvWriter.Flush()
	_ = csvWriter.Write([]string{"Reader", "Status", "Views", "ErrMessage", "Timestamp"})

	var allResults []readResult
	for r := range resCh {
		_ = csvWriter.Write([]string{r.Reader, fmt.Sprintf("%d", r.Status), fmt.Sprintf("%d", r.Views), r.ErrMessage, r.Timestamp.Format(time.RFC3339)})
		allResults = append(allResults, r)
	}
	csvWriter.Flush()

	if err := writeHTMLReport(outHTML, allResults); err != nil {
		log.Printf("write HTML report error: %v", err)
	}

	// 校验计数器没有丢更新
	expected := readers * viewsPerReader
	_, final, err := viewPost(slug)
	if err != nil {
		return fmt.Errorf("final view failed: %v", err)
	}
	if final != expected+1 { // 校验请求本身也 +1
		log.Printf("WARNING: view counter drift: expected %d, got %d", expected+1, final)
	} else {
		log.Printf("view counter exact: %d reads accounted for", final)
	}

	// 打印 Redis keys（可选）
	keys, _ := rdb.Keys(rdb.Context(), "blog:*").Result()
	log.Printf("Redis keys after test: %v\n", keys)

	return nil
}

// writeHTMLReport renders a basic table so failures are easy to eyeball.
func writeHTMLReport(path string, results []readResult) error {
	const tpl = `
<!doctype html>
<html>
<head><meta charset="utf-8"><title>View Counter Test Report</title>
<style>
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ddd; padding: 8px; text-align:left }
th { background: #f4f4f4; }
.success { color: green; }
.fail { color: red; }
</style>
</head>
<body>
<h2>View Counter Test Report ({{ .GeneratedAt }})</h2>
<table>
<thead><tr><th>Reader</th><th>Status</th><th>Views</th><th>Error</th><th>Timestamp</th></tr></thead>
<tbody>
{{ range .Rows }}
<tr>
<td>{{ .Reader }}</td>
<td>{{ .Status }}</td>
<td>{{ .Views }}</td>
<td>{{ .ErrMessage }}</td>
<td>{{ .Timestamp }}</td>
</tr>
{{ end }}
</tbody>
</table>
</body>
</html>`

	data := struct {
		GeneratedAt string
		Rows        []readResult
	}{
		GeneratedAt: time.Now().Format(time.RFC3339),
		Rows:        results,
	}

	t, err := template.New("report").Parse(tpl)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return t.Execute(f, data)
}

// ======================= main =======================

func main() {
	rdb := initRedis()
	suffix := time.Now().UnixNano() % 1000000
	username := fmt.Sprintf("load%d", suffix)
	email := fmt.Sprintf("load%d@example.com", suffix)
	password := "LoadPwd123!"
	readers := 5        // 并发读者数量
	viewsPerReader := 4 // 每个读者的刷新次数
	outCSV := "view_report.csv"
	outHTML := "view_report.html"

	if err := endpointSmokeTests(); err != nil {
		log.Fatalf("endpoint smoke tests failed: %v", err)
	}
	if err := sanityFlowTest(username, email, password); err != nil {
		log.Fatalf("basic flow verification failed: %v", err)
	}

	start := time.Now()
	if err := concurrentViewTest(username, email, password, readers, viewsPerReader, outCSV, outHTML); err != nil {
		log.Fatalf("concurrent test failed: %v", err)
	}
	elapsed := time.Since(start)
	log.Printf("concurrent test finished in %s, CSV=%s HTML=%s\n", elapsed.String(), outCSV, outHTML)
	keys, _ := rdb.Keys(rdb.Context(), "blog:*").Result()
	log.Printf("Redis keys after test: %v\n", keys)
	fmt.Println("All load tests completed successfully!")
}

// 初始化 Redis 并清理测试数据
func initRedis() *redis.Client {
	config.InitConfig("../../")
	config.InitRedis()
	rdb := config.RedisClient
	rdb.FlushDB(rdb.Context())
	fmt.Println("Redis cleared for testing")
	return rdb
}
