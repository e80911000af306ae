package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Comment issue 评论
type Comment struct {
	User struct {
		Login string `json:"login"`
	} `json:"user"`
	CreatedAt time.Time `json:"created_at"`
	Body      string    `json:"body"`
}

// Client GitHub issue 客户端
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	// 统计评论数时忽略的机器人账号
	ignoreLogins map[string]bool
}

// NewClient 创建客户端。token 可为空（走匿名限额）。
func NewClient(token string, ignoreLogins []string) *Client {
	ignored := make(map[string]bool, len(ignoreLogins))
	for _, l := range ignoreLogins {
		ignored[strings.ToLower(l)] = true
	}
	return &Client{
		baseURL:      "https://api.github.com",
		token:        token,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		ignoreLogins: ignored,
	}
}

// WithBaseURL 覆盖 API 地址（测试用）
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = strings.TrimRight(base, "/")
	return c
}

// GetIssueComments 拉取 issue 评论。仓库或 issue 不存在（Not Found）
// 按空结果处理，不算错误。
func (c *Client) GetIssueComments(ctx context.Context, owner, repo string, issueNum int) ([]Comment, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/issues/%d/comments", c.baseURL, owner, repo, issueNum)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch issue comments: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github api returned status %d", resp.StatusCode)
	}

	var comments []Comment
	if err := json.NewDecoder(resp.Body).Decode(&comments); err != nil {
		return nil, fmt.Errorf("failed to decode comments: %w", err)
	}
	return comments, nil
}

// CommentStats 评论数（剔除忽略账号）与最后一条评论时间
func (c *Client) CommentStats(comments []Comment) (int, *time.Time) {
	count := 0
	var last *time.Time
	for i := range comments {
		if !c.ignoreLogins[strings.ToLower(comments[i].User.Login)] {
			count++
		}
		t := comments[i].CreatedAt
		if last == nil || t.After(*last) {
			last = &t
		}
	}
	if count == 0 {
		return 0, nil
	}
	return count, last
}

// ParseIssueURL 从 issue 地址解析 owner/repo/编号
func ParseIssueURL(issueURL string) (owner, repo string, num int, err error) {
	if !strings.HasPrefix(strings.ToLower(issueURL), "https://github.com/") {
		return "", "", 0, fmt.Errorf("not a github issue url: %s", issueURL)
	}
	parsed, err := url.Parse(issueURL)
	if err != nil {
		return "", "", 0, err
	}
	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(parts) < 4 || parts[2] != "issues" {
		return "", "", 0, fmt.Errorf("invalid github issue path: %s", parsed.Path)
	}
	num, err = strconv.Atoi(parts[3])
	if err != nil {
		return "", "", 0, fmt.Errorf("invalid issue number in %s", issueURL)
	}
	return parts[0], parts[1], num, nil
}
