package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ParsePosts 校验模型输出并按固定平台顺序排序。
// The payload may be a bare array or an object with a "posts" array.
// Anything that does not yield exactly one complete post per platform is rejected.
func ParsePosts(raw string) ([]PostContent, error) {
	body := stripFence(strings.TrimSpace(raw))
	if body == "" {
		return nil, errors.New("model returned empty response")
	}

	var items []rawPost
	if strings.HasPrefix(body, "[") {
		if err := json.Unmarshal([]byte(body), &items); err != nil {
			return nil, fmt.Errorf("decode posts: %w", err)
		}
	} else {
		var wrapped struct {
			Posts []rawPost `json:"posts"`
		}
		if err := json.Unmarshal([]byte(body), &wrapped); err != nil {
			return nil, fmt.Errorf("decode posts: %w", err)
		}
		items = wrapped.Posts
	}

	byPlatform := make(map[Platform]PostContent, len(Platforms))
	for i, it := range items {
		p, err := ParsePlatform(it.Platform)
		if err != nil {
			return nil, fmt.Errorf("post %d: %w", i, err)
		}
		if _, dup := byPlatform[p]; dup {
			return nil, fmt.Errorf("post %d: duplicate platform %s", i, p)
		}
		text := strings.TrimSpace(it.Text)
		if text == "" {
			return nil, fmt.Errorf("post %d (%s): empty text", i, p)
		}
		imgPrompt := strings.TrimSpace(it.ImagePrompt)
		if imgPrompt == "" {
			return nil, fmt.Errorf("post %d (%s): empty image_prompt", i, p)
		}
		byPlatform[p] = PostContent{Platform: p, Text: text, ImagePrompt: imgPrompt}
	}

	posts := make([]PostContent, 0, len(Platforms))
	for _, p := range Platforms {
		post, ok := byPlatform[p]
		if !ok {
			return nil, fmt.Errorf("missing post for %s", p)
		}
		posts = append(posts, post)
	}
	return posts, nil
}

type rawPost struct {
	Platform    string `json:"platform"`
	Text        string `json:"text"`
	ImagePrompt string `json:"image_prompt"`
}

// 部分模型会把 JSON 包在 ```json 代码块里。
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
