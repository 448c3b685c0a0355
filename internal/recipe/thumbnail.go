// Package recipe はレシピ投稿のドメインロジックを提供する。
package recipe

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// SSRFValidator はSSRF検証のインターフェース。
// security.SSRFGuardServiceを抽象化してテスタビリティを向上させる。
type SSRFValidator interface {
	ValidateURL(rawURL string) error
	NewSafeClient(timeout time.Duration, maxResponseSize int64) *http.Client
}

// ThumbnailFetcherService はサムネイル取得のインターフェース。
type ThumbnailFetcherService interface {
	// FetchThumbnailURL は参照先ページのog:imageからサムネイルURLを解決する。
	// 取得失敗時は空文字列を返す（エラーは返さない）。
	// レシピ投稿はサムネイルなしでも成立するため、失敗は投稿を妨げない。
	FetchThumbnailURL(ctx context.Context, pageURL string) string
}

// ThumbnailFetcher はサムネイル取得機能の実装。
// 投稿者が参考URLを添えた場合に、そのページのog:imageを
// サムネイルとして取り出す。
type ThumbnailFetcher struct {
	ssrfGuard SSRFValidator
	timeout   time.Duration
	maxSize   int64
}

// NewThumbnailFetcher はThumbnailFetcherの新しいインスタンスを生成する。
func NewThumbnailFetcher(ssrfGuard SSRFValidator, timeout time.Duration, maxSize int64) *ThumbnailFetcher {
	return &ThumbnailFetcher{
		ssrfGuard: ssrfGuard,
		timeout:   timeout,
		maxSize:   maxSize,
	}
}

// FetchThumbnailURL は参照先ページのog:imageからサムネイルURLを解決する。
// 取得失敗時は空文字列を返す（エラーは返さない）。
func (f *ThumbnailFetcher) FetchThumbnailURL(ctx context.Context, pageURL string) string {
	if pageURL == "" {
		return ""
	}

	// SSRF検証
	if f.ssrfGuard != nil {
		if err := f.ssrfGuard.ValidateURL(pageURL); err != nil {
			slog.Warn("サムネイル取得: SSRFブロック", "url", pageURL, "error", err)
			return ""
		}
	}

	client := f.getHTTPClient()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		slog.Warn("サムネイル取得: リクエスト作成失敗", "url", pageURL, "error", err)
		return ""
	}
	req.Header.Set("User-Agent", "Menuger/1.0 Recipe Sharing")

	resp, err := client.Do(req)
	if err != nil {
		slog.Warn("サムネイル取得: HTTPリクエスト失敗", "url", pageURL, "error", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Warn("サムネイル取得: HTTPステータス異常", "url", pageURL, "status", resp.StatusCode)
		return ""
	}

	// レスポンスボディを読み込み（サイズ上限あり）
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		slog.Warn("サムネイル取得: レスポンス読み取り失敗", "url", pageURL, "error", err)
		return ""
	}
	if int64(len(body)) > f.maxSize {
		slog.Warn("サムネイル取得: サイズ超過", "url", pageURL, "size", len(body))
		return ""
	}

	imageURL := parseOGImageFromHTML(body, pageURL)
	if imageURL == "" {
		return ""
	}

	// 取り出したURL自体も安全であること
	if f.ssrfGuard != nil {
		if err := f.ssrfGuard.ValidateURL(imageURL); err != nil {
			slog.Warn("サムネイル取得: og:image URLがSSRFブロック対象", "url", imageURL, "error", err)
			return ""
		}
	}

	return imageURL
}

// getHTTPClient はHTTPクライアントを取得する。
func (f *ThumbnailFetcher) getHTTPClient() *http.Client {
	if f.ssrfGuard != nil {
		return f.ssrfGuard.NewSafeClient(f.timeout, f.maxSize)
	}
	return &http.Client{Timeout: f.timeout}
}

// parseOGImageFromHTML はHTMLのheadタグからog:imageメタタグを解析する。
// 相対URLはbaseURLを基準に絶対URLに解決される。
func parseOGImageFromHTML(htmlBody []byte, baseURL string) string {
	baseU, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}

	tokenizer := html.NewTokenizer(bytes.NewReader(htmlBody))
	inHead := false

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return ""

		case html.StartTagToken, html.SelfClosingTagToken:
			tn, hasAttr := tokenizer.TagName()
			tagName := string(tn)

			if tagName == "head" {
				inHead = true
				continue
			}

			if tagName == "body" {
				// bodyに入ったらheadの解析を終了
				return ""
			}

			if !inHead || tagName != "meta" || !hasAttr {
				continue
			}

			// meta要素の属性を解析
			var property, content string
			for {
				key, val, more := tokenizer.TagAttr()
				k := strings.ToLower(string(key))
				v := string(val)
				switch k {
				case "property", "name":
					property = strings.ToLower(v)
				case "content":
					content = v
				}
				if !more {
					break
				}
			}

			if property != "og:image" || content == "" {
				continue
			}

			return resolveURL(baseU, content)

		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			if string(tn) == "head" {
				return ""
			}
		}
	}
}

// resolveURL は相対URLをベースURLを基準に絶対URLに解決する。
func resolveURL(base *url.URL, rawRef string) string {
	ref, err := url.Parse(rawRef)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// compile-time interface check
var _ ThumbnailFetcherService = (*ThumbnailFetcher)(nil)
