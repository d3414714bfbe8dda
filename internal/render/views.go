// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/olegiv/blockcms/internal/model"
)

// htmlSanitizer strips scripts and event handlers from rendered Markdown.
var htmlSanitizer = bluemonday.UGCPolicy()

var youTubeID = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// PageView is a published page prepared for the page template.
type PageView struct {
	Title     string
	Slug      string
	Audience  string
	UpdatedAt time.Time
	Blocks    []BlockView
}

// BlockView flattens a block payload for the template. Only the fields
// relevant to Type are set.
type BlockView struct {
	Type     model.BlockType
	Heading  string
	Body     template.HTML
	Kind     string
	ImageURL string
	Caption  string
	EmbedURL string
	VideoURL string
	Quiz     *model.QuizPayload
}

// NewBlockView prepares p for display.
func NewBlockView(p model.Payload) BlockView {
	switch v := p.(type) {
	case model.TextPayload:
		return BlockView{Type: model.BlockText, Heading: v.Heading, Body: Markdown(v.Body)}
	case model.ImagePayload:
		return BlockView{Type: model.BlockImage, Heading: v.Heading, ImageURL: mediaURL(v.ImageURL), Caption: v.Caption}
	case model.VideoPayload:
		bv := BlockView{Type: model.BlockVideo, Heading: v.Heading, Caption: v.Caption}
		if v.Mode == model.VideoModeMP4 {
			bv.VideoURL = mediaURL(v.MP4URL)
		} else {
			bv.EmbedURL = YouTubeEmbedURL(v.YouTubeURL)
		}
		return bv
	case model.CalloutPayload:
		return BlockView{Type: model.BlockCallout, Kind: v.Kind, Body: Markdown(v.Body)}
	case model.QuizPayload:
		q := v
		return BlockView{Type: model.BlockQuiz, Quiz: &q}
	default:
		return BlockView{Type: model.BlockText}
	}
}

// Markdown converts src to sanitized HTML.
func Markdown(src string) template.HTML {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		slog.Debug("markdown conversion failed", "error", err)
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(htmlSanitizer.SanitizeBytes(buf.Bytes()))
}

// YouTubeEmbedURL returns the privacy-enhanced embed URL for a YouTube
// watch, short, share or embed link, or "" when raw is not one.
func YouTubeEmbedURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")

	var id string
	switch host {
	case "youtu.be":
		id = strings.Trim(u.Path, "/")
	case "youtube.com", "youtube-nocookie.com":
		p := strings.Trim(u.Path, "/")
		switch {
		case p == "watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(p, "embed/"):
			id = strings.TrimPrefix(p, "embed/")
		case strings.HasPrefix(p, "shorts/"):
			id = strings.TrimPrefix(p, "shorts/")
		}
	}

	if !youTubeID.MatchString(id) {
		return ""
	}
	return "https://www.youtube-nocookie.com/embed/" + id
}

// mediaURL accepts site-relative paths and http(s) URLs.
func mediaURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ""
	}
	return u.String()
}
