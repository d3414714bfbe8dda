// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// BlockType discriminates the payload carried by a block.
type BlockType string

// Block types.
const (
	BlockText    BlockType = "text"
	BlockImage   BlockType = "image"
	BlockVideo   BlockType = "video"
	BlockCallout BlockType = "callout"
	BlockQuiz    BlockType = "quiz"
)

// BlockTypes lists every block type in display order for editors.
var BlockTypes = []BlockType{BlockText, BlockImage, BlockVideo, BlockCallout, BlockQuiz}

// Valid reports whether t is a known block type.
func (t BlockType) Valid() bool {
	switch t {
	case BlockText, BlockImage, BlockVideo, BlockCallout, BlockQuiz:
		return true
	}
	return false
}

// Video modes.
const (
	VideoModeYouTube = "youtube"
	VideoModeMP4     = "mp4"
)

// DefaultCalloutKind is used when a callout carries no kind label.
const DefaultCalloutKind = "Key idea"

// QuizJSONField is the submitted field holding a quiz document.
const QuizJSONField = "quiz_json"

// ErrInvalidQuiz is returned by ValidateEdit for a malformed quiz document.
var ErrInvalidQuiz = errors.New("quiz data must be a JSON object with a \"questions\" list")

// Payload is the type-specific content of a block.
// The concrete type is always selected by the block's BlockType.
type Payload interface {
	BlockType() BlockType
}

// TextPayload is a heading followed by body text (Markdown).
type TextPayload struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// ImagePayload is a captioned image.
type ImagePayload struct {
	Heading  string `json:"heading"`
	ImageURL string `json:"imageUrl"`
	Caption  string `json:"caption"`
}

// VideoPayload is a YouTube embed or an mp4 file, selected by Mode.
type VideoPayload struct {
	Heading    string `json:"heading"`
	Mode       string `json:"mode"`
	YouTubeURL string `json:"youtubeUrl"`
	MP4URL     string `json:"mp4Url"`
	Caption    string `json:"caption"`
}

// CalloutPayload is a highlighted note with a free-form kind label.
type CalloutPayload struct {
	Kind string `json:"kind"`
	Body string `json:"body"`
}

// QuizQuestion is one multiple-choice question. Answer indexes Options.
type QuizQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   int      `json:"answer"`
}

// QuizPayload is an ordered list of questions.
type QuizPayload struct {
	Title     string         `json:"title"`
	Questions []QuizQuestion `json:"questions"`
}

func (TextPayload) BlockType() BlockType    { return BlockText }
func (ImagePayload) BlockType() BlockType   { return BlockImage }
func (VideoPayload) BlockType() BlockType   { return BlockVideo }
func (CalloutPayload) BlockType() BlockType { return BlockCallout }
func (QuizPayload) BlockType() BlockType    { return BlockQuiz }

// emptyPayload returns the zero payload for t with read defaults applied.
func emptyPayload(t BlockType) Payload {
	switch t {
	case BlockImage:
		return ImagePayload{}
	case BlockVideo:
		return VideoPayload{Mode: VideoModeYouTube}
	case BlockCallout:
		return CalloutPayload{Kind: DefaultCalloutKind}
	case BlockQuiz:
		return QuizPayload{Questions: []QuizQuestion{}}
	default:
		return TextPayload{}
	}
}

// DecodePayload parses a stored payload for a block of type t.
// Decoding never fails: corrupt or mismatched data yields the empty payload
// for t, and missing fields take their defaults.
func DecodePayload(t BlockType, raw string) Payload {
	if raw == "" {
		return emptyPayload(t)
	}
	data := []byte(raw)

	switch t {
	case BlockImage:
		var p ImagePayload
		if json.Unmarshal(data, &p) != nil {
			return emptyPayload(t)
		}
		return p
	case BlockVideo:
		var p VideoPayload
		if json.Unmarshal(data, &p) != nil {
			return emptyPayload(t)
		}
		return normalizeVideo(p)
	case BlockCallout:
		var p CalloutPayload
		if json.Unmarshal(data, &p) != nil {
			return emptyPayload(t)
		}
		return normalizeCallout(p)
	case BlockQuiz:
		var p QuizPayload
		if json.Unmarshal(data, &p) != nil {
			return emptyPayload(t)
		}
		return normalizeQuiz(p)
	default:
		var p TextPayload
		if json.Unmarshal(data, &p) != nil {
			return emptyPayload(BlockText)
		}
		return p
	}
}

// EncodePayload serializes a payload for storage.
func EncodePayload(p Payload) (string, error) {
	if p == nil {
		return "", errors.New("encoding nil payload")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encoding %s payload: %w", p.BlockType(), err)
	}
	return string(data), nil
}

// DefaultPayload returns the seed content for a new block of type t.
func DefaultPayload(t BlockType) Payload {
	switch t {
	case BlockImage:
		return ImagePayload{Heading: "", ImageURL: "", Caption: ""}
	case BlockVideo:
		return VideoPayload{Mode: VideoModeYouTube}
	case BlockCallout:
		return CalloutPayload{Kind: DefaultCalloutKind, Body: "Write the key idea here."}
	case BlockQuiz:
		return QuizPayload{
			Title: "Quick check",
			Questions: []QuizQuestion{{
				Question: "Sample question?",
				Options:  []string{"Option A", "Option B", "Option C", "Option D"},
				Answer:   0,
			}},
		}
	default:
		return TextPayload{Heading: "New section", Body: ""}
	}
}

// Fields holds values submitted from an edit form, keyed by payload field name.
type Fields map[string]string

// ValidateEdit builds the payload for a block of type t from submitted fields.
// Only quiz blocks can fail: the QuizJSONField value must be a JSON object
// with a "questions" list. Missing fields of other types default to empty
// strings, "youtube" for the video mode and DefaultCalloutKind for an empty
// callout kind.
func ValidateEdit(t BlockType, f Fields) (Payload, error) {
	switch t {
	case BlockText:
		return TextPayload{Heading: f["heading"], Body: f["body"]}, nil
	case BlockImage:
		return ImagePayload{Heading: f["heading"], ImageURL: f["imageUrl"], Caption: f["caption"]}, nil
	case BlockVideo:
		return normalizeVideo(VideoPayload{
			Heading:    f["heading"],
			Mode:       f["mode"],
			YouTubeURL: f["youtubeUrl"],
			MP4URL:     f["mp4Url"],
			Caption:    f["caption"],
		}), nil
	case BlockCallout:
		return normalizeCallout(CalloutPayload{Kind: f["kind"], Body: f["body"]}), nil
	case BlockQuiz:
		return parseQuiz(f[QuizJSONField])
	default:
		return nil, fmt.Errorf("unknown block type %q", t)
	}
}

// parseQuiz validates the shape of a submitted quiz document.
func parseQuiz(raw string) (Payload, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &doc); err != nil || doc == nil {
		return nil, ErrInvalidQuiz
	}

	questionsRaw, ok := doc["questions"]
	if !ok {
		return nil, ErrInvalidQuiz
	}
	var questions []QuizQuestion
	if err := json.Unmarshal(questionsRaw, &questions); err != nil || questions == nil {
		return nil, ErrInvalidQuiz
	}

	var title string
	if titleRaw, ok := doc["title"]; ok {
		// A non-string title is ignored rather than rejected.
		_ = json.Unmarshal(titleRaw, &title)
	}

	return normalizeQuiz(QuizPayload{Title: title, Questions: questions}), nil
}

func normalizeVideo(p VideoPayload) VideoPayload {
	if p.Mode != VideoModeMP4 {
		p.Mode = VideoModeYouTube
	}
	return p
}

func normalizeCallout(p CalloutPayload) CalloutPayload {
	if p.Kind == "" {
		p.Kind = DefaultCalloutKind
	}
	return p
}

func normalizeQuiz(p QuizPayload) QuizPayload {
	if p.Questions == nil {
		p.Questions = []QuizQuestion{}
	}
	for i := range p.Questions {
		if p.Questions[i].Options == nil {
			p.Questions[i].Options = []string{}
		}
	}
	return p
}
