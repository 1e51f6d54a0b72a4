package generator

import (
	"fmt"
	"strings"
)

// Tone 是一次生成请求统一应用到所有平台的语气。
type Tone string

const (
	ToneProfessional Tone = "Professional"
	ToneWitty        Tone = "Witty"
	ToneUrgent       Tone = "Urgent"
)

// Tones lists the selectable tones in display order.
var Tones = []Tone{ToneProfessional, ToneWitty, ToneUrgent}

// ParseTone matches a tone name case-insensitively.
func ParseTone(s string) (Tone, error) {
	s = strings.TrimSpace(s)
	for _, t := range Tones {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tone %q", s)
}

// Platform 目标社交平台。
type Platform string

const (
	LinkedIn  Platform = "LinkedIn"
	Twitter   Platform = "Twitter"
	Instagram Platform = "Instagram"
)

// Platforms is the fixed processing and display order.
var Platforms = []Platform{LinkedIn, Twitter, Instagram}

// AspectRatio of a generated image, e.g. "16:9".
type AspectRatio string

const (
	Ratio1x1  AspectRatio = "1:1"
	Ratio4x3  AspectRatio = "4:3"
	Ratio16x9 AspectRatio = "16:9"
)

// PlatformProfile is the static per-platform configuration.
type PlatformProfile struct {
	Platform    Platform    `json:"platform"`
	AspectRatio AspectRatio `json:"aspect_ratio"`
	Icon        string      `json:"icon"`
	Color       string      `json:"color"`
	// Guidance 写进提示词，描述该平台文案的形态。
	Guidance string `json:"-"`
}

// TwitterMaxChars is the character budget of the short-form post.
const TwitterMaxChars = 280

var profiles = map[Platform]PlatformProfile{
	LinkedIn: {
		Platform:    LinkedIn,
		AspectRatio: Ratio4x3,
		Icon:        "in",
		Color:       "#0a66c2",
		Guidance:    "a longer, professional post of several short paragraphs that invites discussion and ends with a question to the reader",
	},
	Twitter: {
		Platform:    Twitter,
		AspectRatio: Ratio16x9,
		Icon:        "X",
		Color:       "#0f1419",
		Guidance:    fmt.Sprintf("a short, punchy post with a clear call to action, strictly under %d characters including spaces", TwitterMaxChars),
	},
	Instagram: {
		Platform:    Instagram,
		AspectRatio: Ratio1x1,
		Icon:        "IG",
		Color:       "#e1306c",
		Guidance:    "a caption that opens with a strong hook, uses a relaxed visual voice and ends with 3 to 5 relevant hashtags",
	},
}

// Profile returns the fixed table entry for p.
func Profile(p Platform) (PlatformProfile, bool) {
	prof, ok := profiles[p]
	return prof, ok
}

// Profiles returns the table in platform order.
func Profiles() []PlatformProfile {
	out := make([]PlatformProfile, 0, len(Platforms))
	for _, p := range Platforms {
		out = append(out, profiles[p])
	}
	return out
}

// AspectRatioFor returns the image aspect ratio used for p.
func AspectRatioFor(p Platform) AspectRatio {
	return profiles[p].AspectRatio
}

// ParsePlatform matches a platform name case-insensitively.
func ParsePlatform(s string) (Platform, error) {
	s = strings.TrimSpace(s)
	for _, p := range Platforms {
		if strings.EqualFold(s, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

// PostContent is one platform-tailored post produced by the text model.
type PostContent struct {
	Platform    Platform `json:"platform"`
	Text        string   `json:"text"`
	ImagePrompt string   `json:"image_prompt"`
}

// GenerationResult is the unit rendered to the user. ImageURL stays empty
// until the image for the post has been generated.
type GenerationResult struct {
	PostContent
	ImageURL string `json:"image_url"`
}

// AspectRatio of the image attached to this result.
func (r GenerationResult) AspectRatio() AspectRatio {
	return AspectRatioFor(r.Platform)
}
