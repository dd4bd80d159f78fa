// Package i18n holds the localized notice texts shown to users.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Key identifies a message in the catalog.
type Key string

const (
	MsgCleared             Key = "cleared"
	MsgSetBothFirst        Key = "set_both_first"
	MsgBearingFailed       Key = "bearing_failed"
	MsgBearingResult       Key = "bearing_result"
	MsgPointSet            Key = "point_set"
	MsgPointCleared        Key = "point_cleared"
	MsgPositioningFailed   Key = "positioning_failed"
	MsgAltitudeUnavailable Key = "altitude_unavailable"
	MsgNoPickTarget        Key = "no_pick_target"
	MsgPickArmed           Key = "pick_armed"
	MsgPreferencesSaved    Key = "preferences_saved"
	MsgSaveFailed          Key = "save_failed"
)

var supported = []language.Tag{language.English, language.SimplifiedChinese}

var matcher = language.NewMatcher(supported)

var messages = map[Key][2]string{
	//                       English, Simplified Chinese
	MsgCleared:             {"Cleared", "已清空"},
	MsgSetBothFirst:        {"Set A and B first", "请先设置 A 和 B"},
	MsgBearingFailed:       {"Calculation failed: bearing undefined", "计算失败：方位角异常"},
	MsgBearingResult:       {"Bearing: %.2f°", "偏移：%.2f°"},
	MsgPointSet:            {"Point %s set", "已设置 %s 点"},
	MsgPointCleared:        {"Point %s cleared", "已清除 %s 点"},
	MsgPositioningFailed:   {"Failed to get location", "获取定位失败"},
	MsgAltitudeUnavailable: {"Point %s set without altitude", "已设置 %s 点（无海拔）"},
	MsgNoPickTarget:        {"Choose A or B before tapping the map", "请先选择要设置的 A 或 B"},
	MsgPickArmed:           {"Tap the map to place %s", "点击地图设置 %s 点"},
	MsgPreferencesSaved:    {"Preferences saved", "设置已保存"},
	MsgSaveFailed:          {"Saved for this session only", "仅在本次会话中保存"},
}

// Translator renders catalog messages for a language.
type Translator struct {
	cat catalog.Catalog
}

// New builds the translator with the embedded catalog.
func New() *Translator {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, texts := range messages {
		for i, tag := range supported {
			if err := b.SetString(tag, string(key), texts[i]); err != nil {
				panic(fmt.Sprintf("i18n: register %s/%s: %v", tag, key, err))
			}
		}
	}
	return &Translator{cat: b}
}

// Sprintf formats the message for key in the best match for lang.
func (t *Translator) Sprintf(lang string, key Key, args ...any) string {
	p := message.NewPrinter(Match(lang), message.Catalog(t.cat))
	return p.Sprintf(string(key), args...)
}

// Match picks the closest supported language; unknown input falls back to English.
func Match(lang string) language.Tag {
	tag, err := language.Parse(lang)
	if err != nil {
		return language.English
	}
	_, idx, _ := matcher.Match(tag)
	return supported[idx]
}

// Code returns the short language code stored in preferences ("en", "zh").
func Code(lang string) string {
	base, _ := Match(lang).Base()
	return base.String()
}
