// Package render derives localized, channel-agnostic copy for notification
// records. The bridge and other producers emit stable topics; adapters
// render them here instead of hardcoding viewer-facing strings.
package render

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/louisbranch/repetigone/internal/notification/bridge"
	"github.com/louisbranch/repetigone/internal/notification/domain"
)

const (
	defaultGenericTitle = "Notification"
)

// Output is localized copy for one notification record.
type Output struct {
	Title string
	Body  string
}

// Localizer is the minimal message-printer contract required by the
// renderer.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

// NewLocalizer returns a printer for the best supported match of the
// requested language tags. English is the fallback.
func NewLocalizer(requested ...language.Tag) Localizer {
	supported := []language.Tag{language.English, language.BrazilianPortuguese}
	matcher := language.NewMatcher(supported)
	tag, _, _ := matcher.Match(requested...)
	return message.NewPrinter(tag)
}

// Render returns localized copy for one record. Unknown topics fall back
// to a generic title over the record's raw message.
func Render(loc Localizer, record domain.Record) Output {
	switch normalizeToken(record.Topic) {
	case bridge.TopicLogin:
		return topicOutput(loc, record, "notification.session_login.title", "notification.session_login.body")
	case bridge.TopicLoginFailed:
		return topicOutput(loc, record, "notification.session_login_failed.title", "notification.session_login_failed.body")
	case bridge.TopicExpired:
		return topicOutput(loc, record, "notification.session_expired.title", "notification.session_expired.body")
	case bridge.TopicLogout:
		return topicOutput(loc, record, "notification.session_logout.title", "notification.session_logout.body")
	default:
		return Output{
			Title: localizeWithFallback(loc, "notification.generic.title", defaultGenericTitle),
			Body:  record.Message,
		}
	}
}

// topicOutput localizes a known topic, falling back to the record's raw
// message when the body key has no catalog entry.
func topicOutput(loc Localizer, record domain.Record, titleKey, bodyKey string) Output {
	return Output{
		Title: localizeWithFallback(loc, titleKey, defaultGenericTitle),
		Body:  localizeWithFallback(loc, bodyKey, record.Message),
	}
}

func localize(loc Localizer, key message.Reference, args ...any) string {
	if loc == nil {
		if asString, ok := key.(string); ok {
			return asString
		}
		return ""
	}
	return loc.Sprintf(key, args...)
}

func localizeWithFallback(loc Localizer, key string, fallback string) string {
	value := strings.TrimSpace(localize(loc, key))
	if value == "" || value == key {
		return fallback
	}
	return value
}

func normalizeToken(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
