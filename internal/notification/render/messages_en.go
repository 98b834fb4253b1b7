package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	message.SetString(lang, "notification.generic.title", defaultGenericTitle)
	message.SetString(lang, "notification.session_login.title", "Signed in")
	message.SetString(lang, "notification.session_login.body", "Welcome back. You are signed in.")
	message.SetString(lang, "notification.session_login_failed.title", "Sign-in failed")
	message.SetString(lang, "notification.session_login_failed.body", "We could not sign you in. Try again.")
	message.SetString(lang, "notification.session_expired.title", "Session expired")
	message.SetString(lang, "notification.session_expired.body", "Your session expired. Sign in again to continue.")
	message.SetString(lang, "notification.session_logout.title", "Signed out")
	message.SetString(lang, "notification.session_logout.body", "You are signed out.")
}
