package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.BrazilianPortuguese

	message.SetString(lang, "notification.generic.title", "Notificação")
	message.SetString(lang, "notification.session_login.title", "Sessão iniciada")
	message.SetString(lang, "notification.session_login.body", "Bem-vindo de volta. Você está conectado.")
	message.SetString(lang, "notification.session_login_failed.title", "Falha ao entrar")
	message.SetString(lang, "notification.session_login_failed.body", "Não foi possível iniciar sua sessão. Tente novamente.")
	message.SetString(lang, "notification.session_expired.title", "Sessão expirada")
	message.SetString(lang, "notification.session_expired.body", "Sua sessão expirou. Entre novamente para continuar.")
	message.SetString(lang, "notification.session_logout.title", "Sessão encerrada")
	message.SetString(lang, "notification.session_logout.body", "Você saiu da sua conta.")
}
