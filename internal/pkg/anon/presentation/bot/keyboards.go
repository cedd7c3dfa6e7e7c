package bot

import (
	msgport "github.com/humoyun-dev/anonim-chat/internal/infrastructure/messenger/port"
	anon "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/domain"
	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/i18n"
)

func button(lang, key string, a anon.Action) msgport.Button {
	return msgport.Button{Text: i18n.T(lang, key), CallbackData: a.Encode()}
}

func menuMarkup(lang string) msgport.Markup {
	return msgport.Markup{
		{button(lang, "btn_menu_getlink", anon.MenuAction(cmdGetLink)), button(lang, "btn_menu_lang", anon.MenuAction(cmdLang))},
		{button(lang, "btn_menu_help", anon.MenuAction(cmdHelp)), button(lang, "btn_menu_paysupport", anon.MenuAction(cmdPaySupport))},
	}
}

func backMarkup(lang string) msgport.Markup {
	return msgport.Markup{{button(lang, "btn_back_menu", anon.MenuAction(cmdMenu))}}
}

func cancelReplyMarkup(lang string) msgport.Markup {
	return msgport.Markup{{button(lang, "btn_cancel_reply", anon.CancelReplyAction())}}
}

// langMarkup labels each language in its own tongue.
func langMarkup() msgport.Markup {
	row := make([]msgport.Button, 0, len(i18n.Supported))
	for _, code := range i18n.Supported {
		row = append(row, button(code, "lang_name_"+code, anon.LangAction(code)))
	}
	return msgport.Markup{row}
}
