package i18n

var dict = map[string]map[string]string{
	"en": {
		"welcome_main":             "Hi! Share your personal link and people can write to you anonymously.",
		"start_active_session":     "You are connected. Send your message and it will be delivered anonymously.",
		"start_owner_self":         "This is your own link. Share it so others can write to you.",
		"start_joined":             "Connected! Send one message and it will reach the owner anonymously.",
		"start_owner_notified":     "Someone opened your link and may write to you soon.",
		"start_session_save_error": "Could not connect right now. Please try again.",
		"start_wrong_param":        "This link is not valid.",
		"cmd_getlink":              "Your personal link:\n{link}",
		"help_text":                "Share your link with /getlink. Tap \"Reply\" under a message to answer. Use /lang to change the language and /cancel to leave reply mode.",
		"pay_support_default":      "For payment questions, contact the bot administrator.",
		"lang_choose":              "Choose a language:",
		"lang_set":                 "Language updated.",
		"lang_name_en":             "English",
		"lang_name_ru":             "Русский",
		"lang_name_uz":             "O'zbekcha",
		"cancel_reply_done":        "Reply mode cancelled.",
		"cancel_reply_none":        "You are not replying to anyone.",
		"must_join_or_reply":       "You are not connected to anyone. Open an invite link or tap \"Reply\" under a message.",
		"cannot_self_message":      "You cannot send a message to yourself.",
		"spam_blocked":             "Your message was blocked. Slow down or rephrase.",
		"message_sent_to_owner":    "Your message was delivered anonymously.",
		"reply_sent":               "Your reply was sent.",
		"delivery_failed":          "The message could not be delivered. Please try again later.",
		"reply_mode_on":            "Write your reply. It will be sent to the anonymous sender.",
		"reply_not_allowed":        "You can only reply to people who wrote to you.",
		"reply_fallback_prefix":    "Reply: {text}",
		"ask_again_ready":          "You can write another message now.",
		"ask_owner_notify":         "The person you answered wants to ask something else.",
		"btn_reply":                "↩️ Reply",
		"btn_reveal":               "👁 Reveal sender ({stars} ⭐)",
		"btn_ask_again":            "✍️ Ask again",
		"btn_cancel_reply":         "Cancel",
		"btn_menu_getlink":         "🔗 My link",
		"btn_menu_lang":            "🌐 Language",
		"btn_menu_help":            "❓ Help",
		"btn_menu_paysupport":      "💳 Payments",
		"btn_back_menu":            "⬅️ Menu",
		"invoice_title":            "Reveal sender",
		"invoice_desc":             "Find out who sent this message for {stars} Stars.",
		"invoice_price_label":      "Reveal",
		"reveal_opened_title":      "Sender revealed:",
		"reveal_opened_id":         "ID: {id}",
		"reveal_opened_name":       "Name: {name}",
		"reveal_opened_username":   "Username: {username}",
		"reveal_invalid_param":     "This reveal link is not valid.",
		"message_not_found":        "Message not found.",
		"payment_not_allowed":      "Only the recipient of this message can reveal its sender.",
		"payment_invalid":          "This payment is not valid.",
		"callback_unknown":         "This button is no longer active.",
		"error_generic":            "Something went wrong. Please try again.",
		"kind_text":                "text",
		"kind_photo":               "photo",
		"kind_video":               "video",
		"kind_document":            "document",
		"kind_sticker":             "sticker",
		"kind_animation":           "GIF",
		"kind_voice":               "voice message",
		"kind_audio":               "audio",
		"kind_video_note":          "video message",
		"kind_unknown":             "message",
	},
	"ru": {
		"welcome_main":             "Привет! Поделитесь своей ссылкой, и вам смогут писать анонимно.",
		"start_active_session":     "Вы подключены. Отправьте сообщение, и оно будет доставлено анонимно.",
		"start_owner_self":         "Это ваша собственная ссылка. Поделитесь ею, чтобы вам писали.",
		"start_joined":             "Подключено! Отправьте одно сообщение, и оно анонимно дойдёт до владельца.",
		"start_owner_notified":     "Кто-то открыл вашу ссылку и скоро может написать.",
		"start_session_save_error": "Не удалось подключиться. Попробуйте ещё раз.",
		"start_wrong_param":        "Ссылка недействительна.",
		"cmd_getlink":              "Ваша личная ссылка:\n{link}",
		"help_text":                "Поделитесь ссылкой через /getlink. Нажмите «Ответить» под сообщением, чтобы ответить. /lang меняет язык, /cancel выключает режим ответа.",
		"pay_support_default":      "По вопросам оплаты обратитесь к администратору бота.",
		"lang_choose":              "Выберите язык:",
		"lang_set":                 "Язык обновлён.",
		"cancel_reply_done":        "Режим ответа отменён.",
		"cancel_reply_none":        "Вы сейчас никому не отвечаете.",
		"must_join_or_reply":       "Вы ни с кем не связаны. Откройте ссылку-приглашение или нажмите «Ответить» под сообщением.",
		"cannot_self_message":      "Нельзя отправить сообщение самому себе.",
		"spam_blocked":             "Сообщение заблокировано. Пишите реже или измените текст.",
		"message_sent_to_owner":    "Ваше сообщение доставлено анонимно.",
		"reply_sent":               "Ответ отправлен.",
		"delivery_failed":          "Не удалось доставить сообщение. Попробуйте позже.",
		"reply_mode_on":            "Напишите ответ. Он будет отправлен анонимному отправителю.",
		"reply_not_allowed":        "Отвечать можно только тем, кто вам писал.",
		"reply_fallback_prefix":    "Ответ: {text}",
		"ask_again_ready":          "Теперь можно написать ещё одно сообщение.",
		"ask_owner_notify":         "Тот, кому вы ответили, хочет спросить ещё что-то.",
		"btn_reply":                "↩️ Ответить",
		"btn_reveal":               "👁 Узнать отправителя ({stars} ⭐)",
		"btn_ask_again":            "✍️ Спросить ещё",
		"btn_cancel_reply":         "Отмена",
		"btn_menu_getlink":         "🔗 Моя ссылка",
		"btn_menu_lang":            "🌐 Язык",
		"btn_menu_help":            "❓ Помощь",
		"btn_menu_paysupport":      "💳 Оплата",
		"btn_back_menu":            "⬅️ Меню",
		"invoice_title":            "Узнать отправителя",
		"invoice_desc":             "Узнайте, кто отправил это сообщение, за {stars} Stars.",
		"invoice_price_label":      "Раскрытие",
		"reveal_opened_title":      "Отправитель:",
		"reveal_opened_id":         "ID: {id}",
		"reveal_opened_name":       "Имя: {name}",
		"reveal_opened_username":   "Username: {username}",
		"reveal_invalid_param":     "Ссылка недействительна.",
		"message_not_found":        "Сообщение не найдено.",
		"payment_not_allowed":      "Узнать отправителя может только получатель сообщения.",
		"payment_invalid":          "Платёж недействителен.",
		"callback_unknown":         "Эта кнопка больше не активна.",
		"error_generic":            "Что-то пошло не так. Попробуйте ещё раз.",
		"kind_photo":               "фото",
		"kind_video":               "видео",
		"kind_document":            "документ",
		"kind_sticker":             "стикер",
		"kind_voice":               "голосовое сообщение",
		"kind_audio":               "аудио",
		"kind_video_note":          "видеосообщение",
		"kind_unknown":             "сообщение",
		"kind_text":                "текст",
	},
	"uz": {
		"welcome_main":             "Salom! Shaxsiy havolangizni ulashing va sizga anonim yozishlari mumkin.",
		"start_active_session":     "Siz ulangansiz. Xabaringizni yuboring, u anonim yetkaziladi.",
		"start_owner_self":         "Bu sizning havolangiz. Boshqalar yozishi uchun uni ulashing.",
		"start_joined":             "Ulandi! Bitta xabar yuboring, u egasiga anonim yetib boradi.",
		"start_owner_notified":     "Kimdir havolangizni ochdi va tez orada yozishi mumkin.",
		"start_session_save_error": "Hozir ulanib bo'lmadi. Qayta urinib ko'ring.",
		"start_wrong_param":        "Havola yaroqsiz.",
		"cmd_getlink":              "Shaxsiy havolangiz:\n{link}",
		"help_text":                "Havolani /getlink orqali ulashing. Javob berish uchun xabar ostidagi \"Javob berish\" tugmasini bosing. /lang tilni o'zgartiradi, /cancel javob rejimini o'chiradi.",
		"pay_support_default":      "To'lov bo'yicha savollar uchun bot administratoriga murojaat qiling.",
		"lang_choose":              "Tilni tanlang:",
		"lang_set":                 "Til yangilandi.",
		"cancel_reply_done":        "Javob rejimi bekor qilindi.",
		"cancel_reply_none":        "Siz hech kimga javob bermayapsiz.",
		"must_join_or_reply":       "Siz hech kim bilan bog'lanmagansiz. Taklif havolasini oching yoki xabar ostidagi \"Javob berish\" tugmasini bosing.",
		"cannot_self_message":      "O'zingizga xabar yubora olmaysiz.",
		"spam_blocked":             "Xabaringiz bloklandi. Sekinroq yozing yoki matnni o'zgartiring.",
		"message_sent_to_owner":    "Xabaringiz anonim yetkazildi.",
		"reply_sent":               "Javobingiz yuborildi.",
		"delivery_failed":          "Xabarni yetkazib bo'lmadi. Keyinroq urinib ko'ring.",
		"reply_mode_on":            "Javobingizni yozing. U anonim yuboruvchiga jo'natiladi.",
		"reply_not_allowed":        "Faqat sizga yozganlarga javob bera olasiz.",
		"reply_fallback_prefix":    "Javob: {text}",
		"ask_again_ready":          "Endi yana bitta xabar yozishingiz mumkin.",
		"ask_owner_notify":         "Siz javob bergan odam yana nimadir so'ramoqchi.",
		"btn_reply":                "↩️ Javob berish",
		"btn_reveal":               "👁 Yuboruvchini bilish ({stars} ⭐)",
		"btn_ask_again":            "✍️ Yana so'rash",
		"btn_cancel_reply":         "Bekor qilish",
		"btn_menu_getlink":         "🔗 Havolam",
		"btn_menu_lang":            "🌐 Til",
		"btn_menu_help":            "❓ Yordam",
		"btn_menu_paysupport":      "💳 To'lov",
		"btn_back_menu":            "⬅️ Menyu",
		"invoice_title":            "Yuboruvchini bilish",
		"invoice_desc":             "Ushbu xabarni kim yuborganini {stars} Stars evaziga bilib oling.",
		"invoice_price_label":      "Ochish",
		"reveal_opened_title":      "Yuboruvchi:",
		"reveal_opened_id":         "ID: {id}",
		"reveal_opened_name":       "Ism: {name}",
		"reveal_opened_username":   "Username: {username}",
		"reveal_invalid_param":     "Havola yaroqsiz.",
		"message_not_found":        "Xabar topilmadi.",
		"payment_not_allowed":      "Yuboruvchini faqat xabar qabul qiluvchisi bilishi mumkin.",
		"payment_invalid":          "To'lov yaroqsiz.",
		"callback_unknown":         "Bu tugma endi faol emas.",
		"error_generic":            "Xatolik yuz berdi. Qayta urinib ko'ring.",
		"kind_photo":               "rasm",
		"kind_video":               "video",
		"kind_document":            "hujjat",
		"kind_sticker":             "stiker",
		"kind_voice":               "ovozli xabar",
		"kind_audio":               "audio",
		"kind_video_note":          "video xabar",
		"kind_unknown":             "xabar",
		"kind_text":                "matn",
	},
}
