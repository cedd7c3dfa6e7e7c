package bot

import (
	msgport "github.com/humoyun-dev/anonim-chat/internal/infrastructure/messenger/port"
	anon "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/application/domain"
)

func userOf(s msgport.Sender) anon.User {
	return anon.User{
		ID:           s.ID,
		FirstName:    s.FirstName,
		LastName:     s.LastName,
		Username:     s.Username,
		TelegramLang: s.LanguageCode,
	}
}

func contentOf(m *msgport.InboundMessage) anon.Content {
	c := anon.Content{
		Kind:   anon.ParseKind(m.Kind),
		Origin: anon.Locator{ChatID: m.Ref.ChatID, MessageID: m.Ref.MessageID},
		Text:   m.Text,
		Media:  anon.Media{FileID: m.FileID, ThumbFileID: m.ThumbID},
		SentAt: m.SentAt,
	}
	if len(m.Entities) > 0 {
		c.Entities = make([]anon.Entity, len(m.Entities))
		for i, e := range m.Entities {
			c.Entities[i] = anon.Entity{
				Type:          e.Type,
				Offset:        e.Offset,
				Length:        e.Length,
				URL:           e.URL,
				Language:      e.Language,
				CustomEmojiID: e.CustomEmojiID,
			}
		}
	}
	return c
}
