package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// menuKeyboard builds the reply keyboard for one menu level: one button per
// child label in tree order, then a navigation row. Levels with entries get
// back + main-menu; an empty level (content-only leaf rendered as a menu)
// still gets the main-menu button so the user is never stranded.
func menuKeyboard(labels []string, backLabel, mainMenuLabel string) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(labels)+1)
	for _, label := range labels {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(label)))
	}

	if len(labels) > 0 {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(backLabel),
			tgbotapi.NewKeyboardButton(mainMenuLabel),
		))
	} else {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(mainMenuLabel),
		))
	}

	return tgbotapi.NewReplyKeyboard(rows...)
}
