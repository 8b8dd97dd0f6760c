package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"minebet/models"
)

func (b *Bot) handleStart(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID

	balance, err := b.ledgerService.GetBalance(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("userID", userID).Error("failed to get balance")
		b.send(tgbotapi.NewMessage(message.Chat.ID, "❌ Something went wrong, please try again."))
		return
	}

	text := fmt.Sprintf(`🎮 Welcome to Mines!

💼 Balance: %s
💣 3 mines hide on a 5x5 grid.
🎯 Open safe tiles to grow your multiplier, cash out before you hit one.

Choose an option:`, models.FormatKobo(balance))

	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ReplyMarkup = mainMenuKeyboard()
	b.send(msg)
}

func (b *Bot) showMainMenu(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	userID := callback.From.ID

	balance, err := b.ledgerService.GetBalance(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("userID", userID).Error("failed to get balance")
		b.answerCallback(callback.ID, "❌ Something went wrong")
		return
	}

	text := fmt.Sprintf("🏠 Main Menu\n\n💼 Balance: %s", models.FormatKobo(balance))
	markup := mainMenuKeyboard()
	b.editMessage(callback.Message.Chat.ID, callback.Message.MessageID, text, &markup)
}

func (b *Bot) showStats(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	userID := callback.From.ID

	balance, err := b.ledgerService.GetBalance(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("userID", userID).Error("failed to get balance")
		b.answerCallback(callback.ID, "❌ Something went wrong")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`📊 Your Statistics

👤 User ID: %d
💼 Balance: %s
🎯 Min stake: %s`, userID, models.FormatKobo(balance), models.FormatKobo(b.config.MinStake)))

	if entries, err := b.ledgerService.History(ctx, userID, 5); err == nil && len(entries) > 0 {
		sb.WriteString("\n\n📜 Recent activity:\n")
		for _, entry := range entries {
			sb.WriteString(fmt.Sprintf("%s %s → %s\n", entry.EntryType, models.FormatKobo(entry.ChangeAmount), models.FormatKobo(entry.BalanceAfter)))
		}
	}
	text := sb.String()

	markup := mainMenuKeyboard()
	b.editMessage(callback.Message.Chat.ID, callback.Message.MessageID, text, &markup)
}

func (b *Bot) showHelp(callback *tgbotapi.CallbackQuery) {
	text := fmt.Sprintf(`ℹ️ How to Play

1. Start a game, the stake of %s is taken from your balance.
2. Tap tiles to open them. Each safe tile raises the multiplier.
3. Hit a mine and the stake is gone.
4. Cash out any time to bank stake x multiplier.

💰 Deposits are credited after receipt verification.
💳 Withdrawals (min %s) are paid out after review.`,
		models.FormatKobo(b.config.MinStake), models.FormatKobo(b.config.MinWithdrawal))

	markup := mainMenuKeyboard()
	b.editMessage(callback.Message.Chat.ID, callback.Message.MessageID, text, &markup)
}
