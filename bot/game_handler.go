package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"minebet/game"
	"minebet/models"
)

func (b *Bot) handleStartGame(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	userID := callback.From.ID

	result, err := b.sessionService.StartGame(ctx, userID, b.config.MinStake)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrSessionActive):
			b.answerCallback(callback.ID, "⚠️ Active game!")
		case errors.Is(err, models.ErrInsufficientFunds):
			balance, _ := b.ledgerService.GetBalance(ctx, userID)
			markup := depositMenuKeyboard()
			b.editMessage(callback.Message.Chat.ID, callback.Message.MessageID,
				fmt.Sprintf("❌ Insufficient Balance\n💼 Current: %s\n🎯 Required: %s",
					models.FormatKobo(balance), models.FormatKobo(b.config.MinStake)),
				&markup)
		default:
			log.WithError(err).WithField("userID", userID).Error("failed to start game")
			b.answerCallback(callback.ID, "❌ Error starting game")
		}
		return
	}

	text := fmt.Sprintf(`🎮 MINES GAME

%s
💣 Mines: %d
💰 Bet: %s
🎯 Multiplier: 1.00x
💼 Balance: %s

Tap a number:`, result.Board, game.MineCount, models.FormatKobo(result.Stake), models.FormatKobo(result.NewBalance))

	markup := tileKeyboard(nil)
	b.editMessage(callback.Message.Chat.ID, callback.Message.MessageID, text, &markup)
}

func (b *Bot) handleTileClick(ctx context.Context, callback *tgbotapi.CallbackQuery, data string) {
	userID := callback.From.ID

	tile, err := strconv.Atoi(strings.TrimPrefix(data, "open_"))
	if err != nil {
		b.answerCallback(callback.ID, "❌ Error processing move")
		return
	}

	result, err := b.sessionService.Reveal(ctx, userID, tile)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNoSession):
			b.answerCallback(callback.ID, "❌ No game!")
		case errors.Is(err, models.ErrInvalidInput):
			b.answerCallback(callback.ID, "✅ Already opened!")
		case errors.Is(err, models.ErrContention):
			b.answerCallback(callback.ID, "⏳ Please wait...")
		default:
			log.WithError(err).WithField("userID", userID).Error("failed to reveal tile")
			b.answerCallback(callback.ID, "❌ Error processing move")
		}
		return
	}

	if result.GameOver {
		text := fmt.Sprintf(`💥 GAME OVER

%s
💸 The stake is lost.
💼 Balance: %s`, result.Board, models.FormatKobo(result.Balance))

		markup := mainMenuKeyboard()
		b.editMessage(callback.Message.Chat.ID, callback.Message.MessageID, text, &markup)
		return
	}

	text := fmt.Sprintf(`🎮 MINES GAME

%s
✅ Tiles: %d
🎯 Multiplier: %s
💰 Potential: %s`, result.Board, result.TilesOpened,
		models.FormatMultiplier(result.Multiplier), models.FormatKobo(result.Potential))

	session, ok := b.sessionService.ActiveSession(userID)
	var opened []int
	if ok {
		opened = session.Opened
	}
	markup := tileKeyboard(opened)
	b.editMessage(callback.Message.Chat.ID, callback.Message.MessageID, text, &markup)
	b.answerCallback(callback.ID, fmt.Sprintf("✅ Safe! %s", models.FormatMultiplier(result.Multiplier)))
}

func (b *Bot) handleCashout(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	userID := callback.From.ID

	result, err := b.sessionService.Cashout(ctx, userID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNoSession):
			b.answerCallback(callback.ID, "❌ No game!")
		case errors.Is(err, models.ErrContention):
			b.answerCallback(callback.ID, "⏳ Please wait...")
		default:
			log.WithError(err).WithField("userID", userID).Error("failed to cash out")
			b.answerCallback(callback.ID, "❌ Error cashing out")
		}
		return
	}

	text := fmt.Sprintf(`💰 CASHOUT SUCCESSFUL

%s
📈 Tiles: %d
🎯 Multiplier: %s
🎊 Won: %s
💼 Balance: %s`, result.Board, result.TilesOpened,
		models.FormatMultiplier(result.Multiplier), models.FormatKobo(result.Payout), models.FormatKobo(result.NewBalance))

	markup := mainMenuKeyboard()
	b.editMessage(callback.Message.Chat.ID, callback.Message.MessageID, text, &markup)
}
