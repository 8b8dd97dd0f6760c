package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"minebet/models"
	"minebet/validator"
)

func (b *Bot) showDepositMenu(callback *tgbotapi.CallbackQuery) {
	text := `💰 Deposit

Pick an amount, then send your payment receipt as a photo.

Select amount:`
	markup := depositMenuKeyboard()
	b.editMessage(callback.Message.Chat.ID, callback.Message.MessageID, text, &markup)
}

func (b *Bot) showWithdrawMenu(callback *tgbotapi.CallbackQuery) {
	text := fmt.Sprintf(`💳 Withdraw

💵 Minimum withdrawal: %s
The amount is held from your balance until the payout is reviewed.

Select amount:`, models.FormatKobo(b.config.MinWithdrawal))
	markup := withdrawMenuKeyboard()
	b.editMessage(callback.Message.Chat.ID, callback.Message.MessageID, text, &markup)
}

// handleDepositAmount stores the chosen amount and asks for a receipt.
// The amount on the wire is whole naira.
func (b *Bot) handleDepositAmount(callback *tgbotapi.CallbackQuery, data string) {
	userID := callback.From.ID

	naira, err := strconv.ParseInt(strings.TrimPrefix(data, "deposit_"), 10, 64)
	if err != nil {
		b.answerCallback(callback.ID, "❌ Invalid amount")
		return
	}
	amount := naira * 100
	if err := validator.Amount(amount); err != nil {
		b.answerCallback(callback.ID, "❌ Invalid amount")
		return
	}

	b.setPendingDeposit(userID, amount)

	text := fmt.Sprintf(`💳 Deposit Request

💰 Amount: %s
📸 Please send your payment receipt as a photo.

⚠️ Your deposit will be credited after verification.`, models.FormatKobo(amount))
	b.editMessage(callback.Message.Chat.ID, callback.Message.MessageID, text, nil)
}

// handleDepositReceipt files the deposit request once the receipt photo
// arrives. The largest photo size carries the sharpest file.
func (b *Bot) handleDepositReceipt(ctx context.Context, message *tgbotapi.Message, amount int64) {
	userID := message.From.ID

	fileID := message.Photo[len(message.Photo)-1].FileID
	receiptRef := "photo:" + fileID

	requestID, err := b.requestService.CreateDepositRequest(ctx, userID, amount, &receiptRef)
	if err != nil {
		log.WithError(err).WithField("userID", userID).Error("failed to create deposit request")
		b.send(tgbotapi.NewMessage(message.Chat.ID, "❌ Error creating deposit request"))
		return
	}

	userMsg := fmt.Sprintf(`✅ Deposit Request Submitted

💰 Amount: %s
📋 Request ID: #%d

⏳ You will be notified once it is verified.`, models.FormatKobo(amount), requestID)
	msg := tgbotapi.NewMessage(message.Chat.ID, userMsg)
	msg.ReplyMarkup = mainMenuKeyboard()
	b.send(msg)

	// Forward the receipt to the admin with the decision buttons inline.
	adminPhoto := tgbotapi.NewPhoto(b.config.AdminID, tgbotapi.FileID(fileID))
	adminPhoto.Caption = fmt.Sprintf("💳 Deposit Request #%d\n\n👤 User: %d\n💰 Amount: %s", requestID, userID, models.FormatKobo(amount))
	adminPhoto.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Approve", fmt.Sprintf("approve_deposit_%d", requestID)),
			tgbotapi.NewInlineKeyboardButtonData("Reject", fmt.Sprintf("reject_deposit_%d", requestID)),
		),
	)
	b.send(adminPhoto)
}

// handleWithdrawAmount escrows the amount and files the withdrawal.
func (b *Bot) handleWithdrawAmount(ctx context.Context, callback *tgbotapi.CallbackQuery, data string) {
	userID := callback.From.ID

	naira, err := strconv.ParseInt(strings.TrimPrefix(data, "withdraw_"), 10, 64)
	if err != nil {
		b.answerCallback(callback.ID, "❌ Invalid amount")
		return
	}
	amount := naira * 100
	if err := validator.Amount(amount); err != nil {
		b.answerCallback(callback.ID, "❌ Invalid amount")
		return
	}

	if amount < b.config.MinWithdrawal {
		b.answerCallback(callback.ID, fmt.Sprintf("❌ Min withdrawal is %s", models.FormatKobo(b.config.MinWithdrawal)))
		return
	}

	requestID, err := b.requestService.CreateWithdrawalRequest(ctx, userID, amount)
	if err != nil {
		if errors.Is(err, models.ErrInsufficientFunds) {
			b.answerCallback(callback.ID, "❌ Insufficient balance")
			return
		}
		log.WithError(err).WithField("userID", userID).Error("failed to create withdrawal request")
		b.answerCallback(callback.ID, "❌ Error creating withdrawal request")
		return
	}

	text := fmt.Sprintf(`✅ Withdrawal Request Submitted

💰 Amount: %s
📋 Request ID: #%d

⏳ The amount is held until the payout is reviewed.`, models.FormatKobo(amount), requestID)
	markup := mainMenuKeyboard()
	b.editMessage(callback.Message.Chat.ID, callback.Message.MessageID, text, &markup)

	adminMsg := tgbotapi.NewMessage(b.config.AdminID,
		fmt.Sprintf("💸 Withdrawal Request #%d\n\n👤 User: %d\n💰 Amount: %s", requestID, userID, models.FormatKobo(amount)))
	adminMsg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Approve", fmt.Sprintf("approve_withdrawal_%d", requestID)),
			tgbotapi.NewInlineKeyboardButtonData("Reject", fmt.Sprintf("reject_withdrawal_%d", requestID)),
		),
	)
	b.send(adminMsg)
}
