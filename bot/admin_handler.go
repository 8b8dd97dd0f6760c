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

func (b *Bot) handleAdminPanel(message *tgbotapi.Message) {
	if !b.isAdmin(message.From.ID) {
		b.send(tgbotapi.NewMessage(message.Chat.ID, "❌ Access denied"))
		return
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, "🔧 Admin Panel")
	msg.ReplyMarkup = adminPanelKeyboard()
	b.send(msg)
}

func (b *Bot) handleAdminCallback(ctx context.Context, callback *tgbotapi.CallbackQuery, data string) {
	if !b.isAdmin(callback.From.ID) {
		b.answerCallback(callback.ID, "❌ Admin only!")
		return
	}

	switch data {
	case "admin_panel", "admin_stats":
		markup := adminPanelKeyboard()
		b.editMessage(callback.Message.Chat.ID, callback.Message.MessageID, "🔧 Admin Panel", &markup)
	case "admin_users":
		b.showAllBalances(ctx, callback)
	case "admin_deposits":
		b.showPendingDeposits(ctx, callback)
	case "admin_withdrawals":
		b.showPendingWithdrawals(ctx, callback)
	}
}

func (b *Bot) showAllBalances(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	accounts, err := b.ledgerService.ListBalances(ctx)
	if err != nil {
		log.WithError(err).Error("failed to list balances")
		b.answerCallback(callback.ID, "❌ Something went wrong")
		return
	}

	if len(accounts) == 0 {
		b.answerCallback(callback.ID, "📭 No users found")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("👥 Users (%d)\n\n", len(accounts)))
	for _, account := range accounts {
		sb.WriteString(fmt.Sprintf("👤 %d — %s\n", account.UserID, models.FormatKobo(account.Balance)))
	}

	markup := adminPanelKeyboard()
	b.editMessage(callback.Message.Chat.ID, callback.Message.MessageID, sb.String(), &markup)
}

func (b *Bot) showPendingDeposits(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	requests, err := b.requestService.ListPendingDeposits(ctx)
	if err != nil {
		log.WithError(err).Error("failed to list pending deposits")
		b.answerCallback(callback.ID, "❌ Something went wrong")
		return
	}

	if len(requests) == 0 {
		b.answerCallback(callback.ID, "📭 No pending deposits")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("💳 Pending Deposits (%d)\n\n", len(requests)))
	for _, request := range requests {
		sb.WriteString(fmt.Sprintf("#%d — 👤 %d — %s\n", request.ID, request.UserID, models.FormatKobo(request.Amount)))
	}

	markup := pendingDepositsKeyboard(requests)
	b.editMessage(callback.Message.Chat.ID, callback.Message.MessageID, sb.String(), &markup)
}

func (b *Bot) showPendingWithdrawals(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	requests, err := b.requestService.ListPendingWithdrawals(ctx)
	if err != nil {
		log.WithError(err).Error("failed to list pending withdrawals")
		b.answerCallback(callback.ID, "❌ Something went wrong")
		return
	}

	if len(requests) == 0 {
		b.answerCallback(callback.ID, "📭 No pending withdrawals")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("💸 Pending Withdrawals (%d)\n\n", len(requests)))
	for _, request := range requests {
		sb.WriteString(fmt.Sprintf("#%d — 👤 %d — %s\n", request.ID, request.UserID, models.FormatKobo(request.Amount)))
	}

	markup := pendingWithdrawalsKeyboard(requests)
	b.editMessage(callback.Message.Chat.ID, callback.Message.MessageID, sb.String(), &markup)
}

// handleRequestDecision resolves approve_/reject_ callbacks for both
// request kinds. The user notification rides on the decided event.
func (b *Bot) handleRequestDecision(ctx context.Context, callback *tgbotapi.CallbackQuery, data string) {
	if !b.isAdmin(callback.From.ID) {
		b.answerCallback(callback.ID, "❌ Admin only!")
		return
	}

	approve := strings.HasPrefix(data, "approve_")
	rest := strings.TrimPrefix(strings.TrimPrefix(data, "approve_"), "reject_")

	parts := strings.SplitN(rest, "_", 2)
	if len(parts) != 2 {
		b.answerCallback(callback.ID, "❌ Bad request reference")
		return
	}
	kind, idStr := parts[0], parts[1]

	requestID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		b.answerCallback(callback.ID, "❌ Bad request reference")
		return
	}

	verb, action := "reject", "rejected"
	if approve {
		verb, action = "approve", "approved"
	}

	switch kind {
	case "deposit":
		_, err = b.requestService.DecideDeposit(ctx, requestID, approve)
	case "withdrawal":
		_, err = b.requestService.DecideWithdrawal(ctx, requestID, approve)
	default:
		b.answerCallback(callback.ID, "❌ Bad request reference")
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, models.ErrAlreadyDecided):
			b.answerCallback(callback.ID, fmt.Sprintf("⚠️ Request #%d was already decided", requestID))
		case errors.Is(err, models.ErrNotFound):
			b.answerCallback(callback.ID, fmt.Sprintf("❌ Request #%d not found", requestID))
		default:
			log.WithError(err).WithFields(log.Fields{
				"requestID": requestID,
				"kind":      kind,
			}).Error("failed to decide request")
			b.answerCallback(callback.ID, fmt.Sprintf("❌ Failed to %s request #%d", verb, requestID))
		}
		return
	}

	b.answerCallback(callback.ID, fmt.Sprintf("✅ Request #%d %s", requestID, action))
}

// === ADMIN TEXT COMMANDS ===

func (b *Bot) handleAddBalance(ctx context.Context, message *tgbotapi.Message) {
	if !b.isAdmin(message.From.ID) {
		b.send(tgbotapi.NewMessage(message.Chat.ID, "❌ Access denied"))
		return
	}

	userID, amount, ok := parseUserAmountArgs(message.CommandArguments())
	if !ok {
		b.send(tgbotapi.NewMessage(message.Chat.ID, "Usage: /addbalance USER_ID AMOUNT"))
		return
	}

	newBalance, err := b.ledgerService.AdjustBalance(ctx, userID, amount, models.EntryTypeAdminAdjust, map[string]any{
		"admin_id": message.From.ID,
	})
	if err != nil {
		b.send(tgbotapi.NewMessage(message.Chat.ID, fmt.Sprintf("❌ Error: %v", err)))
		return
	}

	b.send(tgbotapi.NewMessage(message.Chat.ID,
		fmt.Sprintf("✅ Added %s to user %d\nNew balance: %s", models.FormatKobo(amount), userID, models.FormatKobo(newBalance))))
	b.send(tgbotapi.NewMessage(userID,
		fmt.Sprintf("🎉 Admin added %s to your account!\n💼 New balance: %s", models.FormatKobo(amount), models.FormatKobo(newBalance))))
}

func (b *Bot) handleSetBalance(ctx context.Context, message *tgbotapi.Message) {
	if !b.isAdmin(message.From.ID) {
		b.send(tgbotapi.NewMessage(message.Chat.ID, "❌ Access denied"))
		return
	}

	userID, amount, ok := parseUserAmountArgs(message.CommandArguments())
	if !ok {
		b.send(tgbotapi.NewMessage(message.Chat.ID, "Usage: /setbalance USER_ID AMOUNT"))
		return
	}

	if err := b.ledgerService.SetBalance(ctx, userID, amount); err != nil {
		b.send(tgbotapi.NewMessage(message.Chat.ID, fmt.Sprintf("❌ Error: %v", err)))
		return
	}

	b.send(tgbotapi.NewMessage(message.Chat.ID,
		fmt.Sprintf("✅ Set balance of user %d to %s", userID, models.FormatKobo(amount))))
}

func (b *Bot) handleUserInfo(ctx context.Context, message *tgbotapi.Message) {
	if !b.isAdmin(message.From.ID) {
		b.send(tgbotapi.NewMessage(message.Chat.ID, "❌ Access denied"))
		return
	}

	args := strings.Fields(message.CommandArguments())
	if len(args) != 1 {
		b.send(tgbotapi.NewMessage(message.Chat.ID, "Usage: /userinfo USER_ID"))
		return
	}

	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.send(tgbotapi.NewMessage(message.Chat.ID, "Usage: /userinfo USER_ID"))
		return
	}

	balance, err := b.ledgerService.GetBalance(ctx, userID)
	if err != nil {
		b.send(tgbotapi.NewMessage(message.Chat.ID, fmt.Sprintf("❌ Error: %v", err)))
		return
	}

	b.send(tgbotapi.NewMessage(message.Chat.ID,
		fmt.Sprintf("👤 User %d\n💼 Balance: %s", userID, models.FormatKobo(balance))))
}

func (b *Bot) handleAllUsers(ctx context.Context, message *tgbotapi.Message) {
	if !b.isAdmin(message.From.ID) {
		b.send(tgbotapi.NewMessage(message.Chat.ID, "❌ Access denied"))
		return
	}

	accounts, err := b.ledgerService.ListBalances(ctx)
	if err != nil {
		b.send(tgbotapi.NewMessage(message.Chat.ID, fmt.Sprintf("❌ Error: %v", err)))
		return
	}

	if len(accounts) == 0 {
		b.send(tgbotapi.NewMessage(message.Chat.ID, "📭 No users found"))
		return
	}

	var sb strings.Builder
	var total int64
	sb.WriteString(fmt.Sprintf("👥 All Users (%d)\n\n", len(accounts)))
	for _, account := range accounts {
		sb.WriteString(fmt.Sprintf("👤 %d — %s\n", account.UserID, models.FormatKobo(account.Balance)))
		total += account.Balance
	}
	sb.WriteString(fmt.Sprintf("\n💰 Total: %s", models.FormatKobo(total)))

	b.send(tgbotapi.NewMessage(message.Chat.ID, sb.String()))
}

func (b *Bot) handleMessageUser(message *tgbotapi.Message) {
	if !b.isAdmin(message.From.ID) {
		b.send(tgbotapi.NewMessage(message.Chat.ID, "❌ Access denied"))
		return
	}

	args := strings.SplitN(message.CommandArguments(), " ", 2)
	if len(args) != 2 || strings.TrimSpace(args[1]) == "" {
		b.send(tgbotapi.NewMessage(message.Chat.ID, "Usage: /message USER_ID MESSAGE"))
		return
	}

	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.send(tgbotapi.NewMessage(message.Chat.ID, "Usage: /message USER_ID MESSAGE"))
		return
	}

	text := strings.TrimSpace(args[1])
	if err := validator.Text(text); err != nil {
		b.send(tgbotapi.NewMessage(message.Chat.ID, "❌ Message rejected"))
		return
	}

	b.send(tgbotapi.NewMessage(userID, fmt.Sprintf("📨 Admin Message:\n\n%s", text)))
	b.send(tgbotapi.NewMessage(message.Chat.ID, fmt.Sprintf("✅ Message sent to user %d", userID)))
}

// parseUserAmountArgs parses "USER_ID AMOUNT" with the amount in kobo.
func parseUserAmountArgs(args string) (int64, int64, bool) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return 0, 0, false
	}
	userID, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil || validator.UserID(userID) != nil {
		return 0, 0, false
	}
	amount, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return userID, amount, true
}
