package bot

import (
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"minebet/game"
	"minebet/models"
)

func mainMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎮 Play Game", "play_game"),
			tgbotapi.NewInlineKeyboardButtonData("💰 Deposit", "deposit_menu"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💳 Withdraw", "withdraw_menu"),
			tgbotapi.NewInlineKeyboardButtonData("📊 Statistics", "show_stats"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("ℹ️ Help", "show_help"),
		),
	)
}

// amountMenuKeyboard builds the preset amount picker shared by the
// deposit and withdraw menus. Amounts on the buttons are whole naira;
// callback data carries the naira value, converted to kobo on receipt.
func amountMenuKeyboard(prefix string) tgbotapi.InlineKeyboardMarkup {
	amounts := [][]int64{
		{100, 200, 500},
		{1000, 2000, 5000},
		{10000, 20000},
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, group := range amounts {
		var row []tgbotapi.InlineKeyboardButton
		for _, naira := range group {
			label := fmt.Sprintf("₦%s", formatThousands(naira))
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("%s_%d", prefix, naira)))
		}
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔙 Back", "main_menu"),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func depositMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return amountMenuKeyboard("deposit")
}

func withdrawMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return amountMenuKeyboard("withdraw")
}

// tileKeyboard renders the 5x5 grid. Buttons show 1-based tile numbers;
// callback data carries the 0-based index.
func tileKeyboard(opened []int) tgbotapi.InlineKeyboardMarkup {
	openedSet := make(map[int]bool, len(opened))
	for _, tile := range opened {
		openedSet[tile] = true
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for i := 0; i < game.TotalTiles; i++ {
		if openedSet[i] {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData("✅", fmt.Sprintf("opened_%d", i)))
		} else {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(strconv.Itoa(i+1), fmt.Sprintf("open_%d", i)))
		}
		if (i+1)%game.GridSize == 0 {
			rows = append(rows, row)
			row = nil
		}
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("💰 Cashout", "cashout"),
		tgbotapi.NewInlineKeyboardButtonData("🔮 Predict", "predict"),
	))
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🏠 Main Menu", "main_menu"),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func adminPanelKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Stats", "admin_stats"),
			tgbotapi.NewInlineKeyboardButtonData("👥 Users", "admin_users"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💳 Deposits", "admin_deposits"),
			tgbotapi.NewInlineKeyboardButtonData("💸 Withdrawals", "admin_withdrawals"),
		),
	)
}

func pendingDepositsKeyboard(requests []*models.DepositRequest) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, request := range requests {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("Approve #%d", request.ID), fmt.Sprintf("approve_deposit_%d", request.ID)),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("Reject #%d", request.ID), fmt.Sprintf("reject_deposit_%d", request.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔙 Back", "admin_panel"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func pendingWithdrawalsKeyboard(requests []*models.WithdrawalRequest) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, request := range requests {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("Approve #%d", request.ID), fmt.Sprintf("approve_withdrawal_%d", request.ID)),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("Reject #%d", request.ID), fmt.Sprintf("reject_withdrawal_%d", request.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔙 Back", "admin_panel"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// formatThousands renders 20000 as "20,000".
func formatThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out)
}
