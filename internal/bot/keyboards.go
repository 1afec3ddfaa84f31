package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Main-menu button captions. The message router matches on these, so the
// keyboard and the routing table must stay in sync.
const (
	btnBalance     = "💰 Balance"
	btnBonus       = "🎁 Bonus"
	btnMarkets     = "💳 Markets"
	btnDeposit     = "💵 Deposit"
	btnReferral    = "🔗 Referral Link"
	btnWithdraw    = "🏧 Withdraw"
	btnSetWallet   = "🔧 Set Wallet"
	btnHelp        = "❓ Help"
	btnCollect     = "🔑 Unlock Profit"
	btnAirdropInfo = "ℹ️ Airdrop Info"
	btnUpdate      = "🗒 Update"
	btnStatistics  = "📊 Statistics"

	btnConfirm = "✅ Confirm"
	btnCancel  = "🚫 Cancel"
)

const (
	callbackVerifyChannels = "verify_channels"
	callbackSetWallet      = "set_wallet"
	callbackAcquirePrefix  = "acquire_"
)

var withdrawalAmounts = []string{"10", "25", "500"}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnBalance),
			tgbotapi.NewKeyboardButton(btnBonus),
			tgbotapi.NewKeyboardButton(btnMarkets),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnDeposit),
			tgbotapi.NewKeyboardButton(btnReferral),
			tgbotapi.NewKeyboardButton(btnWithdraw),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSetWallet),
			tgbotapi.NewKeyboardButton(btnHelp),
			tgbotapi.NewKeyboardButton(btnCollect),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnAirdropInfo),
			tgbotapi.NewKeyboardButton(btnUpdate),
			tgbotapi.NewKeyboardButton(btnStatistics),
		),
	)
	kb.ResizeKeyboard = true

	return kb
}

func withdrawAmountKeyboard() tgbotapi.ReplyKeyboardMarkup {
	row := make([]tgbotapi.KeyboardButton, 0, len(withdrawalAmounts)+1)
	for _, amount := range withdrawalAmounts {
		row = append(row, tgbotapi.NewKeyboardButton(amount))
	}

	row = append(row, tgbotapi.NewKeyboardButton(btnCancel))

	kb := tgbotapi.NewReplyKeyboard(row)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true

	return kb
}

func confirmKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnConfirm),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true

	return kb
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
	kb.ResizeKeyboard = true

	return kb
}

func verifyKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Verify", callbackVerifyChannels),
		),
	)
}

func retryVerifyKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Retry", callbackVerifyChannels),
		),
	)
}

func setWalletKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔧 Set Wallet", callbackSetWallet),
		),
	)
}

func currencyKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("♦️ Pay ETH", "ETH"),
			tgbotapi.NewInlineKeyboardButtonData("♦️ Pay BTC", "BTC"),
			tgbotapi.NewInlineKeyboardButtonData("♦️ Pay BNB", "BNB"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("♦️ Pay DGB", "DGB"),
			tgbotapi.NewInlineKeyboardButtonData("♦️ Pay TRX", "TRX"),
			tgbotapi.NewInlineKeyboardButtonData("♦️ Pay SOL", "SOL"),
		),
	)
}

func acquireKeyboard(instrumentName string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💰 Acquire Miner", callbackAcquirePrefix+instrumentName),
		),
	)
}
