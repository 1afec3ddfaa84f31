package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"

	"github.com/minerdrop/minerdrop/internal/domain/accounts"
	"github.com/minerdrop/minerdrop/internal/ledger"
	"github.com/minerdrop/minerdrop/internal/storage"
)

// displayPrecision is the number of decimal places shown to users. Internal
// bookkeeping keeps full precision.
const displayPrecision = 5

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	chatID := msg.Chat.ID
	userID := strconv.FormatInt(msg.From.ID, 10)
	s := b.session(chatID)

	if msg.IsCommand() {
		if msg.Command() == "start" {
			s.reset()
			b.handleStart(ctx, msg)
		}

		return
	}

	if msg.Text == btnCancel {
		b.handleCancel(chatID, userID, s)

		return
	}

	if len(msg.Photo) > 0 {
		b.handlePhoto(chatID, msg, s)

		return
	}

	switch s.state {
	case stateAwaitingWallet:
		b.handleWalletInput(ctx, chatID, userID, msg.Text, s)

		return

	case stateAwaitingAmount:
		b.handleAmountSelected(ctx, chatID, userID, msg.Text, s)

		return

	case stateAwaitingConfirm:
		if msg.Text == btnConfirm {
			b.handleConfirm(ctx, chatID, userID, s)

			return
		}

	case stateAwaitingDepositProof, stateAwaitingPaymentProof:
		b.reply(chatID, "❌ Only images are allowed! Please send a valid screenshot or press Cancel to stop the process.")

		return

	case stateIdle:
	}

	b.handleMenu(ctx, chatID, userID, msg)
}

func (b *Bot) handleMenu(ctx context.Context, chatID int64, userID string, msg *tgbotapi.Message) {
	switch msg.Text {
	case btnBalance:
		b.handleBalance(ctx, chatID, userID, msg.From)
	case btnBonus:
		b.handleBonus(ctx, chatID, userID)
	case btnMarkets:
		b.handleMarkets(chatID)
	case btnDeposit:
		b.handleDeposit(chatID)
	case btnReferral:
		b.handleReferralLink(ctx, chatID, userID)
	case btnWithdraw:
		b.handleWithdraw(chatID)
	case btnSetWallet:
		b.handleWalletInfo(ctx, chatID, userID, msg.From)
	case btnHelp:
		b.reply(chatID, helpMessage)
	case btnCollect:
		b.handleCollect(ctx, chatID, userID)
	case btnAirdropInfo:
		b.reply(chatID, airdropInfoMessage)
	case btnUpdate:
		b.handleFeed(ctx, chatID)
	case btnStatistics:
		b.handleStatistics(ctx, chatID)
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	userID := strconv.FormatInt(msg.From.ID, 10)

	if _, err := b.ledger.RegisterAccount(ctx, userID, displayName(msg.From)); err != nil {
		b.log.Error("ledger.RegisterAccount", slog.String("user_id", userID), slog.Any("error", err))
	}

	if referrerID := strings.TrimSpace(msg.CommandArguments()); referrerID != "" {
		switch err := b.ledger.RegisterReferral(ctx, referrerID, userID); {
		case errors.Is(err, ledger.ErrSelfReferral):
			b.reply(chatID, "🚫 You cannot refer yourself!")

			return

		case errors.Is(err, ledger.ErrAlreadyReferred):
			b.reply(chatID, "⚠️ You have already been referred by someone else.")

		case err != nil:
			b.log.Error("ledger.RegisterReferral", slog.String("user_id", userID), slog.Any("error", err))

		default:
			b.reply(chatID, "🌟 Thank you for joining through a referral link!\nExplore the bot to earn more rewards.")
		}
	}

	welcome := tgbotapi.NewMessage(chatID, b.welcomeMessage())
	welcome.ReplyMarkup = verifyKeyboard()

	b.send(welcome)
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.log.Error("api.Request", slog.Any("error", err))
	}

	if cb.Message == nil {
		return
	}

	chatID := cb.Message.Chat.ID
	userID := strconv.FormatInt(cb.From.ID, 10)
	s := b.session(chatID)

	switch {
	case cb.Data == callbackVerifyChannels:
		b.handleVerify(ctx, cb)

	case cb.Data == callbackSetWallet:
		edit := tgbotapi.NewEditMessageText(chatID, cb.Message.MessageID,
			"📝 Please enter your USDT wallet address:")
		b.send(edit)

		s.state = stateAwaitingWallet

	case strings.HasPrefix(cb.Data, callbackAcquirePrefix):
		b.handleAcquire(ctx, chatID, userID, strings.TrimPrefix(cb.Data, callbackAcquirePrefix))

	default:
		if address, ok := depositAddresses[cb.Data]; ok {
			b.handleCurrencySelected(chatID, cb, address, s)
		}
	}
}

func (b *Bot) handleVerify(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	userID := strconv.FormatInt(cb.From.ID, 10)

	if !b.memberOfChannels(cb.From.ID) {
		edit := tgbotapi.NewEditMessageText(chatID, cb.Message.MessageID, b.notJoinedMessage())
		markup := retryVerifyKeyboard()
		edit.ReplyMarkup = &markup

		b.send(edit)

		return
	}

	amount, err := b.ledger.ClaimWelcomeBonus(ctx, userID)
	switch {
	case errors.Is(err, ledger.ErrWelcomeClaimed):
	case err != nil:
		b.log.Error("ledger.ClaimWelcomeBonus", slog.String("user_id", userID), slog.Any("error", err))
	default:
		b.reply(chatID, fmt.Sprintf(
			"🎁 Congratulations! 🎁\n\n"+
				"You've successfully verified your subscription to our channels! 🎉\n\n"+
				"A bonus of %s USDT has been credited to your account! 💸",
			amount.String(),
		))
	}

	del := tgbotapi.NewDeleteMessage(chatID, cb.Message.MessageID)
	if _, err := b.api.Request(del); err != nil {
		b.log.Error("api.Request", slog.Any("error", err))
	}

	menu := tgbotapi.NewMessage(chatID, mainMenuMessage)
	menu.ReplyMarkup = mainMenuKeyboard()

	b.send(menu)
}

func (b *Bot) handleBalance(ctx context.Context, chatID int64, userID string, user *tgbotapi.User) {
	balance, err := b.ledger.Balance(ctx, userID)
	if err != nil {
		b.log.Error("ledger.Balance", slog.String("user_id", userID), slog.Any("error", err))

		return
	}

	b.reply(chatID, fmt.Sprintf(
		"💰 Your Balance 💰\n\n"+
			"👤 Username: %s\n\n"+
			"💸 Balance: %s USDT\n\n"+
			"Keep using the bot to earn more!\n\n"+
			"🥇 Upgrade your Account To Earn More USDT",
		displayName(user), balance.Round(displayPrecision).String(),
	))
}

func (b *Bot) handleBonus(ctx context.Context, chatID int64, userID string) {
	claim, err := b.ledger.ClaimBonus(ctx, userID)
	switch {
	case errors.Is(err, ledger.ErrBonusNotReady):
		b.reply(chatID, fmt.Sprintf(
			"⏳ You can claim your next bonus in %s!\n😊 Stay tuned for more opportunities to earn!",
			formatDuration(claim.NextClaimIn),
		))

	case err != nil:
		b.log.Error("ledger.ClaimBonus", slog.String("user_id", userID), slog.Any("error", err))

	default:
		b.reply(chatID, fmt.Sprintf(
			"🥳 You have successfully claimed your bonus of %s USDT! 🥳\n\n"+
				"Come back in 24 hours to claim another one! ⏰",
			claim.Amount.String(),
		))
	}
}

func (b *Bot) handleMarkets(chatID int64) {
	for _, inst := range b.ledger.Catalog().Items() {
		b.send(tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(inst.ImageURL())))

		info := fmt.Sprintf(
			"*⛏️ %s*\n"+
				"*⚡ Speed:* `%s`\n"+
				"*🌟 USDT Produced Per Second:* `%s`\n"+
				"*⏱️ USDT Produced Per Hour:* `%s`\n"+
				"*🌞 USDT Produced Per Day:* `%s`\n"+
				"*💲 Price:* `%s USDT`\n"+
				"*📅 Days Available:* `%d`\n"+
				"*🎉 Gain:* `%s`\n"+
				"\n*Get your high efficiency miner today and start earning USDT!*",
			inst.Name(), inst.Speed(), inst.YieldPerSecond().String(), inst.PerHour(),
			inst.PerDay(), inst.Price().String(), inst.ActiveDays(), inst.Gain(),
		)

		msg := tgbotapi.NewMessage(chatID, info)
		msg.ParseMode = tgbotapi.ModeMarkdown
		msg.ReplyMarkup = acquireKeyboard(inst.Name())

		b.send(msg)
	}
}

func (b *Bot) handleAcquire(ctx context.Context, chatID int64, userID, instrumentName string) {
	result, err := b.ledger.Purchase(ctx, userID, instrumentName)
	switch {
	case errors.Is(err, ledger.ErrInsufficientFunds):
		balance, balErr := b.ledger.Balance(ctx, userID)
		if balErr != nil {
			b.log.Error("ledger.Balance", slog.String("user_id", userID), slog.Any("error", balErr))

			return
		}

		b.reply(chatID, fmt.Sprintf(
			"🚫 You do not have enough balance to acquire %s.\n"+
				"💸 Your current balance is %s USDT.\n"+
				"Please top up your balance or choose a different miner.",
			instrumentName, balance.Round(displayPrecision).String(),
		))

	case err != nil:
		b.log.Error("ledger.Purchase", slog.String("user_id", userID), slog.Any("error", err))
		b.reply(chatID, "❌ Unknown action. Please try again.")

	default:
		b.reply(chatID, fmt.Sprintf(
			"✅ You have acquired %s for %s USDT.\n"+
				"💸 Your new balance is %s USDT.",
			result.Instrument.Name(), result.Instrument.Price().String(),
			result.NewBalance.Round(displayPrecision).String(),
		))
	}
}

func (b *Bot) handleCollect(ctx context.Context, chatID int64, userID string) {
	result, err := b.ledger.Collect(ctx, userID)
	switch {
	case errors.Is(err, ledger.ErrNoHoldings):
		b.reply(chatID, "😕 You haven't purchased any miners yet.\n⛏️ Go to the miner store and start earning USDT today!")

		return

	case err != nil:
		b.log.Error("ledger.Collect", slog.String("user_id", userID), slog.Any("error", err))

		return
	}

	var sb strings.Builder

	sb.WriteString("🤑 *Your Purchased Miners* 🤑\n\n")

	for _, item := range result.Items {
		status := "🟢 Working"
		if item.Expired {
			status = "🔴 Expired"
		}

		sb.WriteString(fmt.Sprintf(
			"*⛏️ %s*\n"+
				"*⚡ Speed:* %s USDT/second\n"+
				"*💲 Earnings:* %s USDT\n"+
				"*📅 Status:* %s\n\n",
			item.InstrumentName, item.YieldPerSecond.String(),
			item.Earnings.Round(displayPrecision).String(), status,
		))
	}

	sb.WriteString(fmt.Sprintf("💸 *Total Earnings:* %s USDT\n",
		result.Total.Round(displayPrecision).String()))

	b.replyMarkdown(chatID, sb.String())
}

func (b *Bot) handleReferralLink(ctx context.Context, chatID int64, userID string) {
	count, _, err := b.ledger.ReferralStats(ctx, userID)
	if err != nil {
		b.log.Error("ledger.ReferralStats", slog.String("user_id", userID), slog.Any("error", err))

		return
	}

	link := fmt.Sprintf("https://t.me/%s?start=%s", b.api.Self.UserName, userID)

	b.reply(chatID, fmt.Sprintf(
		"🔗 Your Referral Link:\n\n"+
			"👉 %s\n\n"+
			"📈 You have referred %d users!\n\n"+
			"📈 Referral Rewards:\n"+
			"Each friend who joins through your link will add 0.0002 USDT to your balance. "+
			"Keep inviting and watch your balance grow! 💰\n\n"+
			"🔄 Referral System:\n"+
			"Track your referrals and rewards directly in the bot. "+
			"The more you refer, the higher your chances of earning more USDT! 🎯",
		link, count,
	))
}

func (b *Bot) handleWalletInfo(ctx context.Context, chatID int64, userID string, user *tgbotapi.User) {
	var text string

	address, err := b.ledger.Wallet(ctx, userID)
	switch {
	case errors.Is(err, ledger.ErrWalletNotSet):
		text = fmt.Sprintf(
			"🔧 Account Settings\n\n"+
				"👤 Username: @%s\n"+
				"💼 Wallet Address: Wallet not set.\n\n"+
				"⚠️ You haven't set your wallet address yet! Please provide a valid USDT address to receive payments.\n\n"+
				"🔗 Click the button below to set your wallet.",
			displayName(user),
		)

	case err != nil:
		b.log.Error("ledger.Wallet", slog.String("user_id", userID), slog.Any("error", err))

		return

	default:
		text = fmt.Sprintf(
			"🔧 Account Settings\n\n"+
				"👤 Username: @%s\n"+
				"💼 Wallet Address: %s\n\n"+
				"🔄 If you want to change your wallet address, click the button below.",
			displayName(user), address,
		)
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = setWalletKeyboard()

	b.send(msg)
}

func (b *Bot) handleWalletInput(ctx context.Context, chatID int64, userID, input string, s *session) {
	switch err := b.ledger.SetWallet(ctx, userID, strings.TrimSpace(input)); {
	case errors.Is(err, accounts.ErrWalletFormatInvalid):
		b.reply(chatID, "❌ Invalid USDT wallet address.")

	case errors.Is(err, storage.ErrWalletInUse):
		b.reply(chatID, "⚠️ This wallet address is already used.")

	case err != nil:
		b.log.Error("ledger.SetWallet", slog.String("user_id", userID), slog.Any("error", err))

	default:
		b.reply(chatID, "✅ Your USDT wallet address has been successfully set!")

		s.reset()
	}
}

func (b *Bot) handleWithdraw(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "💰 Choose Amount You Want to Withdraw:")
	msg.ReplyMarkup = withdrawAmountKeyboard()

	b.send(msg)

	b.session(chatID).state = stateAwaitingAmount
}

func (b *Bot) handleAmountSelected(ctx context.Context, chatID int64, userID, input string, s *session) {
	amount, err := decimal.NewFromString(strings.TrimSpace(input))
	if err != nil {
		b.reply(chatID, "❌ Enter a valid amount!")

		return
	}

	address, err := b.ledger.SelectWithdrawal(ctx, userID, amount)
	switch {
	case errors.Is(err, ledger.ErrWalletNotSet):
		b.reply(chatID, "⚠️ You have not set a wallet address yet. Please set your wallet using the '🔧 Set Wallet' option.")

		s.reset()
		b.sendMainMenu(chatID, "🥳 Welcome back! 🌟")

	case err != nil:
		b.log.Error("ledger.SelectWithdrawal", slog.String("user_id", userID), slog.Any("error", err))

	default:
		msg := tgbotapi.NewMessage(chatID, fmt.Sprintf(
			"🚀 *Confirmation* 🚀:\n\n"+
				"🔢 *Address* :\n`%s`\n"+
				"💰 *Amount* : `%s` (fee: 10%%) USDT\n\n"+
				"⚡ *Confirm Your Payment by clicking on* `Confirm`",
			address, amount.String(),
		))
		msg.ParseMode = tgbotapi.ModeMarkdown
		msg.ReplyMarkup = confirmKeyboard()

		b.send(msg)

		s.state = stateAwaitingConfirm
	}
}

func (b *Bot) handleConfirm(ctx context.Context, chatID int64, userID string, s *session) {
	w, err := b.ledger.ConfirmWithdrawal(ctx, userID)
	switch {
	case errors.Is(err, ledger.ErrNoPendingWithdrawal), errors.Is(err, ledger.ErrWalletNotSet):
		b.reply(chatID, "⚠️ No pending withdrawal or wallet address found.")

		s.reset()

	case errors.Is(err, ledger.ErrInsufficientFunds):
		balance, balErr := b.ledger.Balance(ctx, userID)
		if balErr != nil {
			b.log.Error("ledger.Balance", slog.String("user_id", userID), slog.Any("error", balErr))
		}

		b.replyMarkdown(chatID, fmt.Sprintf(
			"⚠️ *Insufficient Balance* ⚠️\n\n"+
				"Your current balance is `%s` USDT, which is insufficient for this withdrawal.",
			balance.Round(displayPrecision).String(),
		))

		s.reset()
		b.sendMainMenu(chatID, "🔄 Please check your balance and try again.")

	case err != nil:
		b.log.Error("ledger.ConfirmWithdrawal", slog.String("user_id", userID), slog.Any("error", err))

	default:
		b.replyMarkdown(chatID, fmt.Sprintf(
			"✅ *New Withdrawal Processed!* ⚡\n\n"+
				"📩 *Sent To* :\n`%s`\n"+
				"💰 *Amount* : `%s` USDT\n\n"+
				"🚀 *In Bot* : @%s",
			w.Address(), w.Amount().String(), b.api.Self.UserName,
		))

		s.reset()
		b.sendMainMenu(chatID, "🥳 Your withdrawal was successful!\n\n🌟 You will be credited before 24 hours")
	}
}

func (b *Bot) handleCancel(chatID int64, userID string, s *session) {
	b.ledger.CancelWithdrawal(userID)
	s.reset()

	b.sendMainMenu(chatID, "🔄 Operation completed successfully! Returning to the home menu.")
}

func (b *Bot) handleDeposit(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "💵 Choose Your Currency For Purchase")
	msg.ReplyMarkup = currencyKeyboard()

	b.send(msg)
}

func (b *Bot) handleCurrencySelected(chatID int64, cb *tgbotapi.CallbackQuery, address string, s *session) {
	edit := tgbotapi.NewEditMessageText(chatID, cb.Message.MessageID, depositMessage(cb.Data, address))
	edit.ParseMode = tgbotapi.ModeMarkdown

	b.send(edit)

	notice := tgbotapi.NewMessage(chatID, "🚫 You can cancel the operation by pressing the Cancel button below.")
	notice.ReplyMarkup = cancelKeyboard()

	b.send(notice)

	s.state = stateAwaitingDepositProof
}

func (b *Bot) handlePhoto(chatID int64, msg *tgbotapi.Message, s *session) {
	switch s.state {
	case stateAwaitingDepositProof:
		b.forwardProof(msg)

		notice := tgbotapi.NewMessage(chatID,
			"📤 Thank you for sending the screenshot. Now, please send the proof of payment "+
				"(a screenshot of your payment confirmation).")
		notice.ReplyMarkup = cancelKeyboard()

		b.send(notice)

		s.state = stateAwaitingPaymentProof

	case stateAwaitingPaymentProof:
		b.forwardProof(msg)

		b.reply(chatID, "✅ Payment proof received!\n\n"+
			"You will be credited before 24 hours!\n\n"+
			"Fake proof or fake transfer can lead to ban, be warned!\n\n"+
			"Returning to the main menu.")

		s.reset()
		b.sendMainMenu(chatID, "🔄 Operation completed successfully! Returning to the home menu.")

	default:
	}
}

func (b *Bot) forwardProof(msg *tgbotapi.Message) {
	if b.operatorChatID == 0 || len(msg.Photo) == 0 {
		return
	}

	// The last photo size is the largest.
	fileID := msg.Photo[len(msg.Photo)-1].FileID

	b.send(tgbotapi.NewPhoto(b.operatorChatID, tgbotapi.FileID(fileID)))
}

func (b *Bot) handleFeed(ctx context.Context, chatID int64) {
	f, err := b.feed.Feed(ctx)
	if err != nil {
		b.log.Error("feed.Feed", slog.Any("error", err))

		return
	}

	remaining := f.CountdownEndAt.Sub(timeNow())
	if remaining < 0 {
		remaining = 0
	}

	days := int(remaining.Hours()) / 24
	hours := int(remaining.Hours()) % 24

	b.reply(chatID, fmt.Sprintf(
		"⏳ Time Remaining: %d days, %d hours\n\n"+
			"🆕 New features coming in Season Two:\n%s",
		days, hours, strings.Join(f.Messages, "\n\n"),
	))
}

func (b *Bot) handleStatistics(ctx context.Context, chatID int64) {
	stats, err := b.ledger.Stats(ctx)
	if err != nil {
		b.log.Error("ledger.Stats", slog.Any("error", err))

		return
	}

	b.reply(chatID, fmt.Sprintf(
		"📊 Bot Statistics 📊\n\n"+
			"👥 Active Users: %d users\n\n"+
			"💬 We're growing strong! Thank you for being a part of our community. 💬\n\n"+
			"✨ Your participation is what makes us thrive. ✨\n\n"+
			"📈 Stay tuned for new features and updates coming soon. 🚀",
		stats.Accounts,
	))
}

func (b *Bot) sendMainMenu(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = mainMenuKeyboard()

	b.send(msg)
}
