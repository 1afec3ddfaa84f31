package bot

import (
	"fmt"
	"strings"
)

// depositAddresses maps the accepted deposit currencies to the collection
// addresses shown to the user.
var depositAddresses = map[string]string{
	"ETH": "0x9DF83278862d790f820D0b440Aa78e5908461C73",
	"BTC": "bc1q6twmxc78npdaph930e0nlcccdukrtvpaptzm0m",
	"BNB": "bnb1t7phrsgas4nrckcpn5cnfs3llff74vvn5hylul",
	"DGB": "dgb1qejadjp6lytajm303uv8c7y87ekayun2dg2lr96",
	"TRX": "TJUcRvN9q68bsjDoYCBwnSVmXcktAEEC2D",
	"SOL": "APwA5kZyC26wmS9t47kPTsjqsx1VdmycqVejzYETGVvq",
}

func (b *Bot) welcomeMessage() string {
	var sb strings.Builder

	sb.WriteString("🎉 Welcome to Our Bot! 🎉\n\n")
	sb.WriteString("🚀 To get started and claim your bonus, join our channels:\n")

	for _, channel := range b.channels {
		sb.WriteString("➤ " + channel + "\n")
	}

	sb.WriteString("\n💸 Once joined, you'll receive a bonus of 0.0005 USDT!\n\n")
	sb.WriteString("✅ Tap the button below to verify your subscriptions.")

	return sb.String()
}

func (b *Bot) notJoinedMessage() string {
	var sb strings.Builder

	sb.WriteString("❗️ It looks like you haven't joined the channels yet.\n\n")
	sb.WriteString("Please join the following channels to proceed:\n")

	for _, channel := range b.channels {
		sb.WriteString("➤ " + channel + "\n")
	}

	sb.WriteString("\nOnce joined, click the button below to verify your subscriptions.")

	return sb.String()
}

const mainMenuMessage = "🥳 Welcome to our Bot! 🥳\n\n" +
	"You can always return to check the airdrop and explore more offers! 🌟\n\n" +
	"💡 Stay tuned for exciting updates and rewards! 🎁"

const helpMessage = "🔧 Help Center\n\n" +
	"Hello there! 👋 Need help or have questions? You're at the right place! 🌟\n\n" +
	"Here's how we can assist you:\n\n" +
	"📜 General Help: If you have any questions about how to use the bot or need assistance with any features, feel free to ask!\n\n" +
	"📈 Updates & Announcements: Stay tuned for updates and announcements. Make sure to join our channels for the latest news!\n\n" +
	"💬 Contact Support: If you need personal assistance or have specific inquiries, you can reach out directly to our support team.\n\n" +
	"🔄 Feedback: We value your feedback! Let us know how we can improve your experience. Your suggestions are always welcome! 💡\n\n" +
	"🚀 Enjoy the Bot! We're here to make your experience amazing. 😃"

const airdropInfoMessage = "ℹ️ Airdrop Information ℹ️\n\n" +
	"Welcome to our Exclusive Airdrop Bot! 🚀\n\n" +
	"🔗 Referral System:\n" +
	"Earn rewards by inviting your friends! Share your unique referral link, " +
	"and for every person who joins through your link, you'll receive a bonus. " +
	"The more you refer, the more you earn! 💸\n\n" +
	"🏆 Top Referrers:\n" +
	"Compete to be one of the top referrers! Each month, the top 10 referrers will be featured, " +
	"and the highest referrer will receive an additional bonus reward. 🥇\n\n" +
	"🔧 Bot Features:\n" +
	"- Balance Check: See your current earnings and bonuses.\n" +
	"- Set Wallet: Easily set or update your withdrawal wallet address.\n" +
	"- Bonus: Claim your daily or special bonuses.\n" +
	"- Statistics: Keep track of your referral count and performance.\n" +
	"- Help: Get support and answers to frequently asked questions.\n\n" +
	"📅 Seasonal Break:\n" +
	"To ensure fair play and bot maintenance, our bot will take a break for one month every season. " +
	"During this time, referrals and earnings will be paused. " +
	"The bot will notify you before the break starts. Make sure to claim all your rewards before the break! 🛠️\n\n" +
	"Thank you for participating in our airdrop and helping grow our community! 🎉"

func depositMessage(currency, address string) string {
	return fmt.Sprintf(
		"⚠️ If you send less than 0.20 %s, your deposit will be ignored!\n\n"+
			"✅ Send the amount you want to deposit to the following address:\n\n"+
			"`%s`\n\n"+
			"📸 Please send a screenshot of your wallet address. "+
			"Note that if you send a fake proof, your deposit will be rejected!\n\n"+
			"Your details are safe with us!",
		currency, address,
	)
}
