package chat

import (
	"regexp"
	"strings"
)

// Intent is the topic a fallback reply answers.
type Intent string

const (
	IntentGreeting    Intent = "greeting"
	IntentDonation    Intent = "donation"
	IntentEligibility Intent = "eligibility"
	IntentLocation    Intent = "location"
	IntentBenefits    Intent = "benefits"
	IntentDefault     Intent = "default"
)

// OfflineGreeting seeds an empty log when the first handshake fails.
const OfflineGreeting = "Welcome to Blood Bank Assistant! I'm currently in offline mode with limited functionality."

var cannedReplies = map[Intent]string{
	IntentGreeting:    "Welcome to Blood Bank Assistant! How can I help you today?",
	IntentDonation:    "To donate blood, you generally need to be at least 17 years old, weigh at least 110 pounds, and be in good health. Would you like to know more?",
	IntentEligibility: "General eligibility requirements include being at least 17 years old, weighing at least 110 pounds, being in good health, and not having any recent tattoos or piercings in the last 12 months.",
	IntentLocation:    "To find a blood bank near you, I would normally search our database. Since we're currently offline, please visit our website or call our hotline at (555) 123-4567 for location information.",
	IntentBenefits:    "Donating blood helps save lives, provides a free mini health screening, and may reduce the risk of heart disease by reducing iron stores.",
	IntentDefault:     "I apologize, but I'm currently operating in offline mode with limited functionality. For more specific information, please try again later when our connection is restored.",
}

type rule struct {
	intent  Intent
	pattern *regexp.Regexp
}

// Order matters: the first matching rule wins.
var rules = []rule{
	{IntentGreeting, regexp.MustCompile(`\b(hello|hi|hey|greetings)\b`)},
	{IntentDonation, regexp.MustCompile(`\b(donate|donation|donating|give blood)\b`)},
	{IntentEligibility, regexp.MustCompile(`\b(requirements|eligible|eligibility|qualify|can i donate)\b`)},
	{IntentLocation, regexp.MustCompile(`\b(blood bank|location|where|nearby|center|find|closest)\b`)},
	{IntentBenefits, regexp.MustCompile(`\b(benefits|advantage|good|why donate|reason)\b`)},
}

// Classify picks the intent of a user message.
func Classify(text string) Intent {
	msg := strings.ToLower(strings.TrimSpace(text))
	for _, r := range rules {
		if r.pattern.MatchString(msg) {
			return r.intent
		}
	}
	return IntentDefault
}

// Reply is the canned answer for an intent.
func Reply(i Intent) string {
	if s, ok := cannedReplies[i]; ok {
		return s
	}
	return cannedReplies[IntentDefault]
}

// Greeting is the message seeded on the first successful connection.
func Greeting() string { return cannedReplies[IntentGreeting] }

// FallbackReply answers text without the live channel.
func FallbackReply(text string) string {
	return Reply(Classify(text))
}

// Topic is a quick-reply shortcut.
type Topic struct {
	Label string
	Query string
}

var Topics = []Topic{
	{Label: "Donation Info", Query: "How can I donate blood?"},
	{Label: "Eligibility", Query: "What are the requirements to donate?"},
	{Label: "Find Blood Bank", Query: "Where is the nearest blood bank?"},
	{Label: "Benefits", Query: "What are the benefits of donating blood?"},
}
