package chatbot

import (
	"fmt"
	"strings"

	"github.com/smartcooking/chatbot/internal/faq"
	"github.com/smartcooking/chatbot/internal/models"
)

// AssembleContext renders the generator's context block: the complete
// FAQ table followed by the user's prior conversation, in chronological
// order. The whole table is included every time, not just a matched
// topic, so the model can handle follow-up questions that intent
// matching missed.
func AssembleContext(table *faq.Table, lang string, history []models.Exchange) string {
	var b strings.Builder

	b.WriteString("Knowledge base:\n")
	for _, record := range table.Records() {
		fmt.Fprintf(&b, "%s: %s\n", record.Topic, record.Answer(lang))
	}

	b.WriteString("\nConversation history:\n")
	for _, ex := range history {
		fmt.Fprintf(&b, "User: %s | Reply: %s\n", ex.Message, ex.Reply)
	}

	return b.String()
}
