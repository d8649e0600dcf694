package Whatsapp

import (
	"log"
	"strings"

	"MindLine/Dispatch"
	"MindLine/SSE"

	whatsapp_chatbot_golang "github.com/green-api/whatsapp-chatbot-golang"
)

// Replies treated as taking the offered slot.
var acceptWords = map[string]bool{
	"yes":     true,
	"accept":  true,
	"confirm": true,
	"1":       true,
}

// Listen runs the inbound bot. When a patient who was offered a slot
// replies with an acceptance word, the matching waterfall stops and the
// slot is held for them.
func Listen(instanceID, token string, runner *Dispatch.Runner) {
	bot := whatsapp_chatbot_golang.NewBot(instanceID, token)

	bot.SetStartScene(acceptScene{runner: runner})

	bot.StartReceivingNotifications()
}

type acceptScene struct {
	runner *Dispatch.Runner
}

func (s acceptScene) Start(bot *whatsapp_chatbot_golang.Bot) {
	bot.IncomingMessageHandler(func(message *whatsapp_chatbot_golang.Notification) {
		text, err := message.Text()
		if err != nil {
			return
		}
		if !acceptWords[strings.ToLower(strings.TrimSpace(text))] {
			return
		}

		sender, err := message.Sender()
		if err != nil {
			log.Println(err)
			return
		}
		phone := "+" + strings.TrimSuffix(sender, "@c.us")

		if reference, ok := s.runner.Accept(phone); ok {
			log.Printf("Slot accepted by %s on job %s", phone, reference)
			message.AnswerWithText("Great news! Your spot is being held. The practice will confirm your appointment shortly.")
			SSE.Broadcaster.Broadcast("refresh")
		}
	})
}
