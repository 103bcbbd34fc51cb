package webhook

import "fmt"

// responseCategory is one built-in intent bucket: if any of its
// keywords appears in the (lowercased) text, its reply text is used.
// Categories are evaluated in order; the first match wins.
type responseCategory struct {
	keywords []string
	text     string
}

// Built-in direct message replies, evaluated after the tenant's custom
// responses.
var defaultMessageResponses = []responseCategory{
	{[]string{"oi", "olá", "ola", "hey", "boa"}, "Olá! 👋 Como posso ajudar você hoje?"},
	{[]string{"preço", "preco", "valor", "quanto custa"}, "📋 Para informações sobre preços, nossa equipe te enviará todos os detalhes em breve!"},
	{[]string{"horário", "horario", "atendimento"}, "🕐 Nosso horário de atendimento:\nSeg-Sex: 9h às 18h\nSáb: 9h às 13h"},
	{[]string{"catálogo", "catalogo", "produtos"}, "📸 Vou te enviar nosso catálogo completo!"},
	{[]string{"contato", "telefone", "whatsapp"}, "📞 Entre em contato conosco pelos nossos canais oficiais!"},
}

// Catch-all when nothing else matched.
const fallbackMessageResponse = "Obrigado pela sua mensagem! 🙂 Em breve retornaremos."

// Comment replies, addressed to the commenting username.
var commentResponses = []responseCategory{
	{[]string{"preço", "preco", "valor"}, "Oi! Enviamos os preços por DM! 📩"},
	{[]string{"orçamento", "orcamento"}, "Olá! Vamos te enviar um orçamento personalizado por DM! 💼"},
	{[]string{"informação", "informacao", "info"}, "Oi! Te enviamos todas as informações por DM! ✉️"},
	{[]string{"contato", "whatsapp"}, "Te respondemos por DM! 📱"},
}

const fallbackCommentResponse = "Olá! Vamos te responder por DM! 😊"

// Fixed acknowledgement for story mentions, regardless of content.
const storyMentionResponse = "Obrigado por compartilhar! 🙏✨"

func mention(username, text string) string {
	return fmt.Sprintf("@%s %s", username, text)
}
