package chat

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"google.golang.org/genai"
)

// persona is the fixed system instruction for the store's assistant.
const persona = `Você é a 'Áquila', a assistente virtual de moda da loja 'Áquila Modas Infantil'.
Seu tom de voz é amigável, carinhoso e profissional (como uma vendedora experiente e atenciosa).
Você ajuda pais, tios e avós a escolherem roupas para crianças.
Produtos disponíveis na loja geralmente incluem: Vestidos, Conjuntos, Macacões, Jeans, Camisetas.
Faixas etárias: Bebê (0-24 meses), Infantil (2-12 anos).
Se o usuário perguntar sobre tamanhos, explique:
- Bebê: RN, P, M, G, GG.
- Infantil: 2, 4, 6, 8, 10, 12 (anos).
Dê conselhos de estilo baseados em ocasiões (festas, brincar, escola) ou clima.
Seja concisa e use emojis ocasionalmente para parecer simpática. 🌸✨`

// emptyReply is returned when the model produces no usable text.
const emptyReply = "Desculpe, não consegui entender. Pode repetir de outra forma?"

// unavailableReply is returned when no API credential is configured.
const unavailableReply = "Desculpe, meu sistema de inteligência está temporariamente indisponível (Chave de API ausente)."

// GeminiConfig configures the Gemini-backed assistant.
type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// GeminiAssistant generates replies through the Gemini API with the fixed
// Áquila persona. The service is treated as a black box: one attempt per
// send, bounded by the configured timeout.
type GeminiAssistant struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiAssistant creates the Gemini client. The API key must be set;
// callers should fall back to Unavailable() when it is missing.
func NewGeminiAssistant(ctx context.Context, cfg GeminiConfig) (*GeminiAssistant, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create genai client")
	}
	return &GeminiAssistant{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}, nil
}

// Reply forwards the transcript to Gemini and returns the generated text.
func (a *GeminiAssistant) Reply(ctx context.Context, history []Turn) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	contents := make([]*genai.Content, len(history))
	for i, t := range history {
		contents[i] = &genai.Content{
			Role:  string(t.Role),
			Parts: []*genai.Part{{Text: t.Text}},
		}
	}

	resp, err := a.client.Models.GenerateContent(ctx, a.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: persona}},
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "generate content")
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("empty response")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return emptyReply, nil
	}
	return text, nil
}

// Unavailable returns an Assistant used when no API credential is
// configured: every send short-circuits to a fixed apologetic reply
// without attempting a network call.
func Unavailable() Assistant {
	return unavailableAssistant{}
}

type unavailableAssistant struct{}

func (unavailableAssistant) Reply(context.Context, []Turn) (string, error) {
	return unavailableReply, nil
}
