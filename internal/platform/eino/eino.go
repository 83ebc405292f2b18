package eino

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	// LLM Provider integrations - easily switchable
	gemini "github.com/cloudwego/eino-ext/components/model/gemini"
	"google.golang.org/genai"
)

// Config represents the configuration for Eino LLM integration
type Config struct {
	Provider string `json:"provider"` // "gemini" is the only provider wired today
	APIKey   string `json:"api_key"`
	BaseURL  string `json:"base_url,omitempty"`
	Model    string `json:"model"`
}

// Service wraps the Eino chat pipeline used for product copy drafting.
type Service struct {
	config       Config
	chatModel    model.BaseChatModel
	chatTemplate prompt.ChatTemplate
	geminiClient *genai.Client
}

// NewService creates a new Eino service instance with proper provider initialization
func NewService(config Config) (*Service, error) {
	service := &Service{config: config}

	if err := service.initializeChatModel(); err != nil {
		return nil, fmt.Errorf("failed to initialize chat model: %w", err)
	}
	service.initializeChatTemplate()

	return service, nil
}

// NewServiceWithModel creates a service around a pre-configured chat
// model. Used by tests to inject a fake.
func NewServiceWithModel(config Config, chatModel model.BaseChatModel) *Service {
	service := &Service{config: config, chatModel: chatModel}
	service.initializeChatTemplate()
	return service
}

func (s *Service) initializeChatModel() error {
	switch strings.ToLower(s.config.Provider) {
	case "gemini":
		return s.initializeGeminiModel()
	default:
		return fmt.Errorf("unsupported provider: %s. Supported: gemini", s.config.Provider)
	}
}

func (s *Service) initializeGeminiModel() error {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: s.config.APIKey,
	})
	if err != nil {
		return fmt.Errorf("failed to create Gemini client: %w", err)
	}
	s.geminiClient = client

	geminiModel, err := gemini.NewChatModel(context.Background(), &gemini.Config{
		Client: client,
		Model:  s.config.Model, // e.g., "gemini-1.5-flash", "gemini-1.5-pro"
	})
	if err != nil {
		return fmt.Errorf("failed to create Gemini chat model: %w", err)
	}

	s.chatModel = geminiModel
	return nil
}

func (s *Service) initializeChatTemplate() {
	systemTemplate := schema.SystemMessage(`You are a merchandising copywriter helping sellers describe their products.
Write concise, factual e-commerce product descriptions. Keep the tone professional and informative,
avoid marketing buzzwords, and do not invent features that are not supported by the listing data.`)

	userTemplate := schema.UserMessage(`Write a product description (80-120 words) for the product named "{product_name}".

Listing data:
{listing_data}

Focus on materials, primary use, and key selling points that the listing data supports.
Return only the description text, no headings or formatting.`)

	s.chatTemplate = prompt.FromMessages(
		schema.FString,
		systemTemplate,
		userTemplate,
	)
}

// DraftDescription formats the copywriting prompt with the listing data
// and returns the model's text response.
func (s *Service) DraftDescription(ctx context.Context, productName, listingData string) (string, error) {
	if s.chatModel == nil {
		return "", fmt.Errorf("chat model not initialized")
	}

	messages, err := s.chatTemplate.Format(ctx, map[string]any{
		"product_name": productName,
		"listing_data": listingData,
	})
	if err != nil {
		return "", fmt.Errorf("format prompt: %w", err)
	}

	response, err := s.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	return strings.TrimSpace(response.Content), nil
}
