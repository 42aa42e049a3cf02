package conversation

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"elizabot/app/config"

	"github.com/sashabaranov/go-openai"
	lcopenai "github.com/tmc/langchaingo/llms/openai"
)

func createClient(cfg config.ModelConfig) *openai.Client {
	clientConfig := openai.DefaultConfig(cfg.Token)

	clientConfig.BaseURL = cfg.BaseURL
	clientConfig.HTTPClient = &http.Client{
		Timeout: 30 * time.Second,
	}

	return openai.NewClientWithConfig(clientConfig)
}

func createLLM(cfg config.ModelConfig) (*lcopenai.LLM, error) {
	return lcopenai.New(
		lcopenai.WithToken(cfg.Token),
		lcopenai.WithBaseURL(cfg.BaseURL),
		lcopenai.WithModel(cfg.Model),
		lcopenai.WithCallback(logCallbackHandler{}),
	)
}

func renderTemplate(template string, values map[string]any) string {
	result := template
	for key, value := range values {
		result = strings.ReplaceAll(result, "{"+key+"}", fmt.Sprint(value))
	}

	return result
}
