package providers

import "context"

type ProviderInfo struct {
	Name  string `json:"name"`
	Model string `json:"model"`
	Key   string `json:"key"`
}

// CompletionRequest is a chat-style system+user prompt pair. Operation is
// a short tag used for usage accounting, not sent to the provider.
type CompletionRequest struct {
	Operation string `json:"operation"`
	System    string `json:"system"`
	User      string `json:"user"`
}

type CompletionResponse struct {
	Text string `json:"text"`
}

type EmbedRequest struct {
	Operation string   `json:"operation"`
	Inputs    []string `json:"inputs"`
	Dimension int      `json:"dimension"`
}

type Completor interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, ProviderInfo, error)
}

type Embedder interface {
	Embed(ctx context.Context, req EmbedRequest) ([][]float32, ProviderInfo, error)
}
