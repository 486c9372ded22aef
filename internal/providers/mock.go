package providers

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// MockProvider returns deterministic output so the pipeline can run and be
// tested without any external service.
type MockProvider struct {
	dim int
}

func NewMockProvider(dim int) *MockProvider {
	if dim <= 0 {
		dim = 1536
	}
	return &MockProvider{dim: dim}
}

func (m *MockProvider) Embed(ctx context.Context, req EmbedRequest) ([][]float32, ProviderInfo, error) {
	_ = ctx
	dim := req.Dimension
	if dim <= 0 {
		dim = m.dim
	}
	vectors := make([][]float32, 0, len(req.Inputs))
	for _, input := range req.Inputs {
		vectors = append(vectors, deterministicVector(input, dim))
	}
	return vectors, ProviderInfo{Name: "mock", Model: fmt.Sprintf("mock-embed-%d", dim), Key: "mock"}, nil
}

func (m *MockProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, ProviderInfo, error) {
	_ = ctx
	info := ProviderInfo{Name: "mock", Model: "mock-llm-v1", Key: "mock"}
	op := strings.ToLower(req.Operation)
	switch {
	case strings.Contains(op, "extract"):
		return CompletionResponse{Text: mockQuestionJSON}, info, nil
	case strings.Contains(op, "repair"):
		return CompletionResponse{Text: `{"fixes": []}`}, info, nil
	default:
		return CompletionResponse{Text: "Mock response."}, info, nil
	}
}

const mockQuestionJSON = `{"questions": [
  {"stem": "A previously healthy 34-year-old patient presents with acute chest pain radiating to the left arm. Which is the most appropriate initial exam?",
   "option_a": "Electrocardiogram",
   "option_b": "Chest radiograph",
   "option_c": "Abdominal ultrasound",
   "option_d": "Upper endoscopy",
   "correct_option": "A",
   "explanation": "Acute chest pain with radiation warrants an immediate ECG to rule out ischemia.",
   "subject_area": "Cardiology"}
]}`

func deterministicVector(input string, dim int) []float32 {
	vec := make([]float32, dim)
	seed := []byte(input)
	if len(seed) == 0 {
		seed = []byte("empty")
	}
	for i := 0; i < dim; i++ {
		h := sha256.Sum256(append(seed, byte(i%251)))
		u := binary.BigEndian.Uint32(h[:4])
		vec[i] = float32(u%2000)/1000.0 - 1.0
	}
	return normalize(vec)
}

func normalize(v []float32) []float32 {
	var sum float32
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return v
	}
	inv := float32(1.0 / (math.Sqrt(float64(sum)) + 1e-9))
	for i := range v {
		v[i] *= inv
	}
	return v
}
