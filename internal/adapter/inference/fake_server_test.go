package inference

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/krywicki/zeroshot/internal/domain/service"
	"github.com/krywicki/zeroshot/internal/infrastructure/tokenizer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// logits are the raw class scores the fake server returns for one pair
type logits struct {
	contradiction, neutral, entailment float64
}

// fakeServer mimics an NLI model behind a text-embeddings-inference style API
type fakeServer struct {
	mu         sync.Mutex
	modelID    string
	unhealthy  bool
	score      func(premise, hypothesis string) logits
	requests   []PredictRequest
	requestIDs []string
}

func (f *fakeServer) predictCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeServer) lastRequest() PredictRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newFakeServer(t *testing.T, f *fakeServer) *httptest.Server {
	t.Helper()

	router := gin.New()
	router.GET("/health", func(c *gin.Context) {
		if f.unhealthy {
			c.Status(http.StatusServiceUnavailable)
			return
		}
		c.Status(http.StatusOK)
	})
	router.GET("/info", func(c *gin.Context) {
		c.JSON(http.StatusOK, InfoResponse{ModelID: f.modelID, MaxInputLength: 1024})
	})
	router.POST("/predict", func(c *gin.Context) {
		var req PredictRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}

		f.mu.Lock()
		f.requests = append(f.requests, req)
		f.requestIDs = append(f.requestIDs, c.GetHeader("X-Request-ID"))
		f.mu.Unlock()

		if f.score == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "model not loaded"})
			return
		}

		resp := make(PredictResponse, len(req.Inputs))
		for i, pair := range req.Inputs {
			l := f.score(pair[0], pair[1])
			resp[i] = []Prediction{
				{Label: "entailment", Score: l.entailment},
				{Label: "neutral", Score: l.neutral},
				{Label: "contradiction", Score: l.contradiction},
			}
		}
		c.JSON(http.StatusOK, resp)
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

// wordTokenizer counts whitespace-separated words as tokens
type wordTokenizer struct {
	lowerCase bool
}

func (w wordTokenizer) Normalize(text string) string {
	if w.lowerCase {
		return strings.ToLower(text)
	}
	return text
}

func (w wordTokenizer) TruncatePair(premise, hypothesis string, maxLength int) (string, string, error) {
	if maxLength < tokenizer.PairSpecialTokens {
		return "", "", service.ErrInputTooLong
	}
	p := strings.Fields(w.Normalize(premise))
	h := strings.Fields(w.Normalize(hypothesis))
	np, nh := tokenizer.LongestFirst(len(p), len(h), maxLength-tokenizer.PairSpecialTokens)
	return strings.Join(p[:np], " "), strings.Join(h[:nh], " "), nil
}
