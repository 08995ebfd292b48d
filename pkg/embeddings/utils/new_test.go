package embeddingutils_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/forumsearch/pkg/embeddings/ollama"
	"github.com/papercomputeco/forumsearch/pkg/embeddings/openai"
	embeddingutils "github.com/papercomputeco/forumsearch/pkg/embeddings/utils"
	"github.com/papercomputeco/forumsearch/pkg/forum"
	"github.com/papercomputeco/forumsearch/pkg/logger"
)

var _ = Describe("NewEmbedder", func() {
	It("builds an OpenAI embedder", func() {
		e, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{ProviderType: "openai", APIKey: "k"})
		Expect(err).NotTo(HaveOccurred())
		Expect(e).To(BeAssignableToTypeOf(&openai.Embedder{}))
	})

	It("builds an Ollama embedder", func() {
		e, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{ProviderType: "ollama"})
		Expect(err).NotTo(HaveOccurred())
		Expect(e).To(BeAssignableToTypeOf(&ollama.Embedder{}))
	})

	It("rejects unknown providers as configuration errors", func() {
		_, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{ProviderType: "word2vec"})
		Expect(err).To(MatchError(forum.ErrConfiguration))
	})
})

var _ = Describe("LazyEmbedder", func() {
	It("surfaces a missing credential as a configuration error on first use", func() {
		e := embeddingutils.NewLazyEmbedder(&embeddingutils.NewEmbedderOpts{ProviderType: "openai"}, logger.Nop())

		_, err := e.Embed(context.Background(), "q")
		Expect(err).To(MatchError(forum.ErrConfiguration))
		Expect(e.Close()).To(Succeed())
	})

	It("builds the provider on Connect without embedding anything", func() {
		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
			_, _ = w.Write([]byte(`{"embeddings":[[1]]}`))
		}))
		defer server.Close()

		e := embeddingutils.NewLazyEmbedder(&embeddingutils.NewEmbedderOpts{
			ProviderType: "ollama",
			TargetURL:    server.URL,
		}, logger.Nop())

		Expect(e.Connect(context.Background())).To(Succeed())
		Expect(e.Connect(context.Background())).To(Succeed())
		Expect(hits.Load()).To(BeZero())
		Expect(e.Close()).To(Succeed())
	})

	It("reports a missing credential from Connect", func() {
		e := embeddingutils.NewLazyEmbedder(&embeddingutils.NewEmbedderOpts{ProviderType: "openai"}, logger.Nop())
		Expect(e.Connect(context.Background())).To(MatchError(forum.ErrConfiguration))
	})

	It("reuses the provider across calls", func() {
		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
			_, _ = w.Write([]byte(`{"embeddings":[[0.5,0.5]]}`))
		}))
		defer server.Close()

		e := embeddingutils.NewLazyEmbedder(&embeddingutils.NewEmbedderOpts{
			ProviderType: "ollama",
			TargetURL:    server.URL,
		}, logger.Nop())

		for range 2 {
			vec, err := e.Embed(context.Background(), "q")
			Expect(err).NotTo(HaveOccurred())
			Expect(vec).To(Equal([]float32{0.5, 0.5}))
		}
		Expect(hits.Load()).To(BeEquivalentTo(2))
		Expect(e.Close()).To(Succeed())
	})
})
