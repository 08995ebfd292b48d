package storageutils_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/forumsearch/pkg/forum"
	"github.com/papercomputeco/forumsearch/pkg/logger"
	"github.com/papercomputeco/forumsearch/pkg/storage/inmemory"
	"github.com/papercomputeco/forumsearch/pkg/storage/sqlite"
	storageutils "github.com/papercomputeco/forumsearch/pkg/storage/utils"
)

var _ = Describe("NewDriver", func() {
	ctx := context.Background()

	It("builds an in-memory driver", func() {
		d, err := storageutils.NewDriver(ctx, &storageutils.NewDriverOpts{ProviderType: "inmemory"})
		Expect(err).NotTo(HaveOccurred())
		Expect(d).To(BeAssignableToTypeOf(&inmemory.Driver{}))
	})

	It("builds a sqlite driver", func() {
		d, err := storageutils.NewDriver(ctx, &storageutils.NewDriverOpts{
			ProviderType: "sqlite",
			Target:       ":memory:",
			Logger:       logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(d).To(BeAssignableToTypeOf(&sqlite.Driver{}))
		Expect(d.Close()).To(Succeed())
	})

	It("requires a postgres connection string", func() {
		_, err := storageutils.NewDriver(ctx, &storageutils.NewDriverOpts{ProviderType: "postgres"})
		Expect(err).To(MatchError(forum.ErrConfiguration))
	})

	It("rejects unknown providers as configuration errors", func() {
		_, err := storageutils.NewDriver(ctx, &storageutils.NewDriverOpts{ProviderType: "mongo"})
		Expect(err).To(MatchError(forum.ErrConfiguration))
	})
})

var _ = Describe("LazyDriver", func() {
	ctx := context.Background()

	It("reports the construction error on every lookup until it succeeds", func() {
		opts := &storageutils.NewDriverOpts{ProviderType: "sqlite"}
		d := storageutils.NewLazyDriver(opts)

		_, err := d.SimilarPosts(ctx, []float32{1, 0, 0}, 10, 0.5)
		Expect(err).To(MatchError(forum.ErrConfiguration))
		_, err = d.SimilarComments(ctx, []float32{1, 0, 0}, 10, 0.5)
		Expect(err).To(MatchError(forum.ErrConfiguration))

		opts.Target = ":memory:"
		posts, err := d.SimilarPosts(ctx, []float32{1, 0, 0}, 10, 0.5)
		Expect(err).NotTo(HaveOccurred())
		Expect(posts).To(BeEmpty())
		Expect(d.Close()).To(Succeed())
	})

	It("connects once and reuses the driver for lookups", func() {
		opts := &storageutils.NewDriverOpts{ProviderType: "sqlite"}
		d := storageutils.NewLazyDriver(opts)

		Expect(d.Connect(ctx)).To(MatchError(forum.ErrConfiguration))

		opts.Target = ":memory:"
		Expect(d.Connect(ctx)).To(Succeed())
		opts.Target = ""
		Expect(d.Connect(ctx)).To(Succeed())

		comments, err := d.SimilarComments(ctx, []float32{1, 0, 0}, 10, 0.5)
		Expect(err).NotTo(HaveOccurred())
		Expect(comments).To(BeEmpty())
		Expect(d.Close()).To(Succeed())
	})

	It("closes cleanly when never connected", func() {
		d := storageutils.NewLazyDriver(&storageutils.NewDriverOpts{ProviderType: "postgres"})
		Expect(d.Close()).To(Succeed())
	})
})
