package sqlite_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/forumsearch/pkg/forum"
	"github.com/papercomputeco/forumsearch/pkg/logger"
	"github.com/papercomputeco/forumsearch/pkg/storage/sqlite"
)

var _ = Describe("Driver", func() {
	var (
		driver *sqlite.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		driver, err = sqlite.NewDriver(":memory:", logger.Nop())
		Expect(err).NotTo(HaveOccurred())

		posted := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		Expect(driver.PutPost(ctx, forum.Post{
			PostID: "p-exact", Title: "Exact", URL: "https://forum.example/p-exact", Author: "alice", PostedAt: &posted,
		}, []float32{1, 0, 0})).To(Succeed())
		Expect(driver.PutPost(ctx, forum.Post{PostID: "p-close", Title: "Close"}, []float32{0.9, 0.1, 0})).To(Succeed())
		Expect(driver.PutPost(ctx, forum.Post{PostID: "p-far", Title: "Far"}, []float32{0, 1, 0})).To(Succeed())
		Expect(driver.PutPost(ctx, forum.Post{PostID: "p-none", Title: "No embedding"}, nil)).To(Succeed())

		Expect(driver.PutComment(ctx, forum.Comment{
			CommentID: "c-1", PostID: "p-exact", Content: "agree", Author: "bob", PostedAt: &posted,
		}, []float32{1, 0, 0})).To(Succeed())
		Expect(driver.PutComment(ctx, forum.Comment{CommentID: "c-2", PostID: "p-far", Content: "disagree"}, []float32{0, 0, 1})).To(Succeed())
	})

	AfterEach(func() {
		Expect(driver.Close()).To(Succeed())
	})

	Describe("NewDriver", func() {
		It("rejects an empty path", func() {
			_, err := sqlite.NewDriver("", logger.Nop())
			Expect(errors.Is(err, forum.ErrConfiguration)).To(BeTrue())
		})
	})

	Describe("SimilarPosts", func() {
		It("returns posts above the threshold ordered by similarity", func() {
			posts, err := driver.SimilarPosts(ctx, []float32{1, 0, 0}, 10, 0.5)
			Expect(err).NotTo(HaveOccurred())
			Expect(posts).To(HaveLen(2))
			Expect(posts[0].PostID).To(Equal("p-exact"))
			Expect(posts[0].SimilarityScore).To(BeNumerically("~", 1.0, 1e-6))
			Expect(posts[1].PostID).To(Equal("p-close"))
			Expect(posts[1].SimilarityScore).To(BeNumerically("<", posts[0].SimilarityScore))
		})

		It("maps the stored metadata", func() {
			posts, err := driver.SimilarPosts(ctx, []float32{1, 0, 0}, 1, 0.5)
			Expect(err).NotTo(HaveOccurred())
			Expect(posts).To(HaveLen(1))
			Expect(posts[0].URL).To(Equal("https://forum.example/p-exact"))
			Expect(posts[0].Author).To(Equal("alice"))
			Expect(posts[0].PostedAt).NotTo(BeNil())
			Expect(posts[0].PostedAt.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))).To(BeTrue())
		})

		It("leaves optional fields empty", func() {
			posts, err := driver.SimilarPosts(ctx, []float32{0.9, 0.1, 0}, 10, 0.99)
			Expect(err).NotTo(HaveOccurred())
			Expect(posts).To(HaveLen(1))
			Expect(posts[0].PostID).To(Equal("p-close"))
			Expect(posts[0].URL).To(BeEmpty())
			Expect(posts[0].Author).To(BeEmpty())
			Expect(posts[0].PostedAt).To(BeNil())
		})

		It("respects the limit", func() {
			posts, err := driver.SimilarPosts(ctx, []float32{1, 0, 0}, 1, -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(posts).To(HaveLen(1))
		})

		It("skips rows without an embedding", func() {
			posts, err := driver.SimilarPosts(ctx, []float32{1, 0, 0}, 10, -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(posts).To(HaveLen(3))
			for _, p := range posts {
				Expect(p.PostID).NotTo(Equal("p-none"))
			}
		})

		It("returns an empty slice when nothing matches", func() {
			posts, err := driver.SimilarPosts(ctx, []float32{0, 0, 1}, 10, 0.5)
			Expect(err).NotTo(HaveOccurred())
			Expect(posts).To(BeEmpty())
		})

		It("reports a storage error on dimension mismatch", func() {
			_, err := driver.SimilarPosts(ctx, []float32{1, 0}, 10, 0.5)
			Expect(errors.Is(err, forum.ErrStorage)).To(BeTrue())
		})
	})

	Describe("SimilarComments", func() {
		It("returns matching comments", func() {
			comments, err := driver.SimilarComments(ctx, []float32{1, 0, 0}, 10, 0.5)
			Expect(err).NotTo(HaveOccurred())
			Expect(comments).To(HaveLen(1))
			Expect(comments[0].CommentID).To(Equal("c-1"))
			Expect(comments[0].PostID).To(Equal("p-exact"))
			Expect(comments[0].Content).To(Equal("agree"))
			Expect(comments[0].Author).To(Equal("bob"))
		})

		It("updates existing comments in place", func() {
			Expect(driver.PutComment(ctx, forum.Comment{CommentID: "c-2", PostID: "p-far", Content: "changed my mind"}, []float32{1, 0, 0})).To(Succeed())

			comments, err := driver.SimilarComments(ctx, []float32{1, 0, 0}, 10, 0.5)
			Expect(err).NotTo(HaveOccurred())
			Expect(comments).To(HaveLen(2))
		})
	})
})
