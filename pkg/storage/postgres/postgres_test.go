package postgres_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/forumsearch/pkg/forum"
	"github.com/papercomputeco/forumsearch/pkg/logger"
	"github.com/papercomputeco/forumsearch/pkg/storage"
	"github.com/papercomputeco/forumsearch/pkg/storage/postgres"
)

// connStr returns the PostgreSQL connection string from environment or skips the test.
func connStr() string {
	dsn := os.Getenv("FORUMSEARCH_TEST_POSTGRES_DSN")
	if dsn == "" {
		Skip("FORUMSEARCH_TEST_POSTGRES_DSN not set, skipping PostgreSQL tests")
	}
	return dsn
}

var testTables = storage.Tables{
	Posts:                   "forumsearch_test_posts",
	PostsEmbeddingColumn:    "title_embedding",
	Comments:                "forumsearch_test_comments",
	CommentsEmbeddingColumn: "content_embedding",
}

const fixtureSQL = `
CREATE EXTENSION IF NOT EXISTS vector;
DROP TABLE IF EXISTS forumsearch_test_posts;
DROP TABLE IF EXISTS forumsearch_test_comments;
CREATE TABLE forumsearch_test_posts (
	id BIGSERIAL PRIMARY KEY,
	post_id TEXT NOT NULL,
	title TEXT,
	page_url TEXT,
	author_display_name TEXT,
	posted_at TIMESTAMPTZ,
	title_embedding vector(3)
);
CREATE TABLE forumsearch_test_comments (
	id BIGSERIAL PRIMARY KEY,
	comment_id TEXT NOT NULL,
	post_id TEXT NOT NULL,
	markdown_content TEXT,
	author_display_name TEXT,
	posted_at TIMESTAMPTZ,
	content_embedding vector(3)
);
INSERT INTO forumsearch_test_posts (post_id, title, page_url, author_display_name, posted_at, title_embedding) VALUES
	('p-exact', 'Exact', 'https://forum.example/p-exact', 'alice', '2024-03-01T12:00:00Z', '[1,0,0]'),
	('p-close', 'Close', NULL, NULL, NULL, '[0.9,0.1,0]'),
	('p-far', 'Far', NULL, NULL, NULL, '[0,1,0]'),
	('p-none', 'No embedding', NULL, NULL, NULL, NULL);
INSERT INTO forumsearch_test_comments (comment_id, post_id, markdown_content, author_display_name, posted_at, content_embedding) VALUES
	('c-1', 'p-exact', 'Same direction', 'bob', NULL, '[2,0,0]'),
	('c-2', 'p-far', 'Orthogonal', NULL, NULL, '[0,0,1]');
`

var _ = Describe("Driver", func() {
	Describe("NewDriver", func() {
		It("requires a connection string", func() {
			_, err := postgres.NewDriver(context.Background(), postgres.Config{}, logger.Nop())
			Expect(err).To(MatchError(forum.ErrConfiguration))
		})

		It("rejects empty identifiers", func() {
			_, err := postgres.NewDriver(context.Background(), postgres.Config{
				ConnString: "postgres://localhost/forum",
				Tables:     storage.Tables{Posts: "public..posts"},
			}, logger.Nop())
			Expect(err).To(MatchError(forum.ErrConfiguration))
		})

		It("reports unreachable databases as storage errors", func() {
			_, err := postgres.NewDriver(context.Background(), postgres.Config{
				ConnString: "host=127.0.0.1 port=1 user=bad dbname=bad sslmode=disable connect_timeout=1",
			}, logger.Nop())
			Expect(err).To(MatchError(forum.ErrStorage))
			fmt.Fprintf(GinkgoWriter, "expected error: %v\n", err)
		})
	})

	Describe("VectorLiteral", func() {
		It("renders pgvector text input", func() {
			Expect(postgres.VectorLiteral([]float32{0.5, -1, 0.25})).To(Equal("[0.5,-1,0.25]"))
			Expect(postgres.VectorLiteral(nil)).To(Equal("[]"))
		})
	})

	Describe("similarity queries", func() {
		var (
			ctx    context.Context
			driver *postgres.Driver
		)

		BeforeEach(func() {
			ctx = context.Background()
			dsn := connStr()

			db, err := sql.Open("pgx", dsn)
			Expect(err).NotTo(HaveOccurred())
			_, err = db.ExecContext(ctx, fixtureSQL)
			Expect(err).NotTo(HaveOccurred())
			Expect(db.Close()).To(Succeed())

			driver, err = postgres.NewDriver(ctx, postgres.Config{ConnString: dsn, Tables: testTables}, logger.Nop())
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			if driver != nil {
				driver.Close()
			}
		})

		It("returns posts above the threshold in descending order", func() {
			posts, err := driver.SimilarPosts(ctx, []float32{1, 0, 0}, 10, 0.7)
			Expect(err).NotTo(HaveOccurred())
			Expect(posts).To(HaveLen(2))
			Expect(posts[0].PostID).To(Equal("p-exact"))
			Expect(posts[0].Author).To(Equal("alice"))
			Expect(posts[0].URL).To(Equal("https://forum.example/p-exact"))
			Expect(posts[0].PostedAt).NotTo(BeNil())
			Expect(posts[0].SimilarityScore).To(BeNumerically("~", 1.0, 1e-6))
			Expect(posts[1].PostID).To(Equal("p-close"))
			Expect(posts[1].PostedAt).To(BeNil())
		})

		It("honors the limit", func() {
			posts, err := driver.SimilarPosts(ctx, []float32{1, 0, 0}, 1, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(posts).To(HaveLen(1))
		})

		It("skips rows without embeddings", func() {
			posts, err := driver.SimilarPosts(ctx, []float32{1, 0, 0}, 10, -1)
			Expect(err).NotTo(HaveOccurred())
			for _, p := range posts {
				Expect(p.PostID).NotTo(Equal("p-none"))
			}
		})

		It("returns comments with their parent post", func() {
			comments, err := driver.SimilarComments(ctx, []float32{1, 0, 0}, 10, 0.5)
			Expect(err).NotTo(HaveOccurred())
			Expect(comments).To(HaveLen(1))
			Expect(comments[0].CommentID).To(Equal("c-1"))
			Expect(comments[0].PostID).To(Equal("p-exact"))
			Expect(comments[0].Content).To(Equal("Same direction"))
		})

		It("reports a missing table as a storage error", func() {
			broken, err := postgres.NewDriver(ctx, postgres.Config{
				ConnString: connStr(),
				Tables:     storage.Tables{Posts: "forumsearch_missing_table"},
			}, logger.Nop())
			Expect(err).NotTo(HaveOccurred())
			defer broken.Close()

			_, err = broken.SimilarPosts(ctx, []float32{1, 0, 0}, 10, 0.7)
			Expect(err).To(MatchError(forum.ErrStorage))
		})
	})
})
