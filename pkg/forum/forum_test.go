package forum_test

import (
	"encoding/json"
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/forumsearch/pkg/forum"
)

var _ = Describe("ParseKind", func() {
	DescribeTable("accepts singular and plural names",
		func(in string, want forum.Kind) {
			kind, ok := forum.ParseKind(in)
			Expect(ok).To(BeTrue())
			Expect(kind).To(Equal(want))
		},
		Entry("posts", "posts", forum.KindPost),
		Entry("post", "post", forum.KindPost),
		Entry("comments", "comments", forum.KindComment),
		Entry("comment", "comment", forum.KindComment),
	)

	It("rejects unknown kinds", func() {
		_, ok := forum.ParseKind("threads")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("Post", func() {
	It("omits absent optional fields from JSON", func() {
		payload, err := json.Marshal(forum.Post{ID: 1, PostID: "abc", Title: "t", SimilarityScore: 0.9})
		Expect(err).NotTo(HaveOccurred())

		var got map[string]any
		Expect(json.Unmarshal(payload, &got)).To(Succeed())
		Expect(got).To(HaveKey("post_id"))
		Expect(got).To(HaveKey("similarity_score"))
		Expect(got).NotTo(HaveKey("url"))
		Expect(got).NotTo(HaveKey("author"))
		Expect(got).NotTo(HaveKey("posted_at"))
	})
})

var _ = Describe("Errors", func() {
	It("supports wrapping with errors.Is", func() {
		err := fmt.Errorf("%w: dial tcp: refused", forum.ErrStorage)
		Expect(errors.Is(err, forum.ErrStorage)).To(BeTrue())
		Expect(errors.Is(err, forum.ErrUpstream)).To(BeFalse())
	})
})
