package utils

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Truncate", func() {
	It("returns the string unchanged when within the limit", func() {
		Expect(Truncate("short", 10)).To(Equal("short"))
	})

	It("returns the string unchanged when exactly at the limit", func() {
		exact := strings.Repeat("a", 200)
		Expect(Truncate(exact, 200)).To(Equal(exact))
	})

	It("cuts to the limit and appends an ellipsis", func() {
		Expect(Truncate("this is a long string", 10)).To(Equal("this is a ..."))
	})

	It("counts characters rather than bytes", func() {
		Expect(Truncate("héllo wörld", 5)).To(Equal("héllo..."))
	})
})
