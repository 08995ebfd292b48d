package cliui_test

import (
	"bytes"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/forumsearch/pkg/cliui"
)

var _ = Describe("cliui", func() {
	Describe("FormatDuration", func() {
		It("uses milliseconds below a second", func() {
			Expect(cliui.FormatDuration(12 * time.Millisecond)).To(Equal("12ms"))
		})

		It("uses seconds with one decimal above a second", func() {
			Expect(cliui.FormatDuration(3200 * time.Millisecond)).To(Equal("3.2s"))
		})
	})

	Describe("Mark", func() {
		It("distinguishes success from failure", func() {
			Expect(cliui.Mark(nil)).To(Equal(cliui.SuccessMark))
			Expect(cliui.Mark(errors.New("boom"))).To(Equal(cliui.FailMark))
		})
	})

	Describe("Step", func() {
		It("returns the result of fn and prints the step message", func() {
			var buf bytes.Buffer
			err := cliui.Step(&buf, "Searching posts", func() error {
				return errors.New("unreachable")
			})

			Expect(err).To(MatchError("unreachable"))
			Expect(buf.String()).To(ContainSubstring("Searching posts"))
			Expect(buf.String()).To(HaveSuffix("\n"))
		})
	})

	Describe("RenderMarkdown", func() {
		It("keeps the text of the rendered content", func() {
			out, err := cliui.RenderMarkdown("**Why AI safety matters** (Score: 0.9)", 60)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Why AI safety matters"))
		})
	})
})
