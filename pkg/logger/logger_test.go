package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/forumsearch/pkg/logger"
)

func decodeLine(buf *bytes.Buffer) map[string]any {
	var parsed map[string]any
	Expect(json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &parsed)).To(Succeed())
	return parsed
}

var _ = Describe("Logger", func() {
	Describe("New", func() {
		It("writes key/value pairs with the default text handler", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf))
			l.Info("search completed", "kind", "posts", "count", 3)

			Expect(buf.String()).To(ContainSubstring("search completed"))
			Expect(buf.String()).To(ContainSubstring("kind=posts"))
			Expect(buf.String()).To(ContainSubstring("count=3"))
		})

		It("only emits debug records in debug mode", func() {
			var quiet, loud bytes.Buffer
			logger.New(logger.WithWriter(&quiet)).Debug("embedding query")
			logger.New(logger.WithWriter(&loud), logger.WithDebug(true)).Debug("embedding query")

			Expect(quiet.String()).To(BeEmpty())
			Expect(loud.String()).To(ContainSubstring("embedding query"))
		})

		It("emits structured JSON", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true))
			l.Info("tool call", "tool", "search_posts", "limit", 10)

			parsed := decodeLine(&buf)
			Expect(parsed["msg"]).To(Equal("tool call"))
			Expect(parsed["tool"]).To(Equal("search_posts"))
			Expect(parsed["limit"]).To(BeNumerically("==", 10))
		})

		It("includes the source location when requested", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true), logger.WithSource(true))
			l.Info("with source")

			Expect(decodeLine(&buf)).To(HaveKey(slog.SourceKey))
		})

		It("renders through the charm handler in pretty mode", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithPretty(true))
			l.Info("server listening", "addr", ":8080")

			Expect(buf.String()).To(ContainSubstring("server listening"))
			Expect(buf.String()).To(ContainSubstring(":8080"))
		})

		It("writes to every configured writer", func() {
			var a, b bytes.Buffer
			logger.New(logger.WithWriters(&a, &b)).Info("fan out")

			Expect(a.String()).To(ContainSubstring("fan out"))
			Expect(b.String()).To(ContainSubstring("fan out"))
		})

		It("nests grouped attributes", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true))
			l.WithGroup("request").Info("handled", "path", "/mcp")

			group, ok := decodeLine(&buf)["request"].(map[string]any)
			Expect(ok).To(BeTrue())
			Expect(group["path"]).To(Equal("/mcp"))
		})
	})

	Describe("Nop", func() {
		It("is disabled at every level", func() {
			l := logger.Nop()
			Expect(l.Handler().Enabled(context.Background(), slog.LevelError)).To(BeFalse())
			Expect(func() { l.With("k", "v").Error("dropped") }).NotTo(Panic())
		})
	})

	Describe("Multi", func() {
		It("dispatches each record to every logger", func() {
			var text, js bytes.Buffer
			multi := logger.Multi(
				logger.New(logger.WithWriter(&text)),
				logger.New(logger.WithWriter(&js), logger.WithJSON(true)),
			)

			multi.With("component", "api").Info("broadcast")

			Expect(text.String()).To(ContainSubstring("component=api"))
			Expect(decodeLine(&js)["component"]).To(Equal("api"))
		})

		It("skips handlers that are not enabled for the level", func() {
			var buf bytes.Buffer
			multi := logger.Multi(logger.Nop(), logger.New(logger.WithWriter(&buf)))
			multi.Debug("hidden")
			multi.Info("shown")

			Expect(buf.String()).NotTo(ContainSubstring("hidden"))
			Expect(buf.String()).To(ContainSubstring("shown"))
		})
	})
})
