package respectify_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/respectify/respectify-go/respectify"
)

var _ = Describe("Sanitize", func() {
	Describe("SanitizeText", func() {
		It("should trim leading and trailing whitespace", func() {
			Expect(respectify.SanitizeText("  hello world  ")).To(Equal("hello world"))
		})

		It("should strip ASCII control characters", func() {
			Expect(respectify.SanitizeText("he\x00llo\x1fwor\x7fld")).To(Equal("helloworld"))
		})

		It("should strip control characters hiding inside surrounding whitespace", func() {
			Expect(respectify.SanitizeText(" \x00 hello \x00 ")).To(Equal("hello"))
		})

		It("should escape HTML-significant characters", func() {
			Expect(respectify.SanitizeText(`<script>alert("x")</script>`)).To(
				Equal("&lt;script&gt;alert(&quot;x&quot;)&lt;/script&gt;"))
		})

		It("should escape ampersands and single quotes", func() {
			Expect(respectify.SanitizeText("Tom & Jerry's")).To(Equal("Tom &amp; Jerry&#39;s"))
		})

		It("should reverse backslash escaping when escaped quotes are present", func() {
			Expect(respectify.SanitizeText(`he said \"hi\"`)).To(
				Equal("he said &quot;hi&quot;"))
		})

		It("should leave plain backslashes alone when nothing is escaped", func() {
			Expect(respectify.SanitizeText(`C:\temp\file`)).To(Equal(`C:\temp\file`))
		})

		It("should pass clean text through unchanged", func() {
			Expect(respectify.SanitizeText("a perfectly ordinary comment")).To(
				Equal("a perfectly ordinary comment"))
		})

		It("should be idempotent", func() {
			inputs := []string{
				"  plain  ",
				`<b>bold & "quoted"</b>`,
				`escaped \"quote\" with \\ backslash`,
				"control\x00chars\x1f",
				"already &amp; escaped &lt;text&gt;",
				`mixed <tag> & \"escape\" ' throughout`,
			}
			for _, input := range inputs {
				once := respectify.SanitizeText(input)
				twice := respectify.SanitizeText(once)
				Expect(twice).To(Equal(once), "input %q", input)
			}
		})
	})

	Describe("Sanitize", func() {
		It("should clean string leaves recursively and preserve structure", func() {
			input := map[string]interface{}{
				"reasoning": "  <unsafe>  ",
				"nested": map[string]interface{}{
					"list": []interface{}{"  a  ", 1.5, true, nil},
				},
			}

			out := respectify.Sanitize(input).(map[string]interface{})
			Expect(out["reasoning"]).To(Equal("&lt;unsafe&gt;"))

			nested := out["nested"].(map[string]interface{})
			list := nested["list"].([]interface{})
			Expect(list).To(HaveLen(4))
			Expect(list[0]).To(Equal("a"))
			Expect(list[1]).To(Equal(1.5))
			Expect(list[2]).To(Equal(true))
			Expect(list[3]).To(BeNil())
		})

		It("should pass non-string scalars through unchanged", func() {
			Expect(respectify.Sanitize(42.0)).To(Equal(42.0))
			Expect(respectify.Sanitize(false)).To(Equal(false))
			Expect(respectify.Sanitize(nil)).To(BeNil())
		})

		It("should sanitize a bare string value", func() {
			Expect(respectify.Sanitize(" <hi> ")).To(Equal("&lt;hi&gt;"))
		})

		It("should be idempotent over whole structures", func() {
			input := map[string]interface{}{
				"a": []interface{}{`\"deep\"`, map[string]interface{}{"b": "<x> & 'y'"}},
			}
			once := respectify.Sanitize(input)
			twice := respectify.Sanitize(once)
			Expect(twice).To(Equal(once))
		})
	})
})
