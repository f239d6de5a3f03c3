package render

import (
	"io"

	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/chris/snug/internal/agent"
	"github.com/chris/snug/internal/llm"
)

type field struct {
	path  string
	value any
}

// JSON renders one object per reply. It never streams.
type JSON struct {
	out    io.Writer
	pretty bool
}

func NewJSON(out io.Writer, pretty bool) *JSON {
	return &JSON{out: out, pretty: pretty}
}

func (j *JSON) Stream() io.Writer { return nil }

func (j *JSON) Context(llm.Plan) {}

func (j *JSON) Reply(sessionID string, res *agent.Result) error {
	fields := []field{
		{"response", res.Reply},
		{"session", sessionID},
		{"truncated", res.Truncated},
		{"dropped_turns", res.Dropped},
		{"included_turns", res.Included},
		{"estimated_tokens", res.EstimatedTokens},
		{"full_estimated_tokens", res.FullTokens},
		{"prompt_truncated", res.PromptTruncated},
	}
	if res.InputTokens > 0 || res.OutputTokens > 0 {
		fields = append(fields,
			field{"usage.input_tokens", res.InputTokens},
			field{"usage.output_tokens", res.OutputTokens},
		)
	}

	doc := []byte(`{}`)
	for _, f := range fields {
		var err error
		if doc, err = sjson.SetBytes(doc, f.path, f.value); err != nil {
			return err
		}
	}
	return j.write(doc)
}

func (j *JSON) Error(err error, category string) {
	doc, _ := sjson.SetBytes([]byte(`{}`), "error", err.Error())
	doc, _ = sjson.SetBytes(doc, "category", category)
	j.write(doc)
}

func (j *JSON) write(doc []byte) error {
	if j.pretty {
		doc = pretty.Pretty(doc)
	} else {
		doc = append(doc, '\n')
	}
	_, err := j.out.Write(doc)
	return err
}
