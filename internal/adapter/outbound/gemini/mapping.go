package gemini

import (
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/nanostudio/server/internal/model"
)

// partsFromResponse flattens the first candidate's parts.
func partsFromResponse(resp *genai.GenerateContentResponse) []model.ContentPart {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return nil
	}

	parts := make([]model.ContentPart, 0, len(cand.Content.Parts))
	for _, p := range cand.Content.Parts {
		if p == nil {
			continue
		}
		part := model.ContentPart{Text: p.Text}
		if p.InlineData != nil {
			part.InlineData = &model.InlineData{
				Data:     p.InlineData.Data,
				MIMEType: p.InlineData.MIMEType,
			}
		}
		parts = append(parts, part)
	}
	return parts
}

// jobFromOperation maps a Veo operation onto a video job.
func jobFromOperation(op *genai.GenerateVideosOperation) *model.VideoJob {
	if op == nil {
		return nil
	}
	job := &model.VideoJob{
		ID:   op.Name,
		Done: op.Done,
	}
	if len(op.Error) > 0 {
		job.Error = operationError(op.Error)
		return job
	}
	if !op.Done || op.Response == nil {
		return job
	}

	for _, v := range op.Response.GeneratedVideos {
		if v != nil && v.Video != nil && v.Video.URI != "" {
			job.ResultURI = v.Video.URI
			return job
		}
	}
	if len(op.Response.RAIMediaFilteredReasons) > 0 {
		job.Error = "filtered: " + strings.Join(op.Response.RAIMediaFilteredReasons, "; ")
	}
	return job
}

func operationError(e map[string]any) string {
	if msg, ok := e["message"].(string); ok && msg != "" {
		if code, ok := e["code"]; ok {
			return fmt.Sprintf("%v: %s", code, msg)
		}
		return msg
	}
	return fmt.Sprintf("%v", e)
}
