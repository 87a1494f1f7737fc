package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vietfact/mintgraph/internal/model"
)

// Extractor defines the interface for LLM-backed entity extraction. One call
// covers the whole context document.
type Extractor interface {
	// Name returns the provider name.
	Name() string

	// Extract returns the named entities found in the context text.
	Extract(ctx context.Context, contextText string) ([]model.Entity, error)

	// IsAvailable checks if the provider is properly configured and accessible.
	IsAvailable(ctx context.Context) bool
}

// BuildPrompt constructs the entity extraction prompt. The model is asked
// for a strict JSON array so the response can be parsed without heuristics.
func BuildPrompt(contextText string) string {
	return fmt.Sprintf(`Trích xuất tất cả các thực thể quan trọng từ văn bản sau đây.
Chỉ trả về JSON, không giải thích gì thêm.
Trả về một JSON array với format: [{"name": "...", "type": "..."}]

Các loại thực thể cần trích xuất (giá trị của "type"):
- PERSON: tên người
- ORG: tên tổ chức/công ty
- LOC: địa điểm
- DATE: ngày tháng/thời gian
- NUM: số liệu quan trọng
- PRODUCT: sản phẩm/dịch vụ
- EVENT: sự kiện

Văn bản:
%s`, contextText)
}

// ParseEntities decodes an extractor response. Markdown code fences are
// stripped first. A bare string array is accepted with type ENTITY. Entities
// are deduplicated by exact name, first occurrence wins. Anything else is an
// external-unavailable failure the caller degrades on.
func ParseEntities(raw string) ([]model.Entity, error) {
	text := stripCodeFence(strings.TrimSpace(raw))

	var entities []model.Entity
	if err := json.Unmarshal([]byte(text), &entities); err != nil {
		var names []string
		if err2 := json.Unmarshal([]byte(text), &names); err2 != nil {
			return nil, fmt.Errorf("%w: entity response is not JSON: %v", model.ErrExternalUnavailable, err)
		}
		for _, name := range names {
			entities = append(entities, model.Entity{Name: name, Type: "ENTITY"})
		}
	}

	seen := make(map[string]bool, len(entities))
	out := make([]model.Entity, 0, len(entities))
	for _, e := range entities {
		e.Name = strings.TrimSpace(e.Name)
		if e.Name == "" || seen[e.Name] {
			continue
		}
		if e.Type == "" {
			e.Type = "ENTITY"
		}
		seen[e.Name] = true
		out = append(out, e)
	}
	return out, nil
}

// stripCodeFence removes a surrounding ```json ... ``` block if present.
func stripCodeFence(s string) string {
	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	} else if strings.HasPrefix(s, "```") {
		s = s[3:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
