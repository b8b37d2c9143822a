package ai

// ExtractionSchema builds the JSON Schema describing the per-chunk
// extraction object {summary, decisions, tasks}. In strict mode every task
// field must be present (empty string / "MEDIUM" / [] sentinels are fine,
// the key itself is required); in preview mode all task fields are optional.
func ExtractionSchema(strict bool) map[string]interface{} {
	taskProperties := map[string]interface{}{
		"name":          map[string]interface{}{"type": "string"},
		"description":   map[string]interface{}{"type": "string"},
		"dueDate":       map[string]interface{}{"type": "string"},
		"assigneeEmail": map[string]interface{}{"type": "string"},
		"priority":      map[string]interface{}{"type": "string"},
		"companySlug":   map[string]interface{}{"type": "string"},
		"companyName":   map[string]interface{}{"type": "string"},
		"labels": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
	}

	task := map[string]interface{}{
		"type":       "object",
		"properties": taskProperties,
	}
	if strict {
		task["required"] = []string{
			"name", "description", "dueDate", "assigneeEmail",
			"priority", "companySlug", "companyName", "labels",
		}
		task["additionalProperties"] = false
	} else {
		task["required"] = []string{"name"}
	}

	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"summary": map[string]interface{}{"type": "string"},
			"decisions": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
			"tasks": map[string]interface{}{
				"type":  "array",
				"items": task,
			},
		},
		"required": []string{"summary", "decisions", "tasks"},
	}
	if strict {
		schema["additionalProperties"] = false
	}

	return schema
}
