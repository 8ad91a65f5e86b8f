package storage

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dori/ticklist/internal/model"
)

// Encode serializes tasks for storage. The editing flag is dropped.
func Encode(tasks []model.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []model.Task{}
	}
	return json.Marshal(tasks)
}

// Decode parses a stored task list. It never fails: empty input, invalid
// JSON or a value that is not an array all yield an empty list. Records are
// coerced field by field and dropped when the id is zero, NaN or out of
// int64 range, or the text is empty. A repeated id keeps only its first
// record. now is used for records missing a creation time.
func Decode(raw []byte, now time.Time) []model.Task {
	tasks := []model.Task{}
	if len(raw) == 0 {
		return tasks
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return tasks
	}
	records, ok := parsed.([]any)
	if !ok {
		return tasks
	}

	seen := make(map[int64]bool, len(records))
	for _, r := range records {
		// A null or scalar element is skipped on its own; it does not
		// discard the rest of the list.
		fields, _ := r.(map[string]any)

		id := toNumber(field(fields, "id"))
		if math.IsNaN(id) || math.Abs(id) >= maxID || int64(id) == 0 {
			continue
		}
		if seen[int64(id)] {
			continue
		}

		text := toText(field(fields, "text"))
		if text == "" {
			continue
		}

		createdAt := now.UnixMilli()
		if v := field(fields, "createdAt"); truthy(v) {
			if n := toNumber(v); !math.IsNaN(n) && !math.IsInf(n, 0) {
				createdAt = int64(n)
			}
		}

		seen[int64(id)] = true
		tasks = append(tasks, model.Task{
			ID:        int64(id),
			Text:      text,
			Completed: truthy(field(fields, "completed")),
			CreatedAt: createdAt,
		})
	}
	return tasks
}

// maxID is 2^63; ids at or beyond it do not fit an int64.
const maxID = 1 << 63

// absent marks a field missing from a record, which coerces differently
// from an explicit null.
type absent struct{}

func field(fields map[string]any, name string) any {
	v, ok := fields[name]
	if !ok {
		return absent{}
	}
	return v
}

func toNumber(v any) float64 {
	switch v := v.(type) {
	case nil:
		return 0
	case float64:
		return v
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return n
	default:
		return math.NaN()
	}
}

// toText keeps strings and formats truthy numbers and booleans. Objects and
// arrays become "", so a record with structured text is dropped.
func toText(v any) string {
	if !truthy(v) {
		return ""
	}
	switch v := v.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func truthy(v any) bool {
	switch v := v.(type) {
	case nil, absent:
		return false
	case bool:
		return v
	case float64:
		return v != 0 && !math.IsNaN(v)
	case string:
		return v != ""
	default:
		return true
	}
}
