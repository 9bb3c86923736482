// internal/model/raw.go
package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// RawAnalysis is the backend analysis payload as received, before
// normalization. Decoding is lenient: pieces that do not have the expected
// shape are dropped instead of failing the whole payload.
type RawAnalysis struct {
	Buckets         map[AgeBucket]RawBucket
	TotalFiles      int
	TotalDuplicates int
	TotalSensitive  int
}

// RawBucket is the per age bucket part of the payload.
type RawBucket struct {
	FileTypes     map[string][]RawFile
	SensitiveInfo map[string][]RawFinding
}

// RawFile is a file entry in a file_types list. Size keeps whatever JSON
// value the backend sent (number, numeric string, or nothing).
type RawFile struct {
	ID           string
	Name         string
	MimeType     string
	ModifiedTime string
	Owner        string
	WebViewLink  string
	LastAccessed string
	Size         any
}

// RawFinding is a sensitive_info entry.
type RawFinding struct {
	File        RawFile
	Confidence  *float64
	Explanation string
	Categories  []string
}

var (
	duplicateKeys = []string{"total_duplicates", "duplicateCount", "duplicate_count", "duplicateDocuments"}
	totalKeys     = []string{"total_files", "totalFiles", "docCount"}
	sensitiveKeys = []string{"total_sensitive_files", "sensitiveCount", "sensitive_count"}
)

// UnmarshalJSON implements json.Unmarshaler.
func (r *RawAnalysis) UnmarshalJSON(data []byte) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return err
	}

	r.Buckets = make(map[AgeBucket]RawBucket)
	for _, b := range AgeBuckets {
		msg, ok := top[string(b)]
		if !ok {
			continue
		}
		var bucket RawBucket
		if err := json.Unmarshal(msg, &bucket); err == nil {
			r.Buckets[b] = bucket
		}
	}

	r.TotalDuplicates = firstInt(top, duplicateKeys)
	r.TotalFiles = firstInt(top, totalKeys)
	r.TotalSensitive = firstInt(top, sensitiveKeys)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *RawBucket) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	if msg, ok := obj["file_types"]; ok {
		var groups map[string]json.RawMessage
		if json.Unmarshal(msg, &groups) == nil {
			b.FileTypes = make(map[string][]RawFile, len(groups))
			for name, list := range groups {
				b.FileTypes[name] = decodeList[RawFile](list)
			}
		}
	}

	if msg, ok := obj["sensitive_info"]; ok {
		var groups map[string]json.RawMessage
		if json.Unmarshal(msg, &groups) == nil {
			b.SensitiveInfo = make(map[string][]RawFinding, len(groups))
			for name, list := range groups {
				b.SensitiveInfo[name] = decodeList[RawFinding](list)
			}
		}
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler. A bare string is taken as the
// file name, which is how local scans report files.
func (f *RawFile) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		f.Name = name
		return nil
	}

	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	f.ID = stringField(obj, "id")
	f.Name = stringField(obj, "name")
	f.MimeType = stringField(obj, "mimeType", "mime_type")
	f.ModifiedTime = stringField(obj, "modifiedTime", "modified_time")
	f.Owner = stringField(obj, "owner")
	f.WebViewLink = stringField(obj, "webViewLink", "web_view_link")
	f.LastAccessed = stringField(obj, "lastAccessed", "last_accessed", "viewedByMeTime")
	f.Size = obj["size"]
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *RawFinding) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if msg, ok := obj["file"]; ok {
		var file RawFile
		if json.Unmarshal(msg, &file) == nil {
			f.File = file
		}
	}
	for _, key := range []string{"confidence", "confidence_score"} {
		msg, ok := obj[key]
		if !ok {
			continue
		}
		if v, ok := number(msg); ok {
			f.Confidence = &v
			break
		}
	}
	if msg, ok := obj["explanation"]; ok {
		_ = json.Unmarshal(msg, &f.Explanation)
	}
	if msg, ok := obj["categories"]; ok {
		_ = json.Unmarshal(msg, &f.Categories)
	}
	return nil
}

// decodeList decodes a JSON array element by element, skipping elements
// that fail to decode. Anything that is not an array yields nil.
func decodeList[T any](data json.RawMessage) []T {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		var v T
		if err := json.Unmarshal(item, &v); err == nil {
			out = append(out, v)
		}
	}
	return out
}

func firstInt(obj map[string]json.RawMessage, keys []string) int {
	for _, k := range keys {
		if msg, ok := obj[k]; ok {
			if v, ok := number(msg); ok {
				return int(v)
			}
		}
	}
	return 0
}

func number(msg json.RawMessage) (float64, bool) {
	var v any
	if err := json.Unmarshal(msg, &v); err != nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func stringField(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := obj[k].(string); ok {
			return s
		}
	}
	return ""
}

// ChatReply is the response of the chat endpoint. Content is either a
// plain string or, for "categorization" replies, a structured summary.
type ChatReply struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content"`
}

// Text returns the content as a string, or the raw JSON when it is not one.
func (r ChatReply) Text() string {
	var s string
	if err := json.Unmarshal(r.Content, &s); err == nil {
		return s
	}
	return string(r.Content)
}

// Categorization decodes a categorization summary. The second result is
// false when the reply carries none.
func (r ChatReply) Categorization() (CategorizationSummary, bool) {
	if r.Type != "categorization" {
		return CategorizationSummary{}, false
	}
	var content struct {
		Summary *CategorizationSummary `json:"summary"`
	}
	if err := json.Unmarshal(r.Content, &content); err != nil || content.Summary == nil {
		return CategorizationSummary{}, false
	}
	return *content.Summary, true
}
