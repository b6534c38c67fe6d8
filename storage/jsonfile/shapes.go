package jsonfile

import (
	"bytes"
	"encoding/json"
	"time"

	"AddressBook/internal/model"
	"AddressBook/utils"
)

// 能识别的文件格式，按顺序尝试：
//
//	wrapped  {"contacts": {name: record}, "meta": {"last_modified": ...}}
//	bare     {name: record}
//	legacy   {name: "phone"}，允许和 record 混用
var shapes = []struct {
	name  string
	parse func(top map[string]json.RawMessage, now time.Time) ([]model.Contact, *time.Time, bool)
}{
	{name: "wrapped", parse: parseWrapped},
	{name: "bare", parse: parseBare},
	{name: "legacy", parse: parseLegacy},
}

func decode(data []byte, now time.Time) ([]model.Contact, *time.Time, bool) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, false
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil || top == nil {
		return nil, nil, false
	}

	for _, sh := range shapes {
		if contacts, lastModified, ok := sh.parse(top, now); ok {
			sortContacts(contacts)
			return contacts, lastModified, true
		}
	}
	return nil, nil, false
}

func parseWrapped(top map[string]json.RawMessage, now time.Time) ([]model.Contact, *time.Time, bool) {
	raw, ok := top["contacts"]
	if !ok || !isObject(raw) {
		return nil, nil, false
	}
	// 名字恰好叫 "contacts" 的单条记录不算 wrapped
	if _, hasMeta := top["meta"]; !hasMeta && looksLikeRecord(raw) {
		return nil, nil, false
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, nil, false
	}

	contacts := make([]model.Contact, 0, len(entries))
	for key, value := range entries {
		if c, ok := decodeValue(key, value, now); ok {
			contacts = append(contacts, c)
		}
	}

	var meta fileMeta
	if m, ok := top["meta"]; ok && isObject(m) {
		_ = json.Unmarshal(m, &meta)
	}
	var lastModified *time.Time
	if meta.LastModified != nil {
		if t, ok := utils.ParseTimestamp(*meta.LastModified); ok {
			lastModified = &t
		}
	}

	return contacts, lastModified, true
}

// parseBare 每个值都必须是 record 对象
func parseBare(top map[string]json.RawMessage, now time.Time) ([]model.Contact, *time.Time, bool) {
	contacts := make([]model.Contact, 0, len(top))
	for key, value := range top {
		if !isObject(value) {
			return nil, nil, false
		}
		if c, ok := decodeRecord(key, value, now); ok {
			contacts = append(contacts, c)
		}
	}
	return contacts, nil, true
}

// parseLegacy 值可以是号码字符串，时间戳用 now 补齐
func parseLegacy(top map[string]json.RawMessage, now time.Time) ([]model.Contact, *time.Time, bool) {
	contacts := make([]model.Contact, 0, len(top))
	for key, value := range top {
		if c, ok := decodeValue(key, value, now); ok {
			contacts = append(contacts, c)
		}
	}
	return contacts, nil, true
}

func decodeValue(key string, raw json.RawMessage, now time.Time) (model.Contact, bool) {
	if isObject(raw) {
		return decodeRecord(key, raw, now)
	}

	var phone string
	if err := json.Unmarshal(raw, &phone); err != nil {
		return model.Contact{}, false
	}
	return model.Contact{Name: key, Phone: phone, CreatedAt: now, UpdatedAt: now}, true
}

func decodeRecord(key string, raw json.RawMessage, now time.Time) (model.Contact, bool) {
	var rec fileRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return model.Contact{}, false
	}

	name := rec.Name
	if name == "" {
		name = key
	}
	created, ok := utils.ParseTimestamp(rec.CreatedAt)
	if !ok {
		created = now
	}
	updated, ok := utils.ParseTimestamp(rec.UpdatedAt)
	if !ok || updated.Before(created) {
		updated = created
	}

	return model.Contact{
		Name:      name,
		Phone:     rec.Phone,
		CreatedAt: created,
		UpdatedAt: updated,
		Birthday:  nonEmpty(rec.Birthday),
		Notes:     nonEmpty(rec.Notes),
	}, true
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func looksLikeRecord(raw json.RawMessage) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return false
	}
	v, ok := fields["phone"]
	if !ok {
		return false
	}
	var s string
	return json.Unmarshal(v, &s) == nil
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
