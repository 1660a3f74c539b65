package openapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
)

func TestLoad(t *testing.T) {
	doc, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	routes := []struct {
		path   string
		method string
	}{
		{"/summaries", http.MethodGet},
		{"/summaries", http.MethodPost},
		{"/summaries/{id}", http.MethodGet},
		{"/summaries/{id}", http.MethodPut},
		{"/summaries/{id}", http.MethodDelete},
		{"/generate-summary", http.MethodPost},
		{"/health/live", http.MethodGet},
		{"/health/ready", http.MethodGet},
		{"/metrics", http.MethodGet},
		{"/openapi.json", http.MethodGet},
	}

	for _, rt := range routes {
		item := doc.Paths.Value(rt.path)
		if item == nil {
			t.Errorf("путь %s отсутствует в контракте", rt.path)
			continue
		}
		if item.GetOperation(rt.method) == nil {
			t.Errorf("операция %s %s отсутствует в контракте", rt.method, rt.path)
		}
	}
}

func TestSummarySchema_UsesUpdatedAt(t *testing.T) {
	doc, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	schema := doc.Components.Schemas["Summary"].Value
	if _, ok := schema.Properties["updated_at"]; !ok {
		t.Error("в схеме Summary ожидалось поле updated_at")
	}
	for _, internal := range []string{"modified_at", "user_id", "owner_id"} {
		if _, ok := schema.Properties[internal]; ok {
			t.Errorf("поле %s не должно быть частью контракта", internal)
		}
	}
}

func TestJSON(t *testing.T) {
	data, err := JSON(context.Background())
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("невалидный JSON: %v", err)
	}
	if doc["openapi"] != "3.0.3" {
		t.Errorf("openapi = %v, ожидалось 3.0.3", doc["openapi"])
	}
}
