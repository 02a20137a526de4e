// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

package validation

import (
	"strings"
	"testing"

	"github.com/tomtom215/mapadmin/internal/models"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 == nil {
		t.Fatal("GetValidator() should not return nil")
	}
	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
}

type presencePayload struct {
	ResourceType string `json:"resourceType" validate:"required,resource_type"`
	ResourceID   string `json:"resourceId" validate:"required,max=64"`
}

type sourcePayload struct {
	Sources []models.SearchSource `json:"sources" validate:"max=2,dive"`
	Table   string                `json:"table" validate:"omitempty,sql_ident"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		input     interface{}
		wantErr   bool
		wantField string
		wantInMsg string
	}{
		{
			name:  "valid presence",
			input: &presencePayload{ResourceType: "layer", ResourceID: "7"},
		},
		{
			name:      "unknown resource type",
			input:     &presencePayload{ResourceType: "plugin", ResourceID: "7"},
			wantErr:   true,
			wantField: "resourceType",
			wantInMsg: "must be one of: map, layer, tool, group, service",
		},
		{
			name:      "missing resource id",
			input:     &presencePayload{ResourceType: "map"},
			wantErr:   true,
			wantField: "resourceId",
			wantInMsg: "resourceId is required",
		},
		{
			name:      "nested source missing column",
			input:     &sourcePayload{Sources: []models.SearchSource{{Table: "addresses"}}},
			wantErr:   true,
			wantField: "sources[0].column",
			wantInMsg: "sources[0].column is required",
		},
		{
			name: "too many sources",
			input: &sourcePayload{Sources: []models.SearchSource{
				{Table: "a", Column: "b"}, {Table: "c", Column: "d"}, {Table: "e", Column: "f"},
			}},
			wantErr:   true,
			wantField: "sources",
			wantInMsg: "sources must be at most 2",
		},
		{
			name:      "bad identifier",
			input:     &sourcePayload{Table: "addresses; drop"},
			wantErr:   true,
			wantField: "table",
			wantInMsg: "letters, digits, underscore and dot",
		},
		{
			name:  "schema qualified identifier",
			input: &sourcePayload{Table: "public.addresses"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.input)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("ValidateStruct() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("ValidateStruct() expected error, got nil")
			}
			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("expected 1 field error, got %d: %v", len(errs), err)
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", errs[0].Field(), tt.wantField)
			}
			if !strings.Contains(err.Error(), tt.wantInMsg) {
				t.Errorf("Error() = %q, want it to contain %q", err.Error(), tt.wantInMsg)
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	err := ValidateStruct(&presencePayload{})
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 2 {
		t.Fatalf("expected 2 field details, got %#v", apiErr.Details)
	}
	if !strings.Contains(apiErr.Message, "resourceType is required") {
		t.Errorf("Message = %q", apiErr.Message)
	}
}
