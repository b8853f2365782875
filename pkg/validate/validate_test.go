package validate

import (
	"testing"

	"FPKProgress/pkg/xerr"
)

type sample struct {
	Title    string `validate:"required,max=10"`
	Category string `validate:"oneof=reading study other"`
}

func TestStruct(t *testing.T) {
	if err := Struct(sample{Title: "ok", Category: "study"}); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}

	err := Struct(sample{Title: "", Category: "cooking"})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	ce, ok := xerr.As(err)
	if !ok || ce.Code != xerr.BadRequest {
		t.Fatalf("expected BadRequest CodeError, got %v", err)
	}
}
